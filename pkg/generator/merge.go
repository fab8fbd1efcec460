package generator

import (
	"sort"
	"strconv"
	"unicode"

	"gallery-showcase/pkg/models"
)

// Merge overlays an authored static configuration on a generated one.
// Authored presentation fields win; items always come from the generated config.
func Merge(dynamic, static models.GalleryConfig) models.GalleryConfig {
	merged := dynamic

	if static.Title != "" {
		merged.Title = static.Title
	}
	if static.Description != "" {
		merged.Description = static.Description
	}
	if static.Layout != "" {
		merged.Layout = static.Layout
	}
	if static.Variant != "" {
		merged.Variant = static.Variant
	}
	if static.Animation.Effect != "" {
		merged.Animation = static.Animation.Clone()
	}
	if static.TransitionTime != nil {
		merged.TransitionTime = models.Int(*static.TransitionTime)
	}
	if static.Container != nil {
		c := *static.Container
		merged.Container = &c
	}
	if static.GalleryContainer != nil {
		gc := *static.GalleryContainer
		merged.GalleryContainer = &gc
	}

	merged.Items = dynamic.Items
	merged.RenderContext = models.RenderContextFor(merged.Layout, merged.Variant)
	return merged
}

// MergeAll merges every generated config with the static config of the same id.
// It returns the merged configs and the ids of static configs without a generated counterpart.
func MergeAll(dynamic []models.GalleryConfig, static []models.GalleryConfig) ([]models.GalleryConfig, []string) {
	byID := make(map[string]models.GalleryConfig, len(static))
	for _, s := range static {
		byID[s.ID] = s
	}

	merged := make([]models.GalleryConfig, 0, len(dynamic))
	seen := make(map[string]bool, len(dynamic))
	for _, d := range dynamic {
		seen[d.ID] = true
		if s, ok := byID[d.ID]; ok {
			merged = append(merged, Merge(d, s))
			continue
		}
		merged = append(merged, d)
	}

	var orphans []string
	for _, s := range static {
		if !seen[s.ID] {
			orphans = append(orphans, s.ID)
		}
	}

	return merged, orphans
}

// SortByID orders galleries ascending by the number at the end of their id,
// so gallery2 sorts before gallery10. Ids without a trailing number count as 0.
func SortByID(configs []models.GalleryConfig) {
	sort.SliceStable(configs, func(i, j int) bool {
		ni, nj := trailingNumber(configs[i].ID), trailingNumber(configs[j].ID)
		if ni != nj {
			return ni < nj
		}
		return naturalLess(configs[i].ID, configs[j].ID)
	})
}

func trailingNumber(id string) int {
	end := len(id)
	start := end
	for start > 0 && id[start-1] >= '0' && id[start-1] <= '9' {
		start--
	}
	if start == end {
		return 0
	}
	n, err := strconv.Atoi(id[start:end])
	if err != nil {
		return 0
	}
	return n
}

// naturalLess compares strings in a way that treats numbers as numbers rather than characters
// For example: "file2" < "file10" when using naturalLess
func naturalLess(s1, s2 string) bool {
	i, j := 0, 0
	for i < len(s1) && j < len(s2) {
		if unicode.IsDigit(rune(s1[i])) && unicode.IsDigit(rune(s2[j])) {
			start1 := i
			for i < len(s1) && unicode.IsDigit(rune(s1[i])) {
				i++
			}
			start2 := j
			for j < len(s2) && unicode.IsDigit(rune(s2[j])) {
				j++
			}

			n1, _ := strconv.Atoi(s1[start1:i])
			n2, _ := strconv.Atoi(s2[start2:j])
			if n1 != n2 {
				return n1 < n2
			}
			continue
		}

		if s1[i] != s2[j] {
			return s1[i] < s2[j]
		}
		i++
		j++
	}

	return len(s1)-i < len(s2)-j
}
