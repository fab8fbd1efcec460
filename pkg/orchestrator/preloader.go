package orchestrator

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"gallery-showcase/pkg/observability"
)

// Preloader warms a media URL ahead of display
type Preloader interface {
	Preload(ctx context.Context, url string) error
}

// LoadStatus is the preload state of one URL
type LoadStatus string

const (
	StatusUnknown LoadStatus = ""
	StatusLoading LoadStatus = "loading"
	StatusLoaded  LoadStatus = "loaded"
	StatusFailed  LoadStatus = "failed"
)

const defaultPreloadTries = 3

// HTTPPreloader fetches media over HTTP with bounded exponential backoff and
// remembers the outcome per URL. Failed URLs can be retried on demand.
type HTTPPreloader struct {
	client          *http.Client
	baseURL         string
	maxTries        uint
	initialInterval time.Duration

	mu     sync.Mutex
	status map[string]LoadStatus
}

// NewHTTPPreloader creates a preloader resolving root-relative URLs against baseURL
func NewHTTPPreloader(baseURL string, client *http.Client) *HTTPPreloader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPPreloader{
		client:          client,
		baseURL:         strings.TrimSuffix(baseURL, "/"),
		maxTries:        defaultPreloadTries,
		initialInterval: 500 * time.Millisecond,
		status:          make(map[string]LoadStatus),
	}
}

// Status returns the preload state of url
func (p *HTTPPreloader) Status(url string) LoadStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status[url]
}

// Failed lists the URLs whose preload gave up
func (p *HTTPPreloader) Failed() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var failed []string
	for url, s := range p.status {
		if s == StatusFailed {
			failed = append(failed, url)
		}
	}
	sort.Strings(failed)
	return failed
}

// Preload fetches url unless it is already loaded or loading
func (p *HTTPPreloader) Preload(ctx context.Context, url string) error {
	p.mu.Lock()
	switch p.status[url] {
	case StatusLoaded, StatusLoading:
		p.mu.Unlock()
		return nil
	}
	p.status[url] = StatusLoading
	p.mu.Unlock()

	err := p.fetch(ctx, url)

	p.mu.Lock()
	if err != nil {
		p.status[url] = StatusFailed
	} else {
		p.status[url] = StatusLoaded
	}
	p.mu.Unlock()

	if err != nil {
		observability.Warnf("Failed to preload %s: %v", url, err)
	}
	return err
}

// Retry forgets a failed outcome and fetches url again
func (p *HTTPPreloader) Retry(ctx context.Context, url string) error {
	p.mu.Lock()
	if p.status[url] == StatusFailed {
		delete(p.status, url)
	}
	p.mu.Unlock()
	return p.Preload(ctx, url)
}

func (p *HTTPPreloader) resolve(url string) string {
	if strings.HasPrefix(url, "/") && p.baseURL != "" {
		return p.baseURL + url
	}
	return url
}

func (p *HTTPPreloader) fetch(ctx context.Context, url string) error {
	target := p.resolve(url)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.initialInterval

	_, err := backoff.Retry(ctx, func() (int64, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return 0, backoff.Permanent(err)
		}

		resp, err := p.client.Do(req)
		if err != nil {
			return 0, err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= 500, resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode == http.StatusRequestTimeout:
			return 0, fmt.Errorf("GET %s: status %d", target, resp.StatusCode)
		case resp.StatusCode >= 400:
			return 0, backoff.Permanent(fmt.Errorf("GET %s: status %d", target, resp.StatusCode))
		}

		return io.Copy(io.Discard, resp.Body)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(p.maxTries),
	)
	return err
}
