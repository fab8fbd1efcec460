package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"gallery-showcase/pkg/models"
	"gallery-showcase/pkg/observability"
)

// LogSink writes every event to the logger
type LogSink struct {
	Logger *observability.Logger
}

// Send implements Sink
func (s LogSink) Send(ctx context.Context, events []models.ClientEvent) error {
	log := s.Logger
	if log == nil {
		log = observability.GetLogger()
	}
	log = log.WithContext(ctx)

	for _, e := range events {
		log.WithFields(map[string]interface{}{
			"event":      e.Name,
			"session_id": e.SessionID,
		}).Infof("analytics %v", e.Properties)
	}
	return nil
}

// HTTPSink posts batches as {"events": [...]} to an analytics endpoint
type HTTPSink struct {
	URL    string
	Client *http.Client
}

// Send implements Sink
func (s HTTPSink) Send(ctx context.Context, events []models.ClientEvent) error {
	body, err := json.Marshal(models.AnalyticsBatch{Events: events})
	if err != nil {
		return fmt.Errorf("failed to encode analytics batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send analytics: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("analytics endpoint returned %d", resp.StatusCode)
	}
	return nil
}
