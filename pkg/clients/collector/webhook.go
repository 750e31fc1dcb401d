package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"property-leads/pkg/models"
)

type webhookClient struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewWebhookClient creates a collector that posts the lead as JSON to url
func NewWebhookClient(url string, timeout time.Duration, logger *zap.Logger) Client {
	return &webhookClient{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *webhookClient) Submit(ctx context.Context, payload models.LeadPayload) error {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error creating payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Add("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error reaching collector: %w", err)
	}
	defer resp.Body.Close()

	// The response is opaque; drain it so the connection can be reused.
	n, _ := io.Copy(io.Discard, resp.Body)
	c.logger.Debug("Collector responded",
		zap.Int("status", resp.StatusCode),
		zap.Int64("bytes", n))
	return nil
}
