// Package summary calls the external generative-summary service. The
// contract is narrow: given a label and a list of text snippets, return
// one natural-language paragraph. The call is time-bounded and degrades
// to a static placeholder on any failure; it never fails the report.
package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/helli-it/support-tracker/internal/config"
)

// Placeholder is returned whenever the summary service is unavailable,
// slow, or misbehaving.
const Placeholder = "خلاصه هوشمند در حال حاضر در دسترس نیست."

// Client calls the summary endpoint.
type Client struct {
	cfg    config.SummaryConfig
	http   *http.Client
	logger *zap.Logger
}

// NewClient builds a client with the configured timeout.
func NewClient(cfg config.SummaryConfig, logger *zap.Logger) *Client {
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout()},
		logger: logger,
	}
}

type summaryRequest struct {
	Label    string   `json:"label"`
	Snippets []string `json:"snippets"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

// Summarize returns one paragraph describing the snippets, or the
// placeholder. It never returns an error.
func (c *Client) Summarize(ctx context.Context, label string, snippets []string) string {
	if c == nil || c.cfg.Endpoint == "" || len(snippets) == 0 {
		return Placeholder
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout())
	defer cancel()

	body, err := json.Marshal(summaryRequest{Label: label, Snippets: snippets})
	if err != nil {
		return Placeholder
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return Placeholder
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.warn("summary request failed", err, start)
		return Placeholder
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.warn("summary request rejected", nil, start)
		return Placeholder
	}

	var parsed summaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil || parsed.Summary == "" {
		c.warn("summary response unusable", err, start)
		return Placeholder
	}
	return parsed.Summary
}

func (c *Client) warn(msg string, err error, start time.Time) {
	if c.logger == nil {
		return
	}
	c.logger.Warn(msg, zap.Error(err), zap.Duration("elapsed", time.Since(start)))
}
