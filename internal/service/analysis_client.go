package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"suma/internal/config"
	"suma/internal/model"
)

// AnalysisClient scores assignment text against historical exam content
type AnalysisClient interface {
	CheckHighOccurrence(ctx context.Context, assignmentText string) (*model.AnalysisReport, error)
}

// StatusError is returned when the analysis service answers with a non-2xx status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("analysis API error %d: %s", e.StatusCode, e.Body)
}

// HTTPAnalysisClient calls the high-occurrence endpoint over HTTP
type HTTPAnalysisClient struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewAnalysisClient creates a client for cfg.Endpoint()
func NewAnalysisClient(cfg config.AnalysisConfig, logger *slog.Logger) *HTTPAnalysisClient {
	return &HTTPAnalysisClient{
		endpoint:   cfg.Endpoint(),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.With("component", "analysis_client"),
	}
}

// CheckHighOccurrence posts {assignment_text} and decodes the report.
// Cancelling ctx aborts the request.
func (c *HTTPAnalysisClient) CheckHighOccurrence(ctx context.Context, assignmentText string) (*model.AnalysisReport, error) {
	payload, err := json.Marshal(model.AnalysisRequest{AssignmentText: assignmentText})
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("POST high-occurrence", "chars", len(assignmentText))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analysis request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read analysis response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("analysis API returned error", "status", resp.StatusCode)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var report model.AnalysisReport
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("failed to parse analysis response: %w", err)
	}
	return &report, nil
}
