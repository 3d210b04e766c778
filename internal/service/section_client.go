package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"pmp-reports/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// SectionFetcher reads one project sub-resource.
// It returns nil, nil when the sub-resource has no data for the project.
type SectionFetcher interface {
	FetchSection(ctx context.Context, projectID string, section domain.SectionName) (json.RawMessage, error)
}

// UpstreamError non-success answer from the panel API
type UpstreamError struct {
	Resource   string
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: upstream status %d: %s", e.Resource, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: upstream error: %s", e.Resource, e.Message)
}

// SectionClientOptions resty client settings
type SectionClientOptions struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	RetryCount int
}

// newUpstreamClient resty client for the panel API
func newUpstreamClient(opts SectionClientOptions) *resty.Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Accept", "application/json")
	if opts.Token != "" {
		client.SetAuthToken(opts.Token)
	}
	return client
}

// getUpstream GET path from the panel API.
// 404, 204 and a null body (bare or enveloped) yield nil, nil.
func getUpstream(ctx context.Context, client *resty.Client, logger *zap.Logger, resource, path string, params map[string]string) (json.RawMessage, error) {
	resp, err := client.R().
		SetContext(ctx).
		SetPathParams(params).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", resource, err)
	}

	logger.Debug("Fetched upstream resource",
		zap.String("resource", resource),
		zap.String("url", resp.Request.URL),
		zap.Int("status_code", resp.StatusCode()),
	)

	switch {
	case resp.StatusCode() == http.StatusNotFound, resp.StatusCode() == http.StatusNoContent:
		return nil, nil
	case resp.StatusCode() < 200 || resp.StatusCode() >= 300:
		return nil, &UpstreamError{
			Resource:   resource,
			StatusCode: resp.StatusCode(),
			Message:    truncate(strings.TrimSpace(string(resp.Body())), 200),
		}
	}

	return decodeUpstreamBody(resource, resp.Body())
}

// SectionClient per-project sub-resource API client
type SectionClient struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewSectionClient creates the sub-resource client
func NewSectionClient(opts SectionClientOptions, logger *zap.Logger) *SectionClient {
	return &SectionClient{httpClient: newUpstreamClient(opts), logger: logger}
}

var _ SectionFetcher = (*SectionClient)(nil)

// FetchSection GET /projects/{projectId}/{segment}
func (c *SectionClient) FetchSection(ctx context.Context, projectID string, section domain.SectionName) (json.RawMessage, error) {
	if !section.Valid() {
		return nil, fmt.Errorf("unknown section %q", section)
	}
	return getUpstream(ctx, c.httpClient, c.logger, string(section), "/projects/{projectId}/{segment}", map[string]string{
		"projectId": projectID,
		"segment":   section.PathSegment(),
	})
}

// decodeUpstreamBody validates the payload and unwraps the {"success","data"} envelope
func decodeUpstreamBody(resource string, body []byte) (json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if domain.IsNullJSON(body) {
		return nil, nil
	}
	if !json.Valid(body) {
		return nil, &UpstreamError{Resource: resource, Message: "invalid JSON body"}
	}

	if body[0] == '{' {
		var envelope struct {
			Success *bool           `json:"success"`
			Data    json.RawMessage `json:"data"`
			Message string          `json:"message"`
			Error   string          `json:"error"`
		}
		if err := json.Unmarshal(body, &envelope); err == nil && envelope.Success != nil {
			if !*envelope.Success {
				msg := envelope.Message
				if msg == "" {
					msg = envelope.Error
				}
				return nil, &UpstreamError{Resource: resource, Message: msg}
			}
			if domain.IsNullJSON(envelope.Data) {
				return nil, nil
			}
			return append(json.RawMessage(nil), envelope.Data...), nil
		}
	}
	return append(json.RawMessage(nil), body...), nil
}

// truncate cuts s to at most n bytes without splitting a rune
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
