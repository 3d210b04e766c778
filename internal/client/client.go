// Package client is the admin API client used by the deck CLI.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"pmp-reports/internal/domain"
	"pmp-reports/internal/service"

	"github.com/go-resty/resty/v2"
)

const resultSuccess = 2000

// envelope mirrors the server's {"code","type","message","result"} wrapper
type envelope struct {
	Code    int             `json:"code"`
	Type    string          `json:"type"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// APIError error answer from the service
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error (status %d)", e.Status)
	}
	return e.Message
}

var knownErrors = []error{
	domain.ErrReportNotFound,
	domain.ErrProjectNotFound,
	domain.ErrShareTokenMissing,
	domain.ErrConflict,
	domain.ErrInvalidRequest,
}

// Unwrap maps server messages back to the domain sentinels, so errors.Is works client side
func (e *APIError) Unwrap() error {
	for _, known := range knownErrors {
		if strings.HasPrefix(e.Message, known.Error()) {
			return known
		}
	}
	return nil
}

// Client admin API client
type Client struct {
	http *resty.Client
}

func New(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if token != "" {
		c.SetAuthToken(token)
	}
	return &Client{http: c}
}

// SetUserID identity sent as X-User-Id on every request
func (c *Client) SetUserID(userID string) {
	if userID != "" {
		c.http.SetHeader("X-User-Id", userID)
	}
}

func (c *Client) call(req *resty.Request, method, path string, out any) error {
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		return &APIError{Status: resp.StatusCode(), Message: strings.TrimSpace(string(resp.Body()))}
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return fmt.Errorf("%s %s: invalid response: %w", method, path, err)
	}
	if env.Code != resultSuccess {
		return &APIError{Status: resp.StatusCode(), Message: env.Message}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("%s %s: invalid result: %w", method, path, err)
	}
	return nil
}

func (c *Client) GenerateReport(ctx context.Context, req service.GenerateReportRequest) (*service.GenerateReportResponse, error) {
	var out service.GenerateReportResponse
	r := c.http.R().SetContext(ctx).
		SetPathParam("projectId", req.ProjectID).
		SetBody(req)
	if err := c.call(r, resty.MethodPost, "/admin/api/v1/projects/{projectId}/reports", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListReports(ctx context.Context, req service.ListReportsRequest) (*service.ListReportsResponse, error) {
	var out service.ListReportsResponse
	r := c.http.R().SetContext(ctx)
	if req.Query != "" {
		r.SetQueryParam("q", req.Query)
	}
	if req.ProjectID != "" {
		r.SetQueryParam("project_id", req.ProjectID)
	}
	if err := c.call(r, resty.MethodGet, "/admin/api/v1/reports", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetReport(ctx context.Context, reportID string) (*domain.StoredReport, error) {
	var out domain.StoredReport
	r := c.http.R().SetContext(ctx).SetPathParam("id", reportID)
	if err := c.call(r, resty.MethodGet, "/admin/api/v1/reports/{id}", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteReport(ctx context.Context, reportID string) error {
	r := c.http.R().SetContext(ctx).SetPathParam("id", reportID)
	return c.call(r, resty.MethodDelete, "/admin/api/v1/reports/{id}", nil)
}

func (c *Client) ShareLink(ctx context.Context, reportID, origin string) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	r := c.http.R().SetContext(ctx).SetPathParam("id", reportID)
	if origin != "" {
		r.SetQueryParam("origin", origin)
	}
	if err := c.call(r, resty.MethodGet, "/admin/api/v1/reports/{id}/share-link", &out); err != nil {
		return "", err
	}
	return out.URL, nil
}
