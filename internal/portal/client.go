package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/maxp/merchant-portal/internal/charts"
	"github.com/maxp/merchant-portal/internal/merchants"
	"github.com/maxp/merchant-portal/internal/shared"
)

// maxErrorBody bounds how much of a failed response is kept for the error message.
const maxErrorBody = 512

// Observer receives the outcome of every upstream call.
type Observer interface {
	ObserveUpstream(op string, status int, elapsed time.Duration)
}

// Client talks to the remote portal API. It is the only origin of merchant records
// and aggregates.
type Client struct {
	baseURL    string
	httpClient *http.Client
	observer   Observer
	timeout    time.Duration
	dashboard  singleflight.Group
}

// NewClient constructs a client for baseURL. A nil observer disables call metrics.
func NewClient(baseURL string, timeout time.Duration, observer Observer) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		observer: observer,
		timeout:  timeout,
	}
}

// Ping checks if the remote portal API answers.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.get(ctx, "ping", "/dashboard", nil)
	return err
}

// ListMerchants fetches the merchant collection.
func (c *Client) ListMerchants(ctx context.Context) ([]merchants.Merchant, error) {
	const op = "list merchants"
	body, err := c.get(ctx, op, "/merchants", nil)
	if err != nil {
		return nil, err
	}
	var records []merchants.Merchant
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, &shared.MalformedResponseError{Op: op, Err: err}
	}
	if records == nil {
		return nil, &shared.MalformedResponseError{Op: op, Err: errors.New("expected a merchant array")}
	}
	return records, nil
}

// CreateMerchant submits a new merchant.
func (c *Client) CreateMerchant(ctx context.Context, input merchants.NewMerchant) error {
	const op = "create merchant"
	payload, err := json.Marshal(input)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, op, http.MethodPost, "/merchants", nil, bytes.NewReader(payload))
	return err
}

// FetchAggregates fetches the dashboard summary. Concurrent callers share one
// upstream request. The shared request is detached from any single caller, so a
// caller that goes away only abandons its own wait.
func (c *Client) FetchAggregates(ctx context.Context) (charts.Aggregates, error) {
	const op = "fetch aggregates"
	detached := context.WithoutCancel(ctx)
	resultChan := c.dashboard.DoChan("dashboard", func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(detached, c.timeout)
		defer cancel()
		return c.fetchAggregates(fetchCtx, op)
	})
	select {
	case <-ctx.Done():
		return charts.Aggregates{}, &shared.NetworkError{Op: op, Err: ctx.Err()}
	case res := <-resultChan:
		if res.Err != nil {
			return charts.Aggregates{}, res.Err
		}
		return res.Val.(charts.Aggregates), nil
	}
}

func (c *Client) fetchAggregates(ctx context.Context, op string) (charts.Aggregates, error) {
	body, err := c.get(ctx, op, "/dashboard", nil)
	if err != nil {
		return charts.Aggregates{}, err
	}
	var aggregates charts.Aggregates
	if err := json.Unmarshal(body, &aggregates); err != nil {
		return charts.Aggregates{}, &shared.MalformedResponseError{Op: op, Err: err}
	}
	return aggregates, nil
}

// ExportReport downloads the merchants spreadsheet for the inclusive date range.
func (c *Client) ExportReport(ctx context.Context, startDate, endDate string) ([]byte, error) {
	query := url.Values{}
	query.Set("startDate", startDate)
	query.Set("endDate", endDate)
	query.Set("format", "excel")
	return c.get(ctx, "export report", "/export", query)
}

func (c *Client) get(ctx context.Context, op, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, op, http.MethodGet, path, query, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body io.Reader) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(middleware.RequestIDHeader, requestID(ctx))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(op, 0, start)
		return nil, &shared.NetworkError{Op: op, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	c.observe(op, resp.StatusCode, start)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var cause error
		if text := strings.TrimSpace(string(snippet)); text != "" {
			cause = errors.New(text)
		}
		return nil, &shared.NetworkError{Op: op, Status: resp.StatusCode, Err: cause}
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &shared.NetworkError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}
	return payload, nil
}

func (c *Client) observe(op string, status int, start time.Time) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveUpstream(op, status, time.Since(start))
}

// requestID forwards the inbound request ID so upstream logs can be correlated.
func requestID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
