package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout   = 3 * time.Second
	defaultUserAgent = "solr-feeder"
	maxErrorBody     = 64 * 1024
)

// Client talks to the JSON update handler of a Solr server.
type Client struct {
	client    *http.Client
	baseURL   string
	userAgent string
	commit    bool
}

type Options struct {
	Timeout   time.Duration
	UserAgent string
	// Commit asks Solr to commit after every update.
	Commit bool
}

func New(baseURL string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}

	httpClient := http.Client{
		Timeout: opts.Timeout,
	}

	c := &Client{
		client:    &httpClient,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		userAgent: opts.UserAgent,
		commit:    opts.Commit,
	}
	httpClient.Transport = c
	return c
}

func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.userAgent)
	return http.DefaultTransport.RoundTrip(req)
}

// StatusError is a non-2xx answer from Solr.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("solr responded %d: %s", e.StatusCode, e.Message)
}

// solrResponse covers the parts of a Solr response body we read.
type solrResponse struct {
	ResponseHeader struct {
		Status int `json:"status"`
	} `json:"responseHeader"`
	Error *struct {
		Msg  string `json:"msg"`
		Code int    `json:"code"`
	} `json:"error,omitempty"`
}

func (c *Client) updateURL(core string) string {
	u := c.baseURL + "/solr/" + url.PathEscape(core) + "/update/json/docs"
	if c.commit {
		u += "?commit=true"
	}
	return u
}

// Update posts one JSON document to core. Solr replaces any document sharing
// its id. A non-2xx answer is returned as *StatusError; anything else means
// the request never completed.
func (c *Client) Update(ctx context.Context, core string, document any) error {
	body, err := json.Marshal(document)
	if err != nil {
		return fmt.Errorf("failed to encode document: %v", err)
	}
	return c.UpdateRaw(ctx, core, body)
}

// UpdateRaw is Update for an already encoded document.
func (c *Client) UpdateRaw(ctx context.Context, core string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.updateURL(core), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to perform request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return &StatusError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	return &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(resp.StatusCode, raw)}
}

// Ping checks that core is loaded and answering.
func (c *Client) Ping(ctx context.Context, core string) error {
	u := c.baseURL + "/solr/" + url.PathEscape(core) + "/admin/ping"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to perform request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(resp.StatusCode, raw)}
	}
	return nil
}

func errorMessage(status int, raw []byte) string {
	var parsed solrResponse
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Error != nil && parsed.Error.Msg != "" {
		return parsed.Error.Msg
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("unexpected status code: %d", status)
}
