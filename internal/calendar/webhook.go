package calendar

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

// WebhookClient implements Sync against a JSON webhook endpoint:
// POST {base}/events creates an event and returns {"id": "..."},
// PUT/DELETE {base}/events/{id} update and delete it.
type WebhookClient struct {
	hc      *http.Client
	baseURL string
}

func NewWebhookClient(baseURL string, timeout time.Duration) *WebhookClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WebhookClient{
		hc:      &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *WebhookClient) CreateEvent(ctx context.Context, ev Event) (string, error) {
	status, body, err := c.do(ctx, http.MethodPost, c.baseURL+"/events", ev)
	if err != nil {
		return "", err
	}
	if status < 200 || status >= 300 {
		return "", fmt.Errorf("calendar create event: status=%d", status)
	}

	var r struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &r); err != nil {
		return "", fmt.Errorf("calendar create event: decode response: %w", err)
	}
	if r.ID == "" {
		return "", fmt.Errorf("calendar create event: empty event id")
	}
	return r.ID, nil
}

func (c *WebhookClient) UpdateEvent(ctx context.Context, ref string, ev Event) error {
	status, _, err := c.do(ctx, http.MethodPut, c.eventURL(ref), ev)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("calendar update event: status=%d", status)
	}
	return nil
}

func (c *WebhookClient) DeleteEvent(ctx context.Context, ref string) error {
	status, _, err := c.do(ctx, http.MethodDelete, c.eventURL(ref), nil)
	if err != nil {
		return err
	}
	// A missing remote event is as good as deleted.
	if status == http.StatusNotFound {
		return nil
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("calendar delete event: status=%d", status)
	}
	return nil
}

func (c *WebhookClient) eventURL(ref string) string {
	return c.baseURL + "/events/" + url.PathEscape(ref)
}

func (c *WebhookClient) do(ctx context.Context, method, u string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return 0, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, respBody, nil
}
