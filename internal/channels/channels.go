// Package channels contains the delivery handlers the alert router fans out
// to. Every handler maps the channel-agnostic alert into its provider's wire
// shape, absorbs its own failures, and treats missing provider settings as a
// logged no-op so one misconfigured sink can never abort dispatch to the
// others.
package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultHTTPTimeout = 30 * time.Second

func newHTTPClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: defaultHTTPTimeout}
}

// postJSON marshals the payload and POSTs it, returning an error on network
// failure or a non-2xx response
func postJSON(ctx context.Context, client *http.Client, url string, payload any, headers map[string]string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("endpoint returned status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// decodeSettings unmarshals the channel's live settings blob. An empty blob
// yields the zero value so handlers can detect missing configuration.
func decodeSettings[T any](raw []byte) (T, error) {
	var out T
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("failed to parse channel settings: %w", err)
	}
	return out, nil
}
