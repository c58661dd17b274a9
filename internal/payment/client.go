// Package payment is the client for the external payment capture app.
// The core never settles money itself; it asks the payment app to
// capture a previously agreed amount against the user's global
// payment token and records the verdict.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// StatusAccepted is the payment app's verdict for a successful capture.
const StatusAccepted = "accepted"

// CaptureResult is the payment app's response to a capture call.
type CaptureResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Accepted reports whether the capture went through.
func (r CaptureResult) Accepted() bool {
	return r.Status == StatusAccepted
}

// Client talks to the payment app over HTTP. Capture is a blocking
// call bounded by the client timeout, so a slow payment app cannot
// hang a reservation worker indefinitely.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient builds a payment client for the app at host:port.
func NewClient(host, port string) *Client {
	return &Client{
		baseURL: fmt.Sprintf("http://%s:%s", host, port),
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Initialize resets the payment app's state at the start of a run.
func (c *Client) Initialize(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/initialize", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("payment app initialize: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("payment app initialize: got status %d", resp.StatusCode)
	}
	return nil
}

// Capture asks the payment app to charge amount against the given
// global payment token. A declined capture is not an error: the
// result carries the verdict and callers react to it. Errors mean the
// app could not be reached or answered garbage.
func (c *Client) Capture(ctx context.Context, amount int, globalPaymentToken string) (CaptureResult, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"amount":               amount,
		"global_payment_token": globalPaymentToken,
	})
	if err != nil {
		return CaptureResult{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payments", bytes.NewReader(payload))
	if err != nil {
		return CaptureResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return CaptureResult{}, fmt.Errorf("payment app capture: %w", err)
	}
	defer resp.Body.Close()

	var result CaptureResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return CaptureResult{}, fmt.Errorf("payment app capture: decode response: %w", err)
	}
	return result, nil
}
