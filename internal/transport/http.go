package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ayusman/mudra/internal/gesture"
)

// HTTP posts both hand labels to a fixed endpoint and expects a JSON acknowledgement.
type HTTP struct {
	url    string
	client *http.Client
}

// NewHTTP creates an HTTP transport. A nil client uses http.DefaultClient;
// timeouts come from the context passed to Send.
func NewHTTP(url string, client *http.Client) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{url: url, client: client}
}

// Send posts {"right_hand": ..., "left_hand": ...}.
func (h *HTTP) Send(ctx context.Context, c gesture.Classification) error {
	body, err := json.Marshal(PairPayload{
		RightHand: c.Right.String(),
		LeftHand:  c.Left.String(),
	})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", h.url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("controller returned %d: %s", resp.StatusCode, bytes.TrimSpace(data))
	}

	var ack Response
	if err := json.Unmarshal(data, &ack); err != nil {
		return fmt.Errorf("parse acknowledgement: %w", err)
	}
	if ack.Status == StatusError {
		return fmt.Errorf("controller error: %s", ack.Message)
	}
	return nil
}

// Close is a no-op; connections belong to the http.Client.
func (h *HTTP) Close() error {
	return nil
}
