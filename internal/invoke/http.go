package invoke

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmorgan81/promobot/internal/log"
	"github.com/samber/lo"
)

var transientStatus = []int{
	http.StatusTooManyRequests,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

// HTTP posts bodies to Endpoint/<modelID>, authenticating with Key.
type HTTP struct {
	Client    *http.Client
	Endpoint  string
	Key       string
	KeyHeader string
}

func (h *HTTP) Invoke(ctx context.Context, modelID string, body []byte) ([]byte, error) {
	target := strings.TrimRight(h.Endpoint, "/") + "/" + url.PathEscape(modelID)
	log := log.FromContextOrDiscard(ctx).WithGroup("http").With("url", target)
	log.Debug("invoking model", "bytes", len(body))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if h.Key != "" {
		req.Header.Set(lo.Ternary(h.KeyHeader != "", h.KeyHeader, "Authorization"),
			lo.Ternary(h.KeyHeader != "", h.Key, "Bearer "+h.Key))
	}

	client := lo.Ternary(h.Client != nil, h.Client, http.DefaultClient)
	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{Code: "TransportError", Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Code: "TransportError", Message: err.Error(), Err: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, nil
	}

	log.Warn("model returned error status", "status", resp.StatusCode)
	return nil, &Error{
		Code:      fmt.Sprintf("HTTP%d", resp.StatusCode),
		Message:   envelopeMessage(data),
		Transient: lo.Contains(transientStatus, resp.StatusCode),
	}
}

// envelopeMessage pulls "message" out of a JSON error body, falling back to
// the raw body text.
func envelopeMessage(data []byte) string {
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Message != "" {
		return envelope.Message
	}
	return strings.TrimSpace(string(data))
}
