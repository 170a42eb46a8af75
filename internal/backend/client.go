package backend

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

	"github.com/cmc-meeting/ai-service/internal/agent/model"
	logx "github.com/cmc-meeting/ai-service/pkg/logger"
)

// Client wraps the meeting REST API. Every operation returns a tool result
// value, never a Go error: decoded JSON on success, a {"error": ...} map on
// non-2xx responses and transport failures. The model sees failures as data
// and can react to them.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient normalises the configured URL so it always ends with exactly one
// "/api/v1", regardless of how the environment was written.
func NewClient(cfg model.BackendConfig) *Client {
	base := strings.TrimRight(cfg.URL, "/")
	if !strings.HasSuffix(base, "/api/v1") {
		base += "/api/v1"
	}
	logx.Info().Str("base_url", base).Msg("backend client configured")

	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// authHeader guarantees a single "Bearer " prefix on the forwarded token.
func authHeader(token string) string {
	if !strings.HasPrefix(token, "Bearer ") {
		return "Bearer " + token
	}
	return token
}

func errResult(err error) map[string]any {
	return map[string]any{"error": err.Error()}
}

func errText(text string) map[string]any {
	return map[string]any{"error": text}
}

// request performs one authenticated call and returns the raw status and
// body. Transport-level failures surface as the returned error; HTTP error
// statuses do not.
func (c *Client) request(ctx context.Context, token, method, path string, query url.Values, payload any) (int, []byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", authHeader(token))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, b, nil
}

// call wraps request for the common case: decode JSON on an accepted status,
// otherwise return the response text as an error value.
func (c *Client) call(ctx context.Context, token, method, path string, query url.Values, payload any, accepted ...int) any {
	status, body, err := c.request(ctx, token, method, path, query, payload)
	if err != nil {
		logx.Warn().Err(err).Str("path", path).Msg("backend request failed")
		return errResult(err)
	}
	if !statusAccepted(status, accepted) {
		return errText(string(body))
	}
	return decodeJSON(body)
}

func statusAccepted(status int, accepted []int) bool {
	if len(accepted) == 0 {
		return status == http.StatusOK
	}
	for _, s := range accepted {
		if status == s {
			return true
		}
	}
	return false
}

// decodeJSON best-effort decodes a response body; a non-JSON body comes back
// as its raw text so the model still sees something useful.
func decodeJSON(b []byte) any {
	if len(bytes.TrimSpace(b)) == 0 {
		return map[string]any{}
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return string(b)
	}
	return v
}
