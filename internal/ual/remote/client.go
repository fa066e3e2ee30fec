package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/fragmede/dacforge/internal/render"
	"github.com/fragmede/dacforge/internal/ual"
)

const (
	maxErrorBody  = 64 << 10
	maxErrorText  = 300
	userAgent     = "dacforge/1.0"
	contentTypeJS = "application/json"
)

// client talks JSON to a wallet signing service. The cookie jar keeps the
// service's login session between calls.
type client struct {
	base string
	http *http.Client
}

func newClient(base string, timeout time.Duration) *client {
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	return &client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
	}
}

// errorBody is the failure envelope signing services reply with.
type errorBody struct {
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Cause   *ual.ErrorCause `json:"cause"`
}

func (c *client) get(ctx context.Context, path string, dst any) error {
	return c.do(ctx, http.MethodGet, path, nil, dst)
}

func (c *client) post(ctx context.Context, path string, body, dst any) error {
	return c.do(ctx, http.MethodPost, path, body, dst)
}

func (c *client) do(ctx context.Context, method, path string, body, dst any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	url := c.base + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", contentTypeJS)
	if body != nil {
		req.Header.Set("Content-Type", contentTypeJS)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return decodeError(resp.StatusCode, resp.Header.Get("Content-Type"), raw)
	}

	if dst == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decoding response from %s: %w", url, err)
	}
	return nil
}

// decodeError turns a failed response into a *ual.Error, keeping the
// service's nested cause when it sent one.
func decodeError(status int, contentType string, raw []byte) error {
	statusErr := fmt.Errorf("HTTP %d", status)

	var eb errorBody
	if json.Unmarshal(raw, &eb) == nil && (eb.Error != "" || eb.Message != "" || eb.Cause != nil) {
		msg := eb.Error
		if msg == "" {
			msg = eb.Message
		}
		if msg == "" {
			msg = statusErr.Error()
		}
		return &ual.Error{Message: msg, Cause: eb.Cause, Err: statusErr}
	}

	text := strings.TrimSpace(string(raw))
	if render.LooksLikeHTML(contentType, raw) {
		text = render.HTMLToText(text, maxErrorText)
	}
	if text == "" {
		return &ual.Error{Message: statusErr.Error(), Err: statusErr}
	}
	return &ual.Error{Message: fmt.Sprintf("HTTP %d: %s", status, text), Err: statusErr}
}
