package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Transport fetches the raw catalog document. It exists as an interface so
// tests can substitute a fake without touching global HTTP state.
type Transport interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// HTTPTransport fetches the catalog over HTTP. Requests carry cache-busting
// so intermediaries never serve a stale catalog, and the body is read in full
// before the caller decodes anything.
type HTTPTransport struct {
	client *http.Client
	now    func() time.Time
}

// NewHTTPTransport builds a transport with the given per-request timeout.
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		client: &http.Client{Timeout: timeout},
		now:    time.Now,
	}
}

// Fetch retrieves the document at rawURL and returns its body.
func (t *HTTPTransport) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog URL: %w", err)
	}

	query := parsed.Query()
	query.Set("_", strconv.FormatInt(t.now().UnixMilli(), 10))
	parsed.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog resource returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog body: %w", err)
	}
	return body, nil
}
