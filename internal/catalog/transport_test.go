package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPTransportSendsCacheBustingRequest(t *testing.T) {
	var captured *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(context.Background())
		_, _ = w.Write([]byte("[]"))
	}))
	defer server.Close()

	transport := NewHTTPTransport(5 * time.Second)
	body, err := transport.Fetch(context.Background(), server.URL+"/catalog.json")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if string(body) != "[]" {
		t.Errorf("unexpected body %q", body)
	}

	if captured == nil {
		t.Fatalf("server never received a request")
	}
	if captured.Header.Get("Cache-Control") != "no-cache" || captured.Header.Get("Pragma") != "no-cache" {
		t.Errorf("expected no-cache headers, got %v", captured.Header)
	}
	if captured.URL.Query().Get("_") == "" {
		t.Errorf("expected a cache-busting query parameter, got %q", captured.URL.RawQuery)
	}
}

func TestHTTPTransportRejectsNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	transport := NewHTTPTransport(5 * time.Second)
	if _, err := transport.Fetch(context.Background(), server.URL); err == nil {
		t.Fatalf("expected an error for a non-200 response")
	}
}

func TestHTTPTransportRejectsInvalidURL(t *testing.T) {
	transport := NewHTTPTransport(5 * time.Second)
	if _, err := transport.Fetch(context.Background(), "http://invalid url/catalog.json"); err == nil {
		t.Fatalf("expected an error for an invalid URL")
	}
}
