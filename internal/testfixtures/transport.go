package testfixtures

import (
	"context"
	"sync"
)

// StaticTransport serves a canned catalog document and counts fetches.
type StaticTransport struct {
	mu      sync.Mutex
	payload []byte
	err     error
	fetches int
}

// NewStaticTransport constructs a transport serving the given document.
func NewStaticTransport(payload []byte) *StaticTransport {
	return &StaticTransport{payload: payload}
}

// Fetch returns the configured document or error.
func (t *StaticTransport) Fetch(_ context.Context, _ string) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fetches++
	if t.err != nil {
		return nil, t.err
	}
	return append([]byte(nil), t.payload...), nil
}

// SetPayload swaps the served document.
func (t *StaticTransport) SetPayload(payload []byte) {
	t.mu.Lock()
	t.payload = payload
	t.mu.Unlock()
}

// FailWith makes subsequent fetches return err.
func (t *StaticTransport) FailWith(err error) {
	t.mu.Lock()
	t.err = err
	t.mu.Unlock()
}

// Fetches reports how many times Fetch was called.
func (t *StaticTransport) Fetches() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fetches
}
