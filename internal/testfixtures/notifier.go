package testfixtures

import (
	"context"
	"sync"

	"github.com/example/conference-assistant/internal/reminder"
)

// RecordingNotifier captures delivered notifications for assertions.
type RecordingNotifier struct {
	mu       sync.Mutex
	err      error
	recorded []reminder.Notification
}

// NewRecordingNotifier constructs an empty recording notifier.
func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

// Notify records the notification and returns the configured error, if any.
func (n *RecordingNotifier) Notify(_ context.Context, notification reminder.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.recorded = append(n.recorded, notification)
	return n.err
}

// Notifications returns a copy of everything delivered so far.
func (n *RecordingNotifier) Notifications() []reminder.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]reminder.Notification(nil), n.recorded...)
}

// FailWith makes subsequent deliveries return err.
func (n *RecordingNotifier) FailWith(err error) {
	n.mu.Lock()
	n.err = err
	n.mu.Unlock()
}
