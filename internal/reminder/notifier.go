package reminder

import "context"

// Notification is the payload handed to the external notification
// collaborator. The scheduler decides when and with what content to notify;
// permission state, delivery channel and audio/haptic playback belong to the
// collaborator.
type Notification struct {
	Title              string
	Body               string
	Tag                string
	RequireInteraction bool
	SoundEnabled       bool
	VibrationEnabled   bool
}

// Notifier delivers notifications to the user.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}
