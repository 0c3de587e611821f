//go:build !linux

package notify

import "context"

// New returns a no-op notifier; desktop notifications need D-Bus.
func New() Notifier {
	return stubNotifier{}
}

type stubNotifier struct{}

func (stubNotifier) Notify(context.Context, Notification) (uint32, error) { return 0, nil }
