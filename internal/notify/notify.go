// Package notify delivers build results to the user. The daemon talks
// to a Notifier collaborator; the desktop implementation renders through
// the freedesktop notification service, with a log-backed fallback when
// no session bus is available.
package notify

import (
	"fmt"

	"github.com/vigild/vigil/pkg/logger"
)

// Notifier displays fire-and-forget notifications. Close releases any
// transport resources; it is invoked by the daemon's own shutdown, not
// by process-exit hooks.
type Notifier interface {
	Notify(title, body string) error
	Close() error
}

// LogNotifier writes notifications to the daemon log. Used when desktop
// notifications are unavailable or disabled.
type LogNotifier struct {
	log logger.Logger
}

// NewLogNotifier creates a notifier backed by the given logger.
func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Notify logs the notification.
func (n *LogNotifier) Notify(title, body string) error {
	if body == "" {
		n.log.Info("Notification: %s", title)
		return nil
	}
	n.log.Info("Notification: %s: %s", title, body)
	return nil
}

// Close is a no-op.
func (n *LogNotifier) Close() error {
	return nil
}

// Notification is one recorded MockNotifier delivery.
type Notification struct {
	Title string
	Body  string
}

// MockNotifier records notifications for verification in tests.
type MockNotifier struct {
	Notifications []Notification
	CloseCalled   bool
	NotifyErr     error
}

// NewMockNotifier creates a new MockNotifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// Notify records the notification and returns NotifyErr.
func (m *MockNotifier) Notify(title, body string) error {
	m.Notifications = append(m.Notifications, Notification{Title: title, Body: body})
	return m.NotifyErr
}

// Close records that Close was called.
func (m *MockNotifier) Close() error {
	m.CloseCalled = true
	return nil
}

// Last returns the most recent notification, or an error if none were
// delivered.
func (m *MockNotifier) Last() (Notification, error) {
	if len(m.Notifications) == 0 {
		return Notification{}, fmt.Errorf("no notifications delivered")
	}
	return m.Notifications[len(m.Notifications)-1], nil
}

var (
	_ Notifier = (*LogNotifier)(nil)
	_ Notifier = (*MockNotifier)(nil)
)
