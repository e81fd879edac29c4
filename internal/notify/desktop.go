package notify

import (
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/vigild/vigil/pkg/logger"
)

const (
	notifyService   = "org.freedesktop.Notifications"
	notifyPath      = "/org/freedesktop/Notifications"
	notifyInterface = "org.freedesktop.Notifications"

	// notifyTimeoutMs is the expiry hint passed to the notification
	// server.
	notifyTimeoutMs = 5000
)

// DesktopNotifier renders notifications through the freedesktop
// notification service on the session bus. One notification id is
// reused across calls, so each build result replaces the previous
// popup instead of stacking.
type DesktopNotifier struct {
	log  logger.Logger
	conn *dbus.Conn

	mu     sync.Mutex
	lastID uint32
}

// NewDesktopNotifier connects to the session bus and verifies the
// notification service is reachable. Returns an error when no session
// bus or no notification server is available, so callers can fall back
// to a LogNotifier.
func NewDesktopNotifier(log logger.Logger) (*DesktopNotifier, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("session bus unavailable: %w", err)
	}

	obj := conn.Object(notifyService, notifyPath)
	var caps []string
	if err := obj.Call(notifyInterface+".GetCapabilities", 0).Store(&caps); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("notification service unavailable: %w", err)
	}
	log.Info("Desktop notifications ready (capabilities: %v)", caps)

	return &DesktopNotifier{log: log, conn: conn}, nil
}

// Notify shows the notification, replacing the previously shown one.
func (n *DesktopNotifier) Notify(title, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	obj := n.conn.Object(notifyService, notifyPath)
	call := obj.Call(notifyInterface+".Notify", 0,
		"Vigil",       // app_name
		n.lastID,      // replaces_id
		"",            // app_icon
		title,         // summary
		body,          // body
		[]string{},    // actions
		map[string]dbus.Variant{}, // hints
		int32(notifyTimeoutMs),
	)
	if call.Err != nil {
		return fmt.Errorf("notify failed: %w", call.Err)
	}
	return call.Store(&n.lastID)
}

// Close dismisses the last notification and disconnects from the bus.
func (n *DesktopNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.lastID != 0 {
		obj := n.conn.Object(notifyService, notifyPath)
		if call := obj.Call(notifyInterface+".CloseNotification", 0, n.lastID); call.Err != nil {
			n.log.Warning("Failed to close notification: %v", call.Err)
		}
		n.lastID = 0
	}
	return n.conn.Close()
}

var _ Notifier = (*DesktopNotifier)(nil)
