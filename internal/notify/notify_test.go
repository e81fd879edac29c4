package notify

import (
	"testing"

	"github.com/vigild/vigil/pkg/logger"
)

func TestLogNotifier_WritesToLog(t *testing.T) {
	log := logger.NewMockLogger()
	n := NewLogNotifier(log)

	if err := n.Notify("proj failed", "boom"); err != nil {
		t.Fatalf("notify failed: %v", err)
	}
	if err := n.Notify("proj back to normal", ""); err != nil {
		t.Fatalf("notify failed: %v", err)
	}

	if len(log.InfoCalls) != 2 {
		t.Fatalf("expected 2 log lines, got %d", len(log.InfoCalls))
	}
	if log.InfoCalls[0] != "Notification: proj failed: boom" {
		t.Errorf("unexpected first line: %q", log.InfoCalls[0])
	}
	if log.InfoCalls[1] != "Notification: proj back to normal" {
		t.Errorf("unexpected second line: %q", log.InfoCalls[1])
	}

	if err := n.Close(); err != nil {
		t.Errorf("close failed: %v", err)
	}
}

func TestMockNotifier_Records(t *testing.T) {
	m := NewMockNotifier()

	if _, err := m.Last(); err == nil {
		t.Fatal("expected error when no notifications delivered")
	}

	_ = m.Notify("a", "1")
	_ = m.Notify("b", "2")

	last, err := m.Last()
	if err != nil {
		t.Fatalf("last failed: %v", err)
	}
	if last.Title != "b" || last.Body != "2" {
		t.Errorf("unexpected last notification: %+v", last)
	}

	_ = m.Close()
	if !m.CloseCalled {
		t.Error("expected CloseCalled to be set")
	}
}
