package diag

import "testing"

func TestHubSubscribeAndReport(t *testing.T) {
	h := NewHub()

	var got []Event
	h.Subscribe(func(ev Event) { got = append(got, ev) })

	h.Warnf("People/John Doe.md", "note not found")
	h.Infof("", "scan complete: %d persons", 3)

	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[0].Severity != Warn || got[0].Path != "People/John Doe.md" {
		t.Errorf("first event = %+v", got[0])
	}
	if got[1].Message != "scan complete: 3 persons" {
		t.Errorf("second event message = %q", got[1].Message)
	}
}

func TestHubUnsubscribe(t *testing.T) {
	h := NewHub()

	count := 0
	unsub := h.Subscribe(func(Event) { count++ })

	h.Debugf("", "one")
	unsub()
	h.Debugf("", "two")

	if count != 1 {
		t.Errorf("got %d events after unsubscribe, want 1", count)
	}
}

func TestNilHubIsSafe(t *testing.T) {
	var h *Hub
	h.Warnf("x.md", "should not panic")
	h.Report(Info, "", "nor this")
}

func TestEventString(t *testing.T) {
	ev := Event{Severity: Warn, Path: "a.md", Message: "broken link"}
	if got := ev.String(); got != "warn: a.md: broken link" {
		t.Errorf("String() = %q", got)
	}
	ev = Event{Severity: Info, Message: "done"}
	if got := ev.String(); got != "info: done" {
		t.Errorf("String() = %q", got)
	}
}
