package vault

import "sync"

// EventKind classifies a store event.
type EventKind int

const (
	EventLoaded EventKind = iota + 1
	EventLoadFailed
	EventSaved
	EventSaveFailed
	EventImported
	EventImportFailed
	EventExported
	EventExportFailed
)

func (k EventKind) String() string {
	switch k {
	case EventLoaded:
		return "loaded"
	case EventLoadFailed:
		return "load failed"
	case EventSaved:
		return "saved"
	case EventSaveFailed:
		return "save failed"
	case EventImported:
		return "imported"
	case EventImportFailed:
		return "import failed"
	case EventExported:
		return "exported"
	case EventExportFailed:
		return "export failed"
	default:
		return "unknown"
	}
}

// Event reports a persistence outcome. Failures never change the result a
// mutation returns; they are delivered here instead.
type Event struct {
	Kind EventKind
	// Op names the operation that triggered the event, e.g. "add".
	Op string
	// Path is the import or export file, or the backend location.
	Path  string
	Count int
	Err   error
}

// Failed reports whether the event is a failure.
func (e Event) Failed() bool {
	return e.Err != nil
}

// Notifier receives store events. It is called with the store lock held and
// must not call back into the Store.
type Notifier func(Event)

// EventLog buffers events for a consumer that cannot be called back while
// the store lock is held. Its Notify method is a Notifier.
type EventLog struct {
	mu     sync.Mutex
	events []Event
}

// Notify appends ev.
func (l *EventLog) Notify(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

// Drain returns the buffered events and empties the log.
func (l *EventLog) Drain() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.events
	l.events = nil
	return out
}

// Failures returns the buffered failure events without draining.
func (l *EventLog) Failures() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Event
	for _, ev := range l.events {
		if ev.Failed() {
			out = append(out, ev)
		}
	}
	return out
}
