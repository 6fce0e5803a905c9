package ircclient

import "sync"

// EventKind names a subscription slot.
type EventKind int

const (
	// EventStatus carries informational and error updates, including inbound
	// lines that fit no other category.
	EventStatus EventKind = iota
	// EventChat carries a chat message.
	EventChat
	// EventChannelList carries one row of a channel directory scan.
	EventChannelList
	// EventMemberList carries a member list row for the joined channel.
	EventMemberList
	// EventConnected fires once the connection is up and the handshake is queued.
	EventConnected

	eventKindCount
)

// String returns the slot name.
func (k EventKind) String() string {
	switch k {
	case EventStatus:
		return "status"
	case EventChat:
		return "chat"
	case EventChannelList:
		return "channel-list"
	case EventMemberList:
		return "member-list"
	case EventConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// Severity tags a status update.
type Severity int

const (
	// SeverityNormal is an informational update.
	SeverityNormal Severity = iota
	// SeverityError reports a failure.
	SeverityError
	// SeveritySuccess reports a completed operation.
	SeveritySuccess
)

// Tag returns the single-letter marker used when rendering a status.
func (s Severity) Tag() string {
	switch s {
	case SeverityError:
		return "E"
	case SeveritySuccess:
		return "S"
	default:
		return "N"
	}
}

// Status is a tagged status message.
type Status struct {
	Severity Severity
	Text     string
}

// String formats the status as "<tag>: <text>".
func (s Status) String() string {
	return s.Severity.Tag() + ": " + s.Text
}

// Event is a notification delivered to a subscription slot.
type Event struct {
	Kind EventKind

	// Raw is the inbound line the event was classified from. Empty for
	// events the engine generates itself.
	Raw string

	// For EventStatus
	Status Status

	// For EventChat
	Sender   string
	Target   string
	Text     string
	Outgoing bool // true for messages this session sent

	// For EventMemberList and EventConnected
	Channel string
}

// EventHandler is a callback for one subscription slot.
type EventHandler func(event Event)

// Registry holds at most one handler per event kind.
type Registry struct {
	mu       sync.RWMutex
	handlers [eventKindCount]EventHandler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Subscribe installs handler for kind, replacing any previous one.
// A nil handler empties the slot.
func (r *Registry) Subscribe(kind EventKind, handler EventHandler) {
	if kind < 0 || kind >= eventKindCount {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[kind] = handler
}

// Handler returns the handler installed for kind, or nil.
func (r *Registry) Handler(kind EventKind) EventHandler {
	if kind < 0 || kind >= eventKindCount {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handlers[kind]
}

// Publish delivers event to its slot on the calling goroutine. It reports
// whether a handler was invoked; an empty slot is not an error.
func (r *Registry) Publish(event Event) bool {
	handler := r.Handler(event.Kind)
	if handler == nil {
		return false
	}
	handler(event)
	return true
}
