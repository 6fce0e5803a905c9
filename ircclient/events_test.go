package ircclient

import (
	"reflect"
	"testing"
)

func TestRegistryReplacesHandler(t *testing.T) {
	r := NewRegistry()

	var got []string
	r.Subscribe(EventChat, func(ev Event) { got = append(got, "first:"+ev.Text) })
	r.Subscribe(EventChat, func(ev Event) { got = append(got, "second:"+ev.Text) })

	if !r.Publish(Event{Kind: EventChat, Text: "hi"}) {
		t.Fatal("Publish() = false with a handler installed")
	}
	if want := []string{"second:hi"}; !reflect.DeepEqual(got, want) {
		t.Errorf("delivered %q, want %q", got, want)
	}
}

func TestRegistryEmptySlot(t *testing.T) {
	r := NewRegistry()
	if r.Publish(Event{Kind: EventStatus}) {
		t.Error("Publish() = true for an empty slot")
	}

	r.Subscribe(EventStatus, func(Event) {})
	r.Subscribe(EventStatus, nil)
	if r.Handler(EventStatus) != nil {
		t.Error("nil Subscribe did not clear the slot")
	}
}

func TestRegistrySlotsAreIndependent(t *testing.T) {
	r := NewRegistry()

	counts := map[EventKind]int{}
	for _, kind := range []EventKind{EventStatus, EventChat, EventChannelList, EventMemberList, EventConnected} {
		kind := kind
		r.Subscribe(kind, func(Event) { counts[kind]++ })
	}
	r.Publish(Event{Kind: EventMemberList})
	r.Publish(Event{Kind: EventMemberList})
	r.Publish(Event{Kind: EventConnected})

	want := map[EventKind]int{EventMemberList: 2, EventConnected: 1}
	if !reflect.DeepEqual(counts, want) {
		t.Errorf("counts = %v, want %v", counts, want)
	}
}

func TestRegistryIgnoresUnknownKinds(t *testing.T) {
	r := NewRegistry()
	r.Subscribe(EventKind(99), func(Event) { t.Error("handler for unknown kind ran") })
	r.Subscribe(EventKind(-1), func(Event) { t.Error("handler for unknown kind ran") })

	if r.Publish(Event{Kind: EventKind(99)}) {
		t.Error("Publish() = true for an unknown kind")
	}
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{Status{SeverityNormal, "CONNECTING..."}, "N: CONNECTING..."},
		{Status{SeverityError, "WRONG SERVER NAME"}, "E: WRONG SERVER NAME"},
		{Status{SeveritySuccess, "SUCCESSFULLY CONNECTED"}, "S: SUCCESSFULLY CONNECTED"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestEventKindString(t *testing.T) {
	if EventChannelList.String() != "channel-list" || EventMemberList.String() != "member-list" {
		t.Error("unexpected EventKind names")
	}
}
