package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ircline/ircline/ircclient"
)

func newTestRenderer(width int) (*renderer, *bytes.Buffer) {
	var buf bytes.Buffer
	r := newRenderer(&buf)
	r.width = func() int { return width }
	return r, &buf
}

func TestRenderStatus(t *testing.T) {
	r, buf := newTestRenderer(80)
	r.status(ircclient.Event{Kind: ircclient.EventStatus, Status: ircclient.Status{Severity: ircclient.SeverityError, Text: "WRONG SERVER NAME"}})
	if buf.String() != "E: WRONG SERVER NAME\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestRenderQuietHidesServerLines(t *testing.T) {
	r, buf := newTestRenderer(80)
	r.quiet = true

	r.status(ircclient.Event{Raw: ":srv 001 me :Welcome", Status: ircclient.Status{Text: ":srv 001 me :Welcome"}})
	r.status(ircclient.Event{Status: ircclient.Status{Severity: ircclient.SeveritySuccess, Text: "SUCCESSFULLY CONNECTED"}})

	if buf.String() != "S: SUCCESSFULLY CONNECTED\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestFormatChat(t *testing.T) {
	ev := ircclient.Event{Kind: ircclient.EventChat, Sender: "alice", Target: "#go", Text: "hi: all"}
	if got := formatChat(ev); got != "[#go] <alice> hi: all" {
		t.Errorf("formatChat = %q", got)
	}
}

func TestRenderMembers(t *testing.T) {
	r, buf := newTestRenderer(80)
	list, err := ircclient.ParseMemberRow(":srv 353 me = #go :bob @alice", "#go")
	if err != nil {
		t.Fatal(err)
	}
	ircclient.SortMembers(list.Members)
	r.members(list)

	if buf.String() != "#go (2): @alice bob\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestRenderChannelsTable(t *testing.T) {
	r, buf := newTestRenderer(40)
	r.channels([]ircclient.ChannelSummary{
		{Name: "#go", Users: 12, Topic: "The Go programming language, discussed at length"},
		{Name: "#help", Users: 3},
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "CHANNEL") || !strings.Contains(lines[0], "TOPIC") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "#go") || !strings.HasSuffix(lines[1], "...") {
		t.Errorf("row = %q, want a truncated topic", lines[1])
	}
	if len([]rune(lines[1])) > 40 {
		t.Errorf("row is %d columns wide, terminal is 40", len([]rune(lines[1])))
	}
	if lines[3] != "2 channels" {
		t.Errorf("footer = %q", lines[3])
	}
}

func TestRenderChannelsEmpty(t *testing.T) {
	r, buf := newTestRenderer(80)
	r.channels(nil)
	if buf.String() != "No channels listed.\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"a longer topic", 8, "a lon..."},
		{"héllo wörld", 6, "hél..."},
		{"abc", 2, "ab"},
		{"anything", 0, "anything"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
