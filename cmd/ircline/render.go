// =============================================================================
// render.go - Terminal Output for Session Events
// =============================================================================
//
// The renderer subscribes to a session's event slots and prints what
// arrives. Handlers run on the session's reader goroutine while the REPL
// prints from the main goroutine, so every write goes through one mutex.
//
// =============================================================================

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/ircline/ircline/ircclient"
)

const defaultWidth = 80

type renderer struct {
	mu  sync.Mutex
	out io.Writer

	// width returns the terminal width in columns.
	width func() int

	// quiet hides plain server lines; errors and our own statuses still show.
	quiet bool
}

func newRenderer(out io.Writer) *renderer {
	return &renderer{out: out, width: terminalWidth}
}

func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}

// attach installs the renderer's handlers on s.
func (r *renderer) attach(s *ircclient.Session) {
	s.On(ircclient.EventStatus, r.status)
	s.On(ircclient.EventChat, r.chat)

	members := ircclient.NewMemberScan(s, r.members)
	s.On(ircclient.EventMemberList, members.Handle)
}

func (r *renderer) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, format, args...)
}

func (r *renderer) status(ev ircclient.Event) {
	if r.quiet && ev.Raw != "" && ev.Status.Severity == ircclient.SeverityNormal {
		return
	}
	r.printf("%s\n", ev.Status)
}

func (r *renderer) chat(ev ircclient.Event) {
	r.printf("%s\n", formatChat(ev))
}

// formatChat renders a chat event as "[target] <sender> text".
func formatChat(ev ircclient.Event) string {
	return fmt.Sprintf("[%s] <%s> %s", ev.Target, ev.Sender, ev.Text)
}

func (r *renderer) members(list ircclient.MemberList) {
	r.printf("%s (%d): %s\n", list.Channel, len(list.Members), strings.Join(list.Names(), " "))
}

// channels prints a channel directory as a table, cutting topics to fit
// the terminal.
func (r *renderer) channels(rows []ircclient.ChannelSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(rows) == 0 {
		fmt.Fprintln(r.out, "No channels listed.")
		return
	}

	nameWidth := len("CHANNEL")
	for _, row := range rows {
		nameWidth = max(nameWidth, len(row.Name))
	}
	topicWidth := r.width() - nameWidth - len("USERS") - 6

	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CHANNEL\tUSERS\tTOPIC")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", row.Name, strconv.Itoa(row.Users), truncate(row.Topic, topicWidth))
	}
	tw.Flush()
	fmt.Fprintf(r.out, "%d channels\n", len(rows))
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	runes := []rune(s)
	if n <= 0 || len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
