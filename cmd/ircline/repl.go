// =============================================================================
// repl.go - REPL Loop
// =============================================================================
//
// Reads lines from the line editor, translates them into actions and runs
// them against the session. Results that arrive asynchronously (chat,
// statuses, member lists) are printed by the renderer's event handlers;
// the loop itself only prints errors, help and the channel table.
//
// =============================================================================

package main

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/ircline/ircline/ircclient"
)

// listTimeout bounds how long /list waits for the end of the directory.
const listTimeout = 30 * time.Second

// lineSource is where the REPL reads input lines.
type lineSource interface {
	GetLine(prompt string) (string, error)
}

type repl struct {
	session     *ircclient.Session
	input       lineSource
	render      *renderer
	defaultPort int
	listTimeout time.Duration
}

func newREPL(session *ircclient.Session, input lineSource, render *renderer, defaultPort int) *repl {
	return &repl{
		session:     session,
		input:       input,
		render:      render,
		defaultPort: defaultPort,
		listTimeout: listTimeout,
	}
}

// prompt shows where typed text would go.
func (r *repl) prompt() string {
	if !r.session.IsConnected() {
		return "[ircline] > "
	}
	if ch := r.session.Channel(); ch != "" {
		return "[" + ch + "] > "
	}
	return "[" + r.session.Target().Host + "] > "
}

// run reads and executes lines until /quit or end of input.
func (r *repl) run(ctx context.Context) {
	for {
		line, err := r.input.GetLine(r.prompt())
		if err != nil {
			if !errors.Is(err, io.EOF) {
				r.render.printf("Error: %v\n", err)
			}
			r.render.printf("\n")
			return
		}

		if !r.execute(ctx, translateInput(line, r.defaultPort)) {
			return
		}
	}
}

// execute runs one action. It returns false when the REPL should exit.
func (r *repl) execute(ctx context.Context, a action) bool {
	if a.err != nil {
		r.render.printf("Error: %v\n", a.err)
		return true
	}

	var err error
	switch a.kind {
	case actNone:

	case actSay:
		err = r.session.SendMessage(a.text, "")

	case actConnect:
		// Failures are already reported through the status slot.
		_ = r.session.Connect(ctx, a.host, a.port)

	case actNick:
		r.session.SetIdentity(a.nick, a.realName)
		if r.session.IsConnected() {
			r.render.printf("Nickname set to %s. It takes effect on the next /connect.\n", a.nick)
			break
		}
		r.render.printf("Nickname set to %s\n", a.nick)

	case actJoin:
		err = r.session.JoinChannel(a.channel)

	case actMsg:
		err = r.session.SendMessage(a.text, a.target)

	case actList:
		err = r.listChannels(ctx)

	case actNames:
		err = r.session.RequestMemberList()

	case actQuote:
		err = r.session.SendRaw(a.text)

	case actDisconnect:
		if !r.session.IsConnected() {
			r.render.printf("Not connected.\n")
			break
		}
		r.session.Disconnect()

	case actQuit:
		return false

	case actHelp:
		var b strings.Builder
		err = printHelp(&b, a.topic)
		r.render.printf("%s", b.String())

	case actUnknown:
		r.render.printf("Error: unknown command /%s. Type /help for a list of commands.\n", a.topic)
	}

	if err != nil {
		r.reportError(err)
	}
	return true
}

func (r *repl) listChannels(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.listTimeout)
	defer cancel()

	rows, err := r.session.ListChannels(ctx)
	if err != nil {
		return err
	}
	r.render.channels(rows)
	return nil
}

func (r *repl) reportError(err error) {
	switch {
	case errors.Is(err, ircclient.ErrNotConnected):
		r.render.printf("Error: not connected. Use /connect <host> first.\n")
	case errors.Is(err, context.DeadlineExceeded):
		r.render.printf("Error: the server did not finish in time.\n")
	default:
		r.render.printf("Error: %v\n", err)
	}
}
