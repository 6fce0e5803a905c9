// =============================================================================
// translate.go - Input Line Parsing
// =============================================================================
//
// Turns one line typed at the prompt into an action for the REPL. Lines
// that start with "/" are commands; anything else is chat text for the
// current channel. A doubled slash ("//me waves") sends the text with one
// slash removed.
//
// =============================================================================

package main

import (
	"fmt"
	"strconv"
	"strings"
)

// actionKind names what the REPL should do with a line.
type actionKind int

const (
	actNone actionKind = iota
	actSay
	actConnect
	actNick
	actJoin
	actMsg
	actList
	actNames
	actQuote
	actDisconnect
	actQuit
	actHelp
	actUnknown
)

// action is a parsed input line.
type action struct {
	kind actionKind

	host string
	port int

	nick     string
	realName string

	channel string
	target  string
	text    string

	// topic is the help topic, or the command name for actUnknown.
	topic string

	// err is set when the command was recognized but its arguments are bad.
	err error
}

// translateInput parses a line typed at the prompt.
func translateInput(line string, defaultPort int) action {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return action{kind: actNone}
	}
	if !strings.HasPrefix(trimmed, "/") {
		return action{kind: actSay, text: trimmed}
	}
	if strings.HasPrefix(trimmed, "//") {
		return action{kind: actSay, text: trimmed[1:]}
	}

	keyword, args, _ := strings.Cut(trimmed[1:], " ")
	keyword = strings.ToLower(keyword)
	args = strings.TrimSpace(args)

	switch keyword {
	case "connect", "server":
		return translateConnect(args, defaultPort)

	case "nick":
		if args == "" {
			return action{kind: actNick, err: fmt.Errorf("usage: /nick <nickname> [real name]")}
		}
		nick, realName, _ := strings.Cut(args, " ")
		return action{kind: actNick, nick: nick, realName: strings.TrimSpace(realName)}

	case "join", "j":
		channel, _, _ := strings.Cut(args, " ")
		if channel == "" {
			return action{kind: actJoin, err: fmt.Errorf("usage: /join <channel>")}
		}
		if !strings.ContainsAny(channel[:1], "#&+!") {
			channel = "#" + channel
		}
		return action{kind: actJoin, channel: channel}

	case "msg", "query":
		target, text, _ := strings.Cut(args, " ")
		text = strings.TrimSpace(text)
		if target == "" || text == "" {
			return action{kind: actMsg, err: fmt.Errorf("usage: /msg <target> <text>")}
		}
		return action{kind: actMsg, target: target, text: text}

	case "list":
		return action{kind: actList}

	case "names", "who":
		return action{kind: actNames}

	case "quote", "raw":
		if args == "" {
			return action{kind: actQuote, err: fmt.Errorf("usage: /quote <line>")}
		}
		return action{kind: actQuote, text: args}

	case "disconnect":
		return action{kind: actDisconnect}

	case "quit", "exit":
		return action{kind: actQuit}

	case "help", "?":
		return action{kind: actHelp, topic: strings.TrimPrefix(strings.ToLower(args), "/")}

	default:
		return action{kind: actUnknown, topic: keyword}
	}
}

// translateConnect parses "/connect <host> [port]" and "/connect <host>:<port>".
func translateConnect(args string, defaultPort int) action {
	fields := strings.Fields(args)
	if len(fields) == 0 || len(fields) > 2 {
		return action{kind: actConnect, err: fmt.Errorf("usage: /connect <host> [port]")}
	}

	host := fields[0]
	portText := ""
	if len(fields) == 2 {
		portText = fields[1]
	} else if h, p, ok := strings.Cut(host, ":"); ok && !strings.Contains(p, ":") {
		host, portText = h, p
	}

	port := defaultPort
	if portText != "" {
		n, err := strconv.Atoi(portText)
		if err != nil || n <= 0 || n > 65535 {
			return action{kind: actConnect, err: fmt.Errorf("invalid port %q", portText)}
		}
		port = n
	}
	return action{kind: actConnect, host: host, port: port}
}
