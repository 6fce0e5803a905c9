// =============================================================================
// help.go - REPL Help Text
// =============================================================================
//
// "/help" prints the command overview; "/help <command>" prints the detailed
// entry for one command. Topics are looked up case-insensitively, with or
// without the leading slash.
//
// =============================================================================

package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

const helpOverview = `Commands:
  /connect <host> [port]   Connect to a server (default port 6667)
  /nick <nick> [realname]  Set the identity used for the next connect
  /join <channel>          Join a channel
  /msg <target> <text>     Send a private message
  /list                    List the server's channels
  /names                   Show who is in the current channel
  /quote <line>            Send a raw protocol line
  /disconnect              Leave the server
  /help [command]          Show help
  /quit                    Disconnect and exit

Text that does not start with "/" is sent to the current channel.
Start a line with "//" to send text that begins with a slash.
`

// commandHelp holds the detailed text for each command, keyed by name.
var commandHelp = map[string]string{
	"connect": `/connect <host> [port]
/connect <host>:<port>

  Connect to a chat server. A running connection is closed first. The
  nickname must be set (with /nick, --nick or the config file) before
  connecting. The port defaults to 6667.

  Examples:
    /connect irc.libera.chat
    /connect localhost 6697`,

	"nick": `/nick <nickname> [real name]

  Set the nickname and real name sent in the handshake. Takes effect on the
  next /connect. Without a real name the nickname is used.`,

	"join": `/join <channel>

  Join a channel. A leading "#" is added when missing. Once the server
  confirms the join, the channel's member list is shown.`,

	"msg": `/msg <target> <text>

  Send text to a nickname or channel without changing the current channel.`,

	"list": `/list

  Ask the server for its channel directory and print it as a table of
  name, user count and topic. Waits until the server finishes the list.`,

	"names": `/names

  Ask for the member list of the current channel. Members are shown by
  rank: owner (~), admin (&), operator (@), half-operator (%), voiced (+),
  then everyone else.`,

	"quote": `/quote <line>

  Send a protocol line exactly as typed, for example "/quote MOTD".`,

	"disconnect": `/disconnect

  Send QUIT and close the connection. The REPL keeps running.`,

	"quit": `/quit

  Disconnect if connected and exit.`,

	"help": `/help [command]

  Without an argument, list all commands. With a command name, show its
  detailed help.`,
}

// helpAliases maps alternate command names to their help entry.
var helpAliases = map[string]string{
	"server": "connect",
	"j":      "join",
	"query":  "msg",
	"who":    "names",
	"raw":    "quote",
	"exit":   "quit",
	"?":      "help",
}

// printHelp writes the overview, or the entry for topic.
func printHelp(w io.Writer, topic string) error {
	if topic == "" {
		fmt.Fprint(w, helpOverview)
		return nil
	}

	key := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(topic)), "/")
	if alias, ok := helpAliases[key]; ok {
		key = alias
	}
	text, ok := commandHelp[key]
	if !ok {
		return fmt.Errorf("no help for '%s'. Type /help to see available commands", topic)
	}
	fmt.Fprintln(w, text)
	return nil
}

// helpTopics returns the command names that have help entries, sorted.
func helpTopics() []string {
	topics := make([]string, 0, len(commandHelp))
	for k := range commandHelp {
		topics = append(topics, k)
	}
	sort.Strings(topics)
	return topics
}
