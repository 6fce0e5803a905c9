package ircclient

import (
	"fmt"
	"strings"
)

// CommandType represents the type of outbound command.
type CommandType int

const (
	// Handshake
	CmdUser CommandType = iota
	CmdNick

	// Channels
	CmdJoin
	CmdList
	CmdNames

	// Messaging
	CmdPrivmsg

	// Connection
	CmdPong
	CmdQuit

	// CmdRaw is a line sent verbatim.
	CmdRaw
)

// Command represents an outbound protocol command.
type Command struct {
	Type CommandType

	// Nickname and RealName are used by CmdUser and CmdNick.
	Nickname string
	RealName string

	// Channel is used by CmdJoin and CmdNames.
	Channel string

	// Target and Text are used by CmdPrivmsg.
	Target string
	Text   string

	// Token is echoed back by CmdPong.
	Token string

	// Raw is the verbatim line for CmdRaw.
	Raw string
}

// NewUserCommand creates the USER half of the identity handshake.
func NewUserCommand(id Identity) Command {
	return Command{Type: CmdUser, Nickname: id.Nickname, RealName: id.RealName}
}

// NewNickCommand creates the NICK half of the identity handshake.
func NewNickCommand(nickname string) Command {
	return Command{Type: CmdNick, Nickname: nickname}
}

// NewJoinCommand creates a channel join command.
func NewJoinCommand(channel string) Command {
	return Command{Type: CmdJoin, Channel: channel}
}

// NewListCommand creates a channel directory request.
func NewListCommand() Command {
	return Command{Type: CmdList}
}

// NewNamesCommand creates a member list request for a channel.
func NewNamesCommand(channel string) Command {
	return Command{Type: CmdNames, Channel: channel}
}

// NewPrivmsgCommand creates a chat message to a channel or nickname.
func NewPrivmsgCommand(target, text string) Command {
	return Command{Type: CmdPrivmsg, Target: target, Text: text}
}

// NewPongCommand creates the keepalive response for a probe token.
func NewPongCommand(token string) Command {
	return Command{Type: CmdPong, Token: token}
}

// NewQuitCommand creates the quit command.
func NewQuitCommand() Command {
	return Command{Type: CmdQuit}
}

// NewRawCommand creates a command sent exactly as given.
func NewRawCommand(line string) Command {
	return Command{Type: CmdRaw, Raw: strings.TrimRight(line, "\r\n")}
}

// Format returns the command text without the line terminator.
func (c Command) Format() string {
	switch c.Type {
	case CmdUser:
		return fmt.Sprintf("USER %s %s %s %s", c.Nickname, c.Nickname, c.Nickname, c.RealName)
	case CmdNick:
		return "NICK " + c.Nickname
	case CmdJoin:
		return "JOIN " + c.Channel
	case CmdList:
		return "LIST"
	case CmdNames:
		return "NAMES " + c.Channel
	case CmdPrivmsg:
		return fmt.Sprintf("PRIVMSG %s :%s", c.Target, c.Text)
	case CmdPong:
		return "PONG :" + c.Token
	case CmdQuit:
		return "QUIT"
	case CmdRaw:
		return c.Raw
	default:
		return ""
	}
}

// Validate rejects arguments that would split the command across lines.
func (c Command) Validate() error {
	args := []struct{ field, value string }{
		{"nickname", c.Nickname},
		{"realname", c.RealName},
		{"channel", c.Channel},
		{"target", c.Target},
		{"text", c.Text},
		{"token", c.Token},
		{"command", c.Raw},
	}
	for _, a := range args {
		if strings.ContainsAny(a.value, "\r\n") {
			return newValidationError(a.field, "must not contain line breaks")
		}
	}
	return nil
}

// FormatLine returns the command as it is written to the stream.
func (c Command) FormatLine() string {
	return c.Format() + LineTerminator
}
