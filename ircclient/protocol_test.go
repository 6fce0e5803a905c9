package ircclient

import (
	"errors"
	"testing"
)

func TestProtocolConstants(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"LineTerminator", LineTerminator, "\r\n"},
		{"KeepaliveMarker", KeepaliveMarker, "PING :"},
		{"ListHeaderToken", ListHeaderToken, "Channel"},
		{"ListEndSentinel", ListEndSentinel, ":End"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %q, want %q", tt.got, tt.expected)
			}
		})
	}
}

func TestConnectionTargetAddress(t *testing.T) {
	tests := []struct {
		target   ConnectionTarget
		expected string
	}{
		{ConnectionTarget{Host: "irc.example.org", Port: 6667}, "irc.example.org:6667"},
		{ConnectionTarget{Host: "127.0.0.1", Port: 7000}, "127.0.0.1:7000"},
		{ConnectionTarget{Host: "::1", Port: 6667}, "[::1]:6667"},
	}

	for _, tt := range tests {
		if got := tt.target.Address(); got != tt.expected {
			t.Errorf("Address() = %q, want %q", got, tt.expected)
		}
	}
}

func TestNewIdentityDefaultsRealName(t *testing.T) {
	id := NewIdentity("gopher", "")
	if id.RealName != "gopher" {
		t.Errorf("RealName = %q, want %q", id.RealName, "gopher")
	}

	id = NewIdentity("gopher", "Go Pher")
	if id.RealName != "Go Pher" {
		t.Errorf("RealName = %q, want %q", id.RealName, "Go Pher")
	}
}

// TestCommandFormatting verifies command formatting matches the wire format.
func TestCommandFormatting(t *testing.T) {
	tests := []struct {
		name     string
		cmd      Command
		expected string
	}{
		{"User", NewUserCommand(NewIdentity("nick", "Real")), "USER nick nick nick Real"},
		{"Nick", NewNickCommand("nick"), "NICK nick"},
		{"Join", NewJoinCommand("#general"), "JOIN #general"},
		{"List", NewListCommand(), "LIST"},
		{"Names", NewNamesCommand("#general"), "NAMES #general"},
		{"Privmsg", NewPrivmsgCommand("#room", "hello world"), "PRIVMSG #room :hello world"},
		{"Privmsg to nick", NewPrivmsgCommand("alice", "hi"), "PRIVMSG alice :hi"},
		{"Pong", NewPongCommand("abc123"), "PONG :abc123"},
		{"Quit", NewQuitCommand(), "QUIT"},
		{"Raw", NewRawCommand("MODE #general +t"), "MODE #general +t"},
		{"Raw strips terminator", NewRawCommand("WHOIS bob\r\n"), "WHOIS bob"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cmd.Format()
			if got != tt.expected {
				t.Errorf("Format() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestCommandFormatLine(t *testing.T) {
	got := NewQuitCommand().FormatLine()
	if got != "QUIT\r\n" {
		t.Errorf("FormatLine() = %q, want %q", got, "QUIT\r\n")
	}
}

func TestUnknownCommandFormatsEmpty(t *testing.T) {
	if got := (Command{Type: CommandType(99)}).Format(); got != "" {
		t.Errorf("Format() = %q, want empty", got)
	}
}

func TestCommandValidateRejectsLineBreaks(t *testing.T) {
	tests := []struct {
		name  string
		cmd   Command
		field string
	}{
		{"message text", NewPrivmsgCommand("#go", "hi\r\nQUIT"), "text"},
		{"message target", NewPrivmsgCommand("#go\n", "hi"), "target"},
		{"join channel", NewJoinCommand("#go\rPART #go"), "channel"},
		{"names channel", NewNamesCommand("#go\n"), "channel"},
		{"nickname", NewNickCommand("me\nQUIT"), "nickname"},
		{"real name", NewUserCommand(NewIdentity("me", "Real\r\nName")), "realname"},
		{"raw line", NewRawCommand("MOTD\r\nQUIT"), "command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Errorf("Validate() = %v, want validation error on %s", err, tt.field)
			}
		})
	}
}

func TestCommandValidateAcceptsPlainArguments(t *testing.T) {
	cmds := []Command{
		NewPrivmsgCommand("#go", "hello: world"),
		NewJoinCommand("#go"),
		NewUserCommand(NewIdentity("me", "Real Name")),
		NewRawCommand("MOTD\r\n"),
		NewQuitCommand(),
	}
	for _, cmd := range cmds {
		if err := cmd.Validate(); err != nil {
			t.Errorf("Validate(%q) = %v", cmd.Format(), err)
		}
	}
}
