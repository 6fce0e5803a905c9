package ircclient

import (
	"strings"

	"github.com/ergochat/irc-go/ircmsg"
)

// LineKind is the category an inbound line is classified into.
type LineKind int

const (
	// LineStatus is any line that fits no other category.
	LineStatus LineKind = iota
	// LineKeepalive is a keepalive probe that must be answered.
	LineKeepalive
	// LineChat is a chat message.
	LineChat
	// LineMemberList is a member list row for the tracked channel.
	LineMemberList
	// LineJoinAck acknowledges our join of the tracked channel.
	LineJoinAck
	// LineChannelList is a row of an active channel directory scan.
	LineChannelList
)

// String returns the category name.
func (k LineKind) String() string {
	switch k {
	case LineKeepalive:
		return "keepalive"
	case LineChat:
		return "chat"
	case LineMemberList:
		return "member-list"
	case LineJoinAck:
		return "join-ack"
	case LineChannelList:
		return "channel-list"
	default:
		return "status"
	}
}

// ScanState is the session state classification depends on.
type ScanState struct {
	Nickname         string
	Channel          string
	ScanningMembers  bool
	ScanningChannels bool
}

// Classification is the result of classifying one line.
type Classification struct {
	Kind LineKind

	// Token is the probe token for LineKeepalive.
	Token string

	// Sender, Target and Text are set for LineChat.
	Sender string
	Target string
	Text   string

	// EndOfList is set for the LineChannelList row terminating the directory.
	EndOfList bool
}

// Classify assigns line to exactly one category. Rules are tried in order
// and the first match wins:
//
//  1. keepalive probe
//  2. chat message
//  3. member list row, while a member scan is active
//  4. join acknowledgment for the tracked channel
//  5. channel directory row, while a channel scan is active
//  6. status
func Classify(line string, st ScanState) Classification {
	if i := strings.Index(line, KeepaliveMarker); i >= 0 {
		return Classification{Kind: LineKeepalive, Token: line[i+len(KeepaliveMarker):]}
	}

	msg, err := ircmsg.ParseLine(line)
	parsed := err == nil

	if parsed && isChatMessage(&msg) {
		return Classification{
			Kind:   LineChat,
			Sender: msg.Nick(),
			Target: msg.Params[0],
			Text:   msg.Params[1],
		}
	}

	if st.ScanningMembers && IsMemberListRow(line, st.Channel) {
		return Classification{Kind: LineMemberList}
	}

	if parsed && isJoinAck(&msg, st) {
		return Classification{Kind: LineJoinAck}
	}

	if st.ScanningChannels {
		c := Classification{Kind: LineChannelList}
		if row, err := ParseChannelRow(line); err == nil && row.Kind == RowEnd {
			c.EndOfList = true
		}
		return c
	}

	return Classification{Kind: LineStatus}
}

func isChatMessage(msg *ircmsg.Message) bool {
	return msg.Source != "" &&
		strings.EqualFold(msg.Command, "PRIVMSG") &&
		len(msg.Params) == 2
}

func isJoinAck(msg *ircmsg.Message, st ScanState) bool {
	if st.Channel == "" || !strings.EqualFold(msg.Command, "JOIN") || len(msg.Params) == 0 {
		return false
	}
	if !strings.EqualFold(msg.Params[0], st.Channel) {
		return false
	}
	return st.Nickname == "" || strings.EqualFold(msg.Nick(), st.Nickname)
}

// IsMemberListRow reports whether the preamble of line (the part before the
// payload colon) holds the "@ <channel>" or "= <channel>" marker.
func IsMemberListRow(line, channel string) bool {
	if channel == "" {
		return false
	}
	fields := strings.Fields(preamble(line))
	for i := 0; i+1 < len(fields); i++ {
		if (fields[i] == "@" || fields[i] == "=") && strings.EqualFold(fields[i+1], channel) {
			return true
		}
	}
	return false
}

// preamble returns line up to the first " :" that starts the payload.
func preamble(line string) string {
	if i := strings.Index(line, " :"); i >= 0 {
		return line[:i]
	}
	return line
}
