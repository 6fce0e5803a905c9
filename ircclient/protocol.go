package ircclient

import (
	"net"
	"strconv"
	"time"
)

// Protocol constants.
const (
	// LineTerminator ends every protocol line in both directions.
	LineTerminator = "\r\n"

	// DefaultPort is the conventional plaintext IRC port.
	DefaultPort = 6667

	// KeepaliveMarker identifies a keepalive probe anywhere in an inbound line.
	KeepaliveMarker = "PING :"

	// ListHeaderToken is the name field of the column header row in a LIST response.
	ListHeaderToken = "Channel"

	// ListEndSentinel prefixes the name field of the row terminating a LIST response.
	ListEndSentinel = ":End"

	// ReceiveBufferSize is the number of bytes requested from the stream per read.
	ReceiveBufferSize = 2048

	// ConnectionTimeout is the default bound on establishing the TCP connection.
	ConnectionTimeout = 10 * time.Second

	// DefaultTranscriptSize is how many inbound lines the diagnostic transcript retains.
	DefaultTranscriptSize = 256
)

// Status texts published on the status slot.
const (
	statusConnecting   = "CONNECTING..."
	statusConnected    = "SUCCESSFULLY CONNECTED"
	statusDisconnected = "DISCONNECTED"
	statusEmptyFields  = "NO FIELDS SHOULD BE EMPTY!"
	statusHostNotFound = "WRONG SERVER NAME"
	statusLost         = "CONNECTION LOST"
)

// ConnectionTarget is the server endpoint of a session.
type ConnectionTarget struct {
	Host string
	Port int
}

// Address returns the host:port form used for dialing.
func (t ConnectionTarget) Address() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// Identity is the nickname and real name announced by the handshake.
type Identity struct {
	Nickname string
	RealName string
}

// NewIdentity returns an Identity whose real name falls back to the nickname.
func NewIdentity(nickname, realName string) Identity {
	if realName == "" {
		realName = nickname
	}
	return Identity{Nickname: nickname, RealName: realName}
}
