// Package ircclient is a client-side engine for the line-oriented IRC chat
// protocol over a plain TCP connection.
//
// The engine owns the connection lifecycle, splits the byte stream into
// CRLF-terminated lines, classifies and routes inbound lines to subscribers,
// serializes outbound commands through a single writer, answers keepalive
// probes and runs the two multi-line scans of the protocol: the channel
// directory (LIST) and the member list of a joined channel (NAMES).
//
// # Protocol Overview
//
//	Handshake:      USER <nick> <nick> <nick> <realname>
//	                NICK <nick>
//	Join:           JOIN <channel>
//	Chat:           PRIVMSG <target> :<payload>
//	Directory:      LIST
//	  row:          <prefix> <prefix> <prefix> <name> <count> :<topic>
//	  terminator:   <prefix> <prefix> <prefix> :End of /LIST
//	Member row:     <prefix> (@|=) <channel> :<nick> <nick> ...
//	Keepalive:      PING :<token>  ->  PONG :<token>
//	Quit:           QUIT
//
// # Basic Usage
//
//	s := ircclient.NewSession(ircclient.WithLogger(logger))
//	s.SetIdentity("gopher", "Gopher")
//
//	s.On(ircclient.EventChat, func(ev ircclient.Event) {
//	    fmt.Printf("<%s> %s\n", ev.Sender, ev.Text)
//	})
//	s.On(ircclient.EventStatus, func(ev ircclient.Event) {
//	    fmt.Println(ev.Status)
//	})
//
//	if err := s.Connect(ctx, "irc.libera.chat", ircclient.DefaultPort); err != nil {
//	    return err
//	}
//	defer s.Disconnect()
//
//	s.JoinChannel("#go-nuts")
//	s.SendMessage("hello", "")
//
// # Subscriptions
//
// Each event kind has a single slot. Installing a handler replaces the
// previous one and publishing to an empty slot does nothing. Handlers for
// inbound events run on the connection's reader goroutine: a slow handler
// stalls inbound processing.
//
// # Scans
//
// ChannelScan collects EventChannelList rows until the directory terminator
// and MemberScan turns EventMemberList rows into rank-ordered member lists.
// Session.ListChannels wraps a ChannelScan for callers that want to block.
package ircclient
