package ircclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// State is the connection state of a session.
type State int

const (
	// StateDisconnected is the initial and final state.
	StateDisconnected State = iota
	// StateConnecting lasts while the transport is being dialed.
	StateConnecting
	// StateConnected means the reader and writer tasks are running.
	StateConnected
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records engine activity into m.
func WithMetrics(m *Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithDialer replaces the TCP dialer.
func WithDialer(d Dialer) Option {
	return func(s *Session) {
		if d != nil {
			s.dialer = d
		}
	}
}

// WithConnectTimeout bounds how long Connect waits for the server.
func WithConnectTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.connectTimeout = d
		}
	}
}

// WithTranscriptSize sets how many inbound lines Transcript retains.
func WithTranscriptSize(n int) Option {
	return func(s *Session) { s.transcript = NewTranscript(n) }
}

// Session is a client connection to one chat server.
//
// A Session outlives any number of connect/disconnect cycles. Each
// connection runs two goroutines: a reader (transport, framer, dispatcher)
// and a writer draining the outbound queue. Event handlers run on the reader
// goroutine, so they must be quick or hand work off.
//
// Thread Safety:
// All methods are safe for concurrent use.
type Session struct {
	// lifecycle serializes Connect calls, including the disconnect a
	// reconnect performs.
	lifecycle sync.Mutex

	mu               sync.Mutex
	state            State
	identity         Identity
	target           ConnectionTarget
	channel          string
	joined           bool
	scanningChannels bool
	scanningMembers  bool
	lastStatus       Status
	conn             *connection

	registry   *Registry
	transcript *Transcript

	dialer         Dialer
	connectTimeout time.Duration
	logger         *slog.Logger
	metrics        *Metrics
}

// connection is the per-connect state owned by a Session.
type connection struct {
	id        string
	identity  Identity
	transport *Transport
	framer    *Framer
	queue     *OutboundQueue
	logger    *slog.Logger

	// readerID and writerID are the goroutine ids of the two tasks, so
	// Disconnect can tell when it runs inside one of their handlers.
	readerID atomic.Uint64
	writerID atomic.Uint64

	// done is closed once both tasks have returned.
	done chan struct{}
}

// isTask reports whether the calling goroutine is one of c's tasks.
func (c *connection) isTask() bool {
	id := goroutineID()
	return id == c.readerID.Load() || id == c.writerID.Load()
}

// goroutineID parses the id from the "goroutine N [...]" stack header.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	fields := bytes.Fields(bytes.TrimPrefix(buf[:n], []byte("goroutine ")))
	if len(fields) == 0 {
		return 0
	}
	id, _ := strconv.ParseUint(string(fields[0]), 10, 64)
	return id
}

// NewSession creates a disconnected session.
func NewSession(opts ...Option) *Session {
	s := &Session{
		registry:       NewRegistry(),
		dialer:         &net.Dialer{},
		connectTimeout: ConnectionTimeout,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.transcript == nil {
		s.transcript = NewTranscript(DefaultTranscriptSize)
	}
	return s
}

// On installs handler for kind, replacing the previous one. A nil handler
// empties the slot.
func (s *Session) On(kind EventKind, handler EventHandler) {
	s.registry.Subscribe(kind, handler)
}

// SetIdentity sets the nickname and real name used by the next handshake.
// An empty real name falls back to the nickname. A running connection keeps
// the identity it was opened with.
func (s *Session) SetIdentity(nickname, realName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = NewIdentity(nickname, realName)
}

// Identity returns the identity the next handshake will use.
func (s *Session) Identity() Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// State returns the connection state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsConnected returns true if the session has an active connection.
func (s *Session) IsConnected() bool {
	return s.State() == StateConnected
}

// Target returns the endpoint of the last connect attempt.
func (s *Session) Target() ConnectionTarget {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target
}

// Channel returns the channel last joined, or "".
func (s *Session) Channel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channel
}

// Joined reports whether the server acknowledged the join of Channel.
func (s *Session) Joined() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.joined
}

// ScanningChannels reports whether a channel directory scan is in progress.
func (s *Session) ScanningChannels() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scanningChannels
}

// ScanningMembers reports whether a member list row is awaited.
func (s *Session) ScanningMembers() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scanningMembers
}

// LastStatus returns the most recent status update.
func (s *Session) LastStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastStatus
}

// Transcript returns the most recent inbound lines, oldest first.
func (s *Session) Transcript() []string {
	return s.transcript.Lines()
}

// Connect validates the identity and target, dials the server, queues the
// identity handshake and starts the connection tasks. A connected session
// is disconnected first.
//
// Validation failures return a *ValidationError without any I/O. Dial
// failures return a *ConnectionError. Both are also published as error
// statuses.
func (s *Session) Connect(ctx context.Context, host string, port int) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	identity := s.Identity()
	if err := validateConnect(host, port, identity); err != nil {
		s.publishStatus(SeverityError, statusEmptyFields)
		return err
	}

	s.Disconnect()

	target := ConnectionTarget{Host: host, Port: port}
	s.mu.Lock()
	s.state = StateConnecting
	s.target = target
	s.mu.Unlock()
	s.publishStatus(SeverityNormal, statusConnecting)

	id := uuid.NewString()
	logger := s.logger.With(slog.String("conn", id), slog.String("addr", target.Address()))

	transport := NewTransport(s.dialer, s.connectTimeout)
	if err := transport.Connect(ctx, target); err != nil {
		s.mu.Lock()
		s.state = StateDisconnected
		s.mu.Unlock()
		s.metrics.connectFailed(err)
		logger.Warn("connect failed", slog.Any("err", err))
		s.publishStatus(SeverityError, connectFailureText(err))
		return err
	}

	c := &connection{
		id:        id,
		identity:  identity,
		transport: transport,
		framer:    NewFramer(),
		queue:     NewOutboundQueue(),
		logger:    logger,
		done:      make(chan struct{}),
	}
	// The handshake goes in before the tasks start so nothing can overtake it.
	c.queue.Enqueue(NewUserCommand(identity).Format())
	c.queue.Enqueue(NewNickCommand(identity.Nickname).Format())

	s.mu.Lock()
	s.state = StateConnected
	s.conn = c
	s.channel = ""
	s.joined = false
	s.scanningChannels = false
	s.scanningMembers = false
	s.mu.Unlock()

	s.start(c)
	s.metrics.setConnected(true)
	logger.Info("connected", slog.String("nick", identity.Nickname))

	s.publishStatus(SeveritySuccess, statusConnected)
	s.registry.Publish(Event{Kind: EventConnected})
	return nil
}

func validateConnect(host string, port int, id Identity) error {
	switch {
	case host == "":
		return newValidationError("host", "must not be empty")
	case id.Nickname == "":
		return newValidationError("nickname", "must not be empty")
	case port <= 0 || port > 65535:
		return newValidationError("port", fmt.Sprintf("%d out of range", port))
	}
	return NewUserCommand(id).Validate()
}

// Disconnect sends QUIT and stops the connection tasks. It is idempotent and
// may be called from any goroutine. It returns once both tasks have exited,
// except when called from a handler running on one of those tasks, where it
// returns at once and the task exits as soon as the handler returns.
func (s *Session) Disconnect() {
	s.mu.Lock()
	c := s.conn
	if s.state != StateConnected {
		s.mu.Unlock()
		if c != nil {
			s.await(c)
		}
		return
	}
	s.state = StateDisconnected
	s.joined = false
	s.scanningChannels = false
	s.scanningMembers = false
	s.mu.Unlock()

	c.queue.Enqueue(NewQuitCommand().Format())
	c.queue.Close()
	s.await(c)

	c.logger.Info("disconnected")
	s.publishStatus(SeverityNormal, statusDisconnected)
}

func (s *Session) await(c *connection) {
	if c.isTask() {
		return
	}
	<-c.done
}

// JoinChannel joins a channel. The member list scan starts when the server
// acknowledges the join.
func (s *Session) JoinChannel(name string) error {
	if name == "" {
		return newValidationError("channel", "must not be empty")
	}
	_, err := s.submit(NewJoinCommand(name), func() {
		s.channel = name
		s.joined = false
		s.scanningMembers = false
	})
	return err
}

// SendMessage sends text to target, or to the current channel when target
// is empty. The message is echoed to the chat slot with Outgoing set.
func (s *Session) SendMessage(text, target string) error {
	channel, err := s.activeChannel()
	if err != nil {
		return err
	}
	if target == "" {
		target = channel
	}
	if target == "" {
		return newValidationError("target", "no channel joined")
	}
	c, err := s.submit(NewPrivmsgCommand(target, text), nil)
	if err != nil {
		return err
	}
	s.registry.Publish(Event{
		Kind:     EventChat,
		Sender:   c.identity.Nickname,
		Target:   target,
		Text:     text,
		Outgoing: true,
	})
	return nil
}

// RequestChannelList asks for the channel directory and starts a channel scan.
func (s *Session) RequestChannelList() error {
	_, err := s.submit(NewListCommand(), func() {
		s.scanningChannels = true
	})
	return err
}

// RequestMemberList asks for the member list of the current channel.
func (s *Session) RequestMemberList() error {
	channel, err := s.activeChannel()
	if err != nil {
		return err
	}
	if channel == "" {
		return newValidationError("channel", "no channel joined")
	}
	_, err = s.submit(NewNamesCommand(channel), func() {
		s.scanningMembers = true
	})
	return err
}

// SendRaw queues a line exactly as given.
func (s *Session) SendRaw(line string) error {
	cmd := NewRawCommand(line)
	if cmd.Raw == "" {
		return newValidationError("command", "must not be empty")
	}
	_, err := s.submit(cmd, nil)
	return err
}

// activeChannel returns the current channel, or ErrNotConnected.
func (s *Session) activeChannel() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateConnected {
		return "", ErrNotConnected
	}
	return s.channel, nil
}

// ListChannels requests the channel directory and waits for its terminator.
// Its own handler occupies the channel-list slot until it returns.
func (s *Session) ListChannels(ctx context.Context) ([]ChannelSummary, error) {
	s.mu.Lock()
	c := s.conn
	s.mu.Unlock()
	if c == nil {
		return nil, ErrNotConnected
	}

	scan := NewChannelScan(s, nil)
	prev := s.registry.Handler(EventChannelList)
	s.On(EventChannelList, scan.Handle)
	defer s.On(EventChannelList, prev)

	if err := s.RequestChannelList(); err != nil {
		return nil, err
	}

	select {
	case <-scan.Done():
		return scan.Result(), nil
	case <-c.done:
		return scan.Result(), ErrNotConnected
	case <-ctx.Done():
		return scan.Result(), ctx.Err()
	}
}

// submit queues cmd on the active connection, applying mutate under the
// session lock first. It returns the connection the command went to.
func (s *Session) submit(cmd Command, mutate func()) (*connection, error) {
	s.mu.Lock()
	if s.state != StateConnected {
		s.mu.Unlock()
		return nil, ErrNotConnected
	}
	if err := cmd.Validate(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	c := s.conn
	if mutate != nil {
		mutate()
	}
	s.mu.Unlock()

	if err := c.queue.Enqueue(cmd.Format()); err != nil {
		return nil, ErrNotConnected
	}
	return c, nil
}

func (s *Session) start(c *connection) {
	var g errgroup.Group
	g.Go(func() error { return s.readLoop(c) })
	g.Go(func() error { return s.writeLoop(c) })

	go func() {
		if err := g.Wait(); err != nil {
			c.logger.Debug("connection tasks stopped", slog.Any("err", err))
		}
		s.metrics.setConnected(false)
		close(c.done)
	}()
}

// readLoop feeds the framer from the transport and dispatches every
// complete line until the connection stops.
func (s *Session) readLoop(c *connection) error {
	c.readerID.Store(goroutineID())
	for {
		chunk, err := c.transport.ReceiveChunk()
		if err != nil {
			if s.connectionLost(c, err) {
				return fmt.Errorf("receive: %w", err)
			}
			return nil
		}
		c.framer.Feed(chunk)
		for _, line := range c.framer.DrainLines() {
			if !s.isCurrent(c) {
				return nil
			}
			s.dispatch(c, line)
		}
	}
}

// writeLoop is the only writer to the transport. It closes the transport
// once the queue is drained, which also unblocks the reader.
func (s *Session) writeLoop(c *connection) error {
	c.writerID.Store(goroutineID())
	defer c.transport.Close()

	for {
		text, ok := c.queue.Pop()
		if !ok {
			return nil
		}
		if err := c.transport.Send([]byte(text + LineTerminator)); err != nil {
			if s.connectionLost(c, err) {
				return fmt.Errorf("send: %w", err)
			}
			return nil
		}
		s.metrics.commandSent()
		c.logger.Debug("sent", slog.String("line", text))
	}
}

func (s *Session) isCurrent(c *connection) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn == c && s.state == StateConnected
}

// connectionLost handles a transport failure on c. It reports false when the
// connection was already being torn down.
func (s *Session) connectionLost(c *connection, err error) bool {
	s.mu.Lock()
	if s.conn != c || s.state != StateConnected {
		s.mu.Unlock()
		return false
	}
	s.state = StateDisconnected
	s.joined = false
	s.scanningChannels = false
	s.scanningMembers = false
	s.mu.Unlock()

	c.queue.Close()
	c.transport.Close()

	if errors.Is(err, io.EOF) {
		c.logger.Info("server closed the connection")
	} else {
		c.logger.Warn("connection lost", slog.Any("err", err))
	}

	s.publishStatus(SeverityError, statusLost)
	return true
}

// dispatch classifies one inbound line and routes it.
func (s *Session) dispatch(c *connection, line string) {
	s.metrics.lineReceived()
	s.transcript.Add(line)
	c.logger.Debug("recv", slog.String("line", line))

	s.mu.Lock()
	st := ScanState{
		Nickname:         c.identity.Nickname,
		Channel:          s.channel,
		ScanningMembers:  s.scanningMembers,
		ScanningChannels: s.scanningChannels,
	}
	s.mu.Unlock()

	cl := Classify(line, st)
	switch cl.Kind {
	case LineKeepalive:
		if err := c.queue.Enqueue(NewPongCommand(cl.Token).Format()); err == nil {
			s.metrics.pingAnswered()
		}

	case LineChat:
		s.registry.Publish(Event{
			Kind:   EventChat,
			Raw:    line,
			Sender: cl.Sender,
			Target: cl.Target,
			Text:   cl.Text,
		})

	case LineMemberList:
		s.mu.Lock()
		s.scanningMembers = false
		s.mu.Unlock()
		s.registry.Publish(Event{Kind: EventMemberList, Raw: line, Channel: st.Channel})

	case LineJoinAck:
		s.mu.Lock()
		s.joined = true
		s.scanningMembers = true
		s.mu.Unlock()
		c.logger.Debug("joined", slog.String("channel", st.Channel))

	case LineChannelList:
		if cl.EndOfList {
			s.mu.Lock()
			s.scanningChannels = false
			s.mu.Unlock()
		}
		s.registry.Publish(Event{Kind: EventChannelList, Raw: line})

	default:
		s.setStatus(Status{Severity: SeverityNormal, Text: line})
		s.registry.Publish(Event{
			Kind:   EventStatus,
			Raw:    line,
			Status: Status{Severity: SeverityNormal, Text: line},
		})
	}
}

func (s *Session) setStatus(st Status) {
	s.mu.Lock()
	s.lastStatus = st
	s.mu.Unlock()
}

func (s *Session) publishStatus(sev Severity, text string) {
	st := Status{Severity: sev, Text: text}
	s.setStatus(st)
	s.registry.Publish(Event{Kind: EventStatus, Status: st})
}
