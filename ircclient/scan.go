package ircclient

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// ChannelSummary is one entry of the server's channel directory.
type ChannelSummary struct {
	Name  string
	Users int
	Topic string
}

// RowKind classifies a channel directory row.
type RowKind int

const (
	// RowEntry describes one channel.
	RowEntry RowKind = iota
	// RowHeader is the server's column header.
	RowHeader
	// RowEnd terminates the directory.
	RowEnd
)

// ChannelRow is a parsed channel directory row.
type ChannelRow struct {
	Kind    RowKind
	Summary ChannelSummary
}

// <prefix> <prefix> <prefix> <name> <count> <topic>
var channelRowPattern = regexp.MustCompile(`^\S+ \S+ \S+ (\S+) (\S+) (.*)$`)

// ParseChannelRow parses one line of a LIST response. Lines that are neither
// a header, a terminator nor a well-formed entry return an error wrapping
// ErrMalformedRow.
func ParseChannelRow(line string) (ChannelRow, error) {
	fields := strings.Fields(line)
	if len(fields) >= 4 {
		switch name := fields[3]; {
		case name == ListHeaderToken:
			return ChannelRow{Kind: RowHeader}, nil
		case strings.HasPrefix(name, ListEndSentinel):
			return ChannelRow{Kind: RowEnd}, nil
		}
	}

	m := channelRowPattern.FindStringSubmatch(line)
	if m == nil {
		return ChannelRow{}, fmt.Errorf("%w: %q", ErrMalformedRow, line)
	}
	users, err := strconv.Atoi(m[2])
	if err != nil || users < 0 {
		return ChannelRow{}, fmt.Errorf("%w: bad user count %q", ErrMalformedRow, m[2])
	}
	topic, ok := strings.CutPrefix(m[3], ":")
	if !ok {
		return ChannelRow{}, fmt.Errorf("%w: topic without colon %q", ErrMalformedRow, line)
	}
	return ChannelRow{
		Kind:    RowEntry,
		Summary: ChannelSummary{Name: m[1], Users: users, Topic: topic},
	}, nil
}

// ChannelScan accumulates channel directory rows into one result.
//
// Install Handle on the EventChannelList slot before requesting the list.
// Header and malformed rows are skipped; the terminator completes the scan.
type ChannelScan struct {
	session *Session
	onDone  func([]ChannelSummary)

	mu       sync.Mutex
	rows     []ChannelSummary
	finished bool
	done     chan struct{}
}

// NewChannelScan creates a scan reading the scanning flag of s. onDone, if
// not nil, receives the result on the goroutine that delivered the terminator.
func NewChannelScan(s *Session, onDone func([]ChannelSummary)) *ChannelScan {
	return &ChannelScan{
		session: s,
		onDone:  onDone,
		done:    make(chan struct{}),
	}
}

// Handle consumes one channel-list event.
func (c *ChannelScan) Handle(event Event) {
	if event.Kind != EventChannelList {
		return
	}
	row, err := ParseChannelRow(event.Raw)
	if err != nil {
		if c.session != nil {
			c.session.metrics.malformedRow()
		}
		return
	}

	c.mu.Lock()
	if c.finished {
		c.mu.Unlock()
		return
	}
	switch row.Kind {
	case RowHeader:
		c.mu.Unlock()
		return
	case RowEntry:
		c.rows = append(c.rows, row.Summary)
		c.mu.Unlock()
		return
	}
	c.finished = true
	result := slices.Clone(c.rows)
	close(c.done)
	c.mu.Unlock()

	if c.onDone != nil {
		c.onDone(result)
	}
}

// Active reports whether the scan is still collecting rows.
func (c *ChannelScan) Active() bool {
	c.mu.Lock()
	finished := c.finished
	c.mu.Unlock()
	if finished {
		return false
	}
	return c.session == nil || c.session.ScanningChannels()
}

// Done is closed once the terminator row has been seen.
func (c *ChannelScan) Done() <-chan struct{} {
	return c.done
}

// Result returns the summaries collected so far, in arrival order.
func (c *ChannelScan) Result() []ChannelSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.rows)
}

// rankOrder is the priority of each rank prefix; lower sorts first.
var rankOrder = map[byte]int{
	'~': 1,
	'&': 2,
	'@': 3,
	'%': 4,
	'+': 5,
}

const unranked = 6

// Member is one channel occupant.
type Member struct {
	Prefix string // rank marker, empty when unranked
	Nick   string
}

// String returns the nickname with its rank marker.
func (m Member) String() string {
	return m.Prefix + m.Nick
}

// Rank returns the sort priority of the member's rank marker.
func (m Member) Rank() int {
	if m.Prefix == "" {
		return unranked
	}
	return rankOrder[m.Prefix[0]]
}

// ParseMember splits a name-list entry into rank marker and nickname.
func ParseMember(name string) Member {
	if name != "" {
		if _, ok := rankOrder[name[0]]; ok {
			return Member{Prefix: name[:1], Nick: name[1:]}
		}
	}
	return Member{Nick: name}
}

// MemberList is the occupant list of a channel.
type MemberList struct {
	Channel string
	Members []Member
}

// Names returns the members as displayed, rank markers included.
func (l MemberList) Names() []string {
	names := make([]string, len(l.Members))
	for i, m := range l.Members {
		names[i] = m.String()
	}
	return names
}

// SortMembers orders members by rank, keeping the original order among
// members of equal rank.
func SortMembers(members []Member) {
	slices.SortStableFunc(members, func(a, b Member) int {
		return a.Rank() - b.Rank()
	})
}

// <prefix...> (@|=) <channel> :<nicknames>
var memberRowPattern = regexp.MustCompile(`^.*? ([@=]) (\S+) :(.*)$`)

// ParseMemberRow parses a name-list row. When channel is not empty the row
// must belong to it. Members are returned in server order.
func ParseMemberRow(line, channel string) (MemberList, error) {
	m := memberRowPattern.FindStringSubmatch(line)
	if m == nil {
		return MemberList{}, fmt.Errorf("%w: %q", ErrMalformedRow, line)
	}
	if channel != "" && !strings.EqualFold(m[2], channel) {
		return MemberList{}, fmt.Errorf("%w: row for %s, want %s", ErrMalformedRow, m[2], channel)
	}
	names := strings.Fields(m[3])
	list := MemberList{Channel: m[2], Members: make([]Member, 0, len(names))}
	for _, name := range names {
		list.Members = append(list.Members, ParseMember(name))
	}
	return list, nil
}

// MemberScan turns member-list events into rank-ordered member lists.
//
// The session arms the scan when the join of its channel is acknowledged and
// disarms it after the first matching row, so one row per join is delivered.
// Servers that split a large channel over several 353 rows only deliver the
// first; the closing 366 row is not waited for.
type MemberScan struct {
	session *Session
	onDone  func(MemberList)

	mu   sync.Mutex
	last MemberList
	seen bool
}

// NewMemberScan creates a scan reading the scanning flag of s. onDone, if not
// nil, receives each sorted list.
func NewMemberScan(s *Session, onDone func(MemberList)) *MemberScan {
	return &MemberScan{session: s, onDone: onDone}
}

// Handle consumes one member-list event.
func (m *MemberScan) Handle(event Event) {
	if event.Kind != EventMemberList {
		return
	}
	list, err := ParseMemberRow(event.Raw, event.Channel)
	if err != nil {
		if m.session != nil {
			m.session.metrics.malformedRow()
		}
		return
	}
	SortMembers(list.Members)

	m.mu.Lock()
	m.last = list
	m.seen = true
	m.mu.Unlock()

	if m.onDone != nil {
		m.onDone(list)
	}
}

// Active reports whether the session is waiting for a member list row.
func (m *MemberScan) Active() bool {
	return m.session != nil && m.session.ScanningMembers()
}

// Last returns the most recent member list, if any.
func (m *MemberScan) Last() (MemberList, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last, m.seen
}
