package ircclient

import "sync"

// Transcript keeps the most recent inbound lines in a fixed-size ring.
type Transcript struct {
	mu    sync.Mutex
	lines []string
	next  int
	full  bool
}

// NewTranscript creates a ring holding up to size lines.
func NewTranscript(size int) *Transcript {
	if size <= 0 {
		size = DefaultTranscriptSize
	}
	return &Transcript{lines: make([]string, size)}
}

// Add records a line, evicting the oldest when full.
func (t *Transcript) Add(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lines[t.next] = line
	t.next = (t.next + 1) % len(t.lines)
	if t.next == 0 {
		t.full = true
	}
}

// Lines returns the retained lines, oldest first.
func (t *Transcript) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.full {
		return append([]string(nil), t.lines[:t.next]...)
	}
	out := make([]string, 0, len(t.lines))
	out = append(out, t.lines[t.next:]...)
	return append(out, t.lines[:t.next]...)
}
