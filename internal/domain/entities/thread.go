package entities

// Entry is one position in the thread: the message plus its disclosure flag.
// Expanded is only meaningful when the message has sources.
type Entry struct {
	Message  Message `json:"message"`
	Expanded bool    `json:"expanded"`
}

// Thread is the append-only conversation.
// Positions never change once assigned. Not safe for concurrent use; the
// session controller is its only writer.
type Thread struct {
	entries []Entry
	index   map[string]int // message ID -> position
}

// NewThread creates an empty thread.
func NewThread() *Thread {
	return &Thread{index: make(map[string]int)}
}

// Append adds a message at the next position and returns that position.
func (t *Thread) Append(m Message) int {
	pos := len(t.entries)
	t.entries = append(t.entries, Entry{Message: m})
	t.index[m.ID] = pos
	return pos
}

// ToggleSources flips the disclosure flag of an assistant message with
// sources. ok is false when the ID is unknown or the message has none.
func (t *Thread) ToggleSources(id string) (expanded bool, ok bool) {
	pos, found := t.index[id]
	if !found || !t.entries[pos].Message.HasSources() {
		return false, false
	}
	t.entries[pos].Expanded = !t.entries[pos].Expanded
	return t.entries[pos].Expanded, true
}

// Entries returns a copy of the entries in display order. Sources are
// copied too, so callers can never reach the stored messages.
func (t *Thread) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	for i := range out {
		if len(out[i].Message.Sources) > 0 {
			out[i].Message.Sources = append([]Citation(nil), out[i].Message.Sources...)
		}
	}
	return out
}

// Snapshot is a read-only copy of the whole session state.
// Rendering layers only ever see snapshots.
type Snapshot struct {
	Version        uint64        `json:"version"`
	Entries        []Entry       `json:"entries"`
	Upload         UploadSession `json:"upload"`
	UploadInFlight bool          `json:"upload_in_flight"`
	QueryInFlight  bool          `json:"query_in_flight"`
}

// IsEmpty reports whether the conversation has no messages yet.
func (s Snapshot) IsEmpty() bool {
	return len(s.Entries) == 0
}
