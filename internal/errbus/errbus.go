package errbus

import (
	"sync"
	"time"
)

// maxEntries bounds the bus; older entries are dropped first.
const maxEntries = 200

// Entry is a single diagnostic record.
type Entry struct {
	Context   string `json:"context"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Bus accumulates diagnostic records across a run. Pushes never fail and
// never affect caller control flow; concurrent use is safe.
type Bus struct {
	mu      sync.Mutex
	entries []Entry
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{}
}

// Push appends a record for the given context. A nil error is ignored.
func (b *Bus) Push(context string, err error) {
	if err == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = append(b.entries, Entry{
		Context:   context,
		Message:   err.Error(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if len(b.entries) > maxEntries {
		b.entries = b.entries[len(b.entries)-maxEntries:]
	}
}

// Snapshot returns a copy of the accumulated records without clearing them.
func (b *Bus) Snapshot() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Reset clears the bus at the start of a logical request.
func (b *Bus) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = nil
}
