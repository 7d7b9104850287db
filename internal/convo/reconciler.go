package convo

import (
	"sync"

	"stayhub/messenger/internal/models"
)

// Timeline is the ordered, deduplicated message sequence for one room. It
// merges locally-originated optimistic entries with relay-confirmed
// messages: a confirmed echo replaces the matching pending entry in place,
// a confirmed message with a known id is dropped as a duplicate, anything
// else is appended in arrival order. Entries are never re-sorted by
// timestamp, since optimistic timestamps may lag or lead the server's.
type Timeline struct {
	mu      sync.Mutex
	entries []models.Message
}

func NewTimeline() *Timeline {
	return &Timeline{}
}

// Seed loads the history fetched over REST before live frames flow. Entries
// arrive confirmed and in server order; any existing content is replaced.
func (t *Timeline) Seed(history []models.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = t.entries[:0]
	for _, msg := range history {
		msg.Pending = false
		if msg.ID == "" || t.indexByID(msg.ID) < 0 {
			t.entries = append(t.entries, msg)
		}
	}
}

// InsertOptimistic appends a locally-created pending entry.
func (t *Timeline) InsertOptimistic(msg models.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	msg.Pending = true
	t.entries = append(t.entries, msg)
}

// ApplyConfirmed merges a relay-confirmed message into the timeline and
// reports whether anything changed.
//
// Resolution order: an entry with the same localId is the sender's own echo
// and is confirmed in place, keeping its position; an unknown id is a new
// inbound message and is appended; a known id is a duplicate delivery and
// is dropped.
func (t *Timeline) ApplyConfirmed(msg models.Message) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	msg.Pending = false
	if msg.LocalID != "" {
		if i := t.indexByLocalID(msg.LocalID); i >= 0 {
			t.entries[i] = msg
			return true
		}
	}
	if msg.ID != "" && t.indexByID(msg.ID) >= 0 {
		return false
	}
	t.entries = append(t.entries, msg)
	return true
}

// Rollback removes the pending entry with the given localId, reporting
// whether one was found. Confirmed entries are never rolled back.
func (t *Timeline) Rollback(localID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, e := range t.entries {
		if e.Pending && e.LocalID == localID {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			return true
		}
	}
	return false
}

// RollbackPending removes every pending entry, used when the room binding
// is torn down before confirmations arrived.
func (t *Timeline) RollbackPending() {
	t.mu.Lock()
	defer t.mu.Unlock()

	kept := t.entries[:0]
	for _, e := range t.entries {
		if !e.Pending {
			kept = append(kept, e)
		}
	}
	t.entries = kept
}

// Snapshot returns a copy of the timeline for rendering.
func (t *Timeline) Snapshot() []models.Message {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]models.Message, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Timeline) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

func (t *Timeline) indexByID(id string) int {
	for i, e := range t.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (t *Timeline) indexByLocalID(localID string) int {
	for i, e := range t.entries {
		if e.LocalID == localID {
			return i
		}
	}
	return -1
}
