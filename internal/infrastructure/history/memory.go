package history

import (
	"sync"

	"github.com/google/uuid"

	"github.com/doeshing/voicectl/internal/domain"
)

// ring is a bounded newest-first record buffer.
type ring struct {
	mu       sync.Mutex
	records  []domain.CommandRecord
	capacity int
}

func newRing(capacity int) *ring {
	if capacity <= 0 {
		capacity = domain.FallbackBufferCapacity
	}
	return &ring{capacity: capacity, records: make([]domain.CommandRecord, 0, capacity)}
}

// push prepends rec and evicts the oldest entries beyond capacity.
func (r *ring) push(rec domain.CommandRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, domain.CommandRecord{})
	copy(r.records[1:], r.records)
	r.records[0] = rec
	if len(r.records) > r.capacity {
		r.records = r.records[:r.capacity]
	}
}

// first returns up to limit records, newest first, without client context.
func (r *ring) first(limit int) []domain.CommandRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 || limit > len(r.records) {
		limit = len(r.records)
	}
	out := make([]domain.CommandRecord, limit)
	copy(out, r.records[:limit])
	for i := range out {
		out[i].ClientContext = ""
	}
	return out
}

func (r *ring) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = r.records[:0]
}

func (r *ring) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// newRecordID returns a time-ordered identifier for records kept in memory.
func newRecordID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
