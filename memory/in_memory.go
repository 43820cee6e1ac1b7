package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Record is one remembered observation. Cause names the action or stage
// that produced it (e.g. "routing", "planning"); Worker is the worker that
// was active at the time.
type Record struct {
	ID      string    `json:"id"`
	Content string    `json:"content"`
	Cause   string    `json:"cause,omitempty"`
	Worker  string    `json:"worker,omitempty"`
	Created time.Time `json:"created"`
}

// NewRecord builds a Record with a generated id and the current time.
func NewRecord(content, cause, worker string) Record {
	return Record{ID: uuid.NewString(), Content: content, Cause: cause, Worker: worker, Created: time.Now()}
}

// Store is a naive process-local short-term memory.
//
// Concurrency: protected by RWMutex. Retrieval is linear scan; suitable
// for in-run recall, not long-term retrieval at scale.
type Store struct {
	mu         sync.RWMutex
	records    []Record
	seen       map[string]struct{}
	maxEntries int // 0 = unlimited; oldest records are evicted beyond this
}

// Options configures Store construction.
type Options struct {
	// MaxEntries bounds the store; 0 keeps everything.
	MaxEntries int
}

// NewStore creates an empty Store.
func NewStore(optFns ...func(o *Options)) *Store {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Store{seen: map[string]struct{}{}, maxEntries: opts.MaxEntries}
}

// Add appends a record unless one with the same id is already present.
func (s *Store) Add(r Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.add(r)
}

// AddBatch appends multiple records, skipping ids already present.
func (s *Store) AddBatch(records ...Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		s.add(r)
	}
}

func (s *Store) add(r Record) {
	if _, ok := s.seen[r.ID]; ok {
		return
	}
	s.seen[r.ID] = struct{}{}
	s.records = append(s.records, r)
	if s.maxEntries > 0 && len(s.records) > s.maxEntries {
		evicted := s.records[0]
		delete(s.seen, evicted.ID)
		s.records = s.records[1:]
	}
}

// Recent returns the most recent k records; k <= 0 returns everything.
// The returned slice is a copy.
func (s *Store) Recent(k int) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := 0
	if k > 0 && len(s.records) > k {
		start = len(s.records) - k
	}
	out := make([]Record, len(s.records)-start)
	copy(out, s.records[start:])
	return out
}

// ByCause returns all records produced by the given action, in insertion
// order.
func (s *Store) ByCause(cause string) []Record {
	return s.ByCauses(cause)
}

// ByCauses returns all records produced by any of the given actions, in
// insertion order.
func (s *Store) ByCauses(causes ...string) []Record {
	if len(causes) == 0 {
		return nil
	}
	wanted := make(map[string]struct{}, len(causes))
	for _, c := range causes {
		wanted[c] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Record
	for _, r := range s.records {
		if _, ok := wanted[r.Cause]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
