package master

import (
	"sort"
	"sync"
	"time"

	"github.com/warmaster/warmaster/internal/chain"
)

// Record is the stored metadata for one rendered master. The clean
// base is kept so knobs can be re-applied later without the original
// upload.
type Record struct {
	ID        string
	Title     string
	Preset    chain.Preset
	Intensity int
	Knobs     chain.Knobs
	Target    string
	Tier      Tier
	CreatedAt time.Time

	CleanPath  string // decoded PCM base, render input
	MasterPath string // rendered artifact
}

// Store is the key→record registry injected into the service. The
// caller owns the lifecycle: records live until deleted or, for the
// in-memory implementation, until their TTL lapses.
type Store interface {
	Put(rec Record)
	Get(id string) (Record, bool)
	Delete(id string)
	List() []Record
}

type memoryEntry struct {
	rec     Record
	expires time.Time
}

// MemoryStore is a mutex-guarded in-memory Store with optional TTL
// eviction. Safe for concurrent requests.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates a store whose records expire ttl after being
// put. A zero ttl keeps records until explicitly deleted.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Put(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()

	entry := memoryEntry{rec: rec}
	if s.ttl > 0 {
		entry.expires = s.now().Add(s.ttl)
	}
	s.entries[rec.ID] = entry
}

func (s *MemoryStore) Get(id string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()

	entry, ok := s.entries[id]
	if !ok {
		return Record{}, false
	}
	return entry.rec, true
}

func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// List returns all live records, newest first.
func (s *MemoryStore) List() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()

	records := make([]Record, 0, len(s.entries))
	for _, entry := range s.entries {
		records = append(records, entry.rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records
}

// sweepLocked evicts expired entries. Caller holds the mutex.
func (s *MemoryStore) sweepLocked() {
	if s.ttl == 0 {
		return
	}
	now := s.now()
	for id, entry := range s.entries {
		if now.After(entry.expires) {
			delete(s.entries, id)
		}
	}
}
