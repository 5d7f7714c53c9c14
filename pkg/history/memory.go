package history

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps history in a slice guarded by a mutex.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
	clock   Clock
	closed  bool
}

// NewMemoryStore creates an empty in-memory store. A nil clock means time.Now.
func NewMemoryStore(clock Clock) *MemoryStore {
	return &MemoryStore{clock: clock}
}

// NewMemoryStoreWith seeds the store with existing records, e.g. fixtures.
func NewMemoryStoreWith(clock Clock, seed []Record) *MemoryStore {
	s := NewMemoryStore(clock)
	s.records = append(s.records, seed...)
	return s
}

// Append implements Store.
func (s *MemoryStore) Append(ctx context.Context, e Entry) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Record{}, ErrClosed
	}

	var maxID int64
	for _, r := range s.records {
		if r.ID > maxID {
			maxID = r.ID
		}
	}
	rec := Record{
		ID:             maxID + 1,
		SourceText:     e.SourceText,
		TranslatedText: e.TranslatedText,
		SourceLang:     e.SourceLang,
		TargetLang:     e.TargetLang,
		CharCount:      e.CharCount,
		Timestamp:      nowMillis(s.clock),
	}
	s.records = append(s.records, rec)
	observeOp("append", nil)
	return rec, nil
}

// Recent implements Store.
func (s *MemoryStore) Recent(ctx context.Context, limit int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	out := make([]Record, len(s.records))
	copy(out, s.records)
	sortRecent(out)
	return truncate(out, limit), nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, id int64) (Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return Record{}, false, ErrClosed
	}
	for _, r := range s.records {
		if r.ID == id {
			return r, true, nil
		}
	}
	return Record{}, false, nil
}

// All implements Store.
func (s *MemoryStore) All(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	out := make([]Record, len(s.records))
	copy(out, s.records)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Remove implements Store.
func (s *MemoryStore) Remove(ctx context.Context, id int64) (Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Record{}, false, ErrClosed
	}
	for i, r := range s.records {
		if r.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			observeOp("remove", nil)
			return r, true, nil
		}
	}
	return Record{}, false, nil
}

// Clear implements Store.
func (s *MemoryStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.records = nil
	observeOp("clear", nil)
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
