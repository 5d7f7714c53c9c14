package history

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Record is one completed translation kept in history. Records are never
// mutated after creation.
type Record struct {
	ID             int64  `json:"id"`
	SourceText     string `json:"sourceText"`
	TranslatedText string `json:"translatedText"`
	SourceLang     string `json:"sourceLang"`
	TargetLang     string `json:"targetLang"`
	CharCount      int    `json:"charCount"`
	// Timestamp is the creation time in Unix milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// Entry is the caller-supplied part of a record. ID and Timestamp are always
// assigned by the store.
type Entry struct {
	SourceText     string
	TranslatedText string
	SourceLang     string
	TargetLang     string
	CharCount      int
}

// DefaultRecentLimit is the history page size transports use when the caller
// does not ask for one.
const DefaultRecentLimit = 10

// MaxRecentLimit is the largest page transports hand to Recent; larger
// requests are clamped.
const MaxRecentLimit = 500

// ClampLimit bounds a caller-supplied page size to MaxRecentLimit.
func ClampLimit(limit int) int {
	return min(limit, MaxRecentLimit)
}

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("history store is closed")

// Store is the translation history. Implementations must assign ids
// atomically and return copies, never references to their internals.
type Store interface {
	// Append stores a new record with the next id (max existing id + 1, or 1
	// when empty) and the current time.
	Append(ctx context.Context, e Entry) (Record, error)
	// Recent returns at most limit records, newest first. A non-positive limit
	// returns no records.
	Recent(ctx context.Context, limit int) ([]Record, error)
	// Get returns the record with id, reporting false when absent.
	Get(ctx context.Context, id int64) (Record, bool, error)
	// All returns every record in id order.
	All(ctx context.Context) ([]Record, error)
	// Remove deletes and returns the record with id. A missing id is not an error.
	Remove(ctx context.Context, id int64) (Record, bool, error)
	// Clear deletes every record.
	Clear(ctx context.Context) error
	// Close releases the store's resources.
	Close() error
}

// Backend names a Store implementation.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendBunt   Backend = "bunt"
)

// ParseBackend parses a history backend name.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(s) {
	case "", "memory", "mem":
		return BackendMemory, nil
	case "bunt", "buntdb", "file":
		return BackendBunt, nil
	default:
		return "", fmt.Errorf("unknown history backend: %s (supported: memory, bunt)", s)
	}
}

// Clock returns the current time. Stores take one so tests can control
// timestamps.
type Clock func() time.Time

func nowMillis(c Clock) int64 {
	if c == nil {
		c = time.Now
	}
	return c().UnixMilli()
}

// sortRecent orders records newest first; equal timestamps put the higher id
// first so the most recently appended record leads.
func sortRecent(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Timestamp != records[j].Timestamp {
			return records[i].Timestamp > records[j].Timestamp
		}
		return records[i].ID > records[j].ID
	})
}

// truncate keeps at most limit records; a non-positive limit keeps none.
func truncate(records []Record, limit int) []Record {
	if limit <= 0 {
		return []Record{}
	}
	if len(records) > limit {
		return records[:limit]
	}
	return records
}

// Open creates the store for backend. path is ignored by the memory backend.
func Open(backend Backend, path string, clock Clock) (Store, error) {
	switch backend {
	case BackendMemory, "":
		return NewMemoryStore(clock), nil
	case BackendBunt:
		if path == "" {
			path = ":memory:"
		}
		return OpenBuntStore(path, clock)
	default:
		return nil, fmt.Errorf("unknown history backend: %s", backend)
	}
}
