package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/tidwall/buntdb"
)

const (
	keyPrefix      = "translation:"
	keyPattern     = keyPrefix + "*"
	timestampIndex = "timestamp"
)

// BuntStore persists history in a buntdb file. Keys are zero padded ids so
// key order is id order.
type BuntStore struct {
	db    *buntdb.DB
	clock Clock

	// appendMu serialises id assignment across Append calls.
	appendMu sync.Mutex
}

// OpenBuntStore opens (or creates) the database at path. ":memory:" keeps it
// in memory only.
func OpenBuntStore(path string, clock Clock) (*BuntStore, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open history db %q: %w", path, err)
	}
	if err := db.CreateIndex(timestampIndex, keyPattern, buntdb.IndexJSON("timestamp")); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history index: %w", err)
	}
	return &BuntStore{db: db, clock: clock}, nil
}

func recordKey(id int64) string {
	return fmt.Sprintf("%s%020d", keyPrefix, id)
}

func idFromKey(key string) (int64, error) {
	return strconv.ParseInt(strings.TrimPrefix(key, keyPrefix), 10, 64)
}

func decodeRecord(value string) (Record, error) {
	var r Record
	if err := json.Unmarshal([]byte(value), &r); err != nil {
		return Record{}, fmt.Errorf("decode history record: %w", err)
	}
	return r, nil
}

func mapClosed(err error) error {
	if errors.Is(err, buntdb.ErrDatabaseClosed) {
		return ErrClosed
	}
	return err
}

// Append implements Store.
func (s *BuntStore) Append(ctx context.Context, e Entry) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	s.appendMu.Lock()
	defer s.appendMu.Unlock()

	var rec Record
	err := s.db.Update(func(tx *buntdb.Tx) error {
		var maxID int64
		var scanErr error
		err := tx.DescendKeys(keyPattern, func(key, _ string) bool {
			maxID, scanErr = idFromKey(key)
			return false
		})
		if err != nil {
			return err
		}
		if scanErr != nil {
			return fmt.Errorf("parse history key: %w", scanErr)
		}

		rec = Record{
			ID:             maxID + 1,
			SourceText:     e.SourceText,
			TranslatedText: e.TranslatedText,
			SourceLang:     e.SourceLang,
			TargetLang:     e.TargetLang,
			CharCount:      e.CharCount,
			Timestamp:      nowMillis(s.clock),
		}
		bs, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode history record: %w", err)
		}
		_, _, err = tx.Set(recordKey(rec.ID), string(bs), nil)
		return err
	})
	observeOp("append", err)
	if err != nil {
		return Record{}, mapClosed(err)
	}
	return rec, nil
}

// Recent implements Store.
func (s *BuntStore) Recent(ctx context.Context, limit int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []Record{}, nil
	}

	out := make([]Record, 0, min(limit, DefaultRecentLimit))
	err := s.db.View(func(tx *buntdb.Tx) error {
		var decodeErr error
		err := tx.Descend(timestampIndex, func(_, value string) bool {
			r, err := decodeRecord(value)
			if err != nil {
				decodeErr = err
				return false
			}
			out = append(out, r)
			return len(out) < limit
		})
		if err != nil {
			return err
		}
		return decodeErr
	})
	if err != nil {
		return nil, mapClosed(err)
	}
	sortRecent(out)
	return out, nil
}

// Get implements Store.
func (s *BuntStore) Get(ctx context.Context, id int64) (Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, false, err
	}
	var rec Record
	err := s.db.View(func(tx *buntdb.Tx) error {
		value, err := tx.Get(recordKey(id))
		if err != nil {
			return err
		}
		rec, err = decodeRecord(value)
		return err
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, mapClosed(err)
	}
	return rec, true, nil
}

// All implements Store.
func (s *BuntStore) All(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := []Record{}
	err := s.db.View(func(tx *buntdb.Tx) error {
		var decodeErr error
		err := tx.AscendKeys(keyPattern, func(_, value string) bool {
			r, err := decodeRecord(value)
			if err != nil {
				decodeErr = err
				return false
			}
			out = append(out, r)
			return true
		})
		if err != nil {
			return err
		}
		return decodeErr
	})
	if err != nil {
		return nil, mapClosed(err)
	}
	return out, nil
}

// Remove implements Store.
func (s *BuntStore) Remove(ctx context.Context, id int64) (Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, false, err
	}
	var rec Record
	err := s.db.Update(func(tx *buntdb.Tx) error {
		value, err := tx.Delete(recordKey(id))
		if err != nil {
			return err
		}
		rec, err = decodeRecord(value)
		return err
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return Record{}, false, nil
	}
	observeOp("remove", err)
	if err != nil {
		return Record{}, false, mapClosed(err)
	}
	return rec, true, nil
}

// Clear implements Store.
func (s *BuntStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(tx *buntdb.Tx) error {
		var keys []string
		if err := tx.AscendKeys(keyPattern, func(key, _ string) bool {
			keys = append(keys, key)
			return true
		}); err != nil {
			return err
		}
		for _, k := range keys {
			if _, err := tx.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	observeOp("clear", err)
	return mapClosed(err)
}

// Close implements Store.
func (s *BuntStore) Close() error {
	err := s.db.Close()
	if errors.Is(err, buntdb.ErrDatabaseClosed) {
		return nil
	}
	return err
}
