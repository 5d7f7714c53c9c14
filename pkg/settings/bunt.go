package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/buntdb"
)

const settingsKey = "settings"

// BuntStore persists settings as a single JSON document.
type BuntStore struct {
	db       *buntdb.DB
	defaults Settings
}

// OpenBuntStore opens the settings database at path.
func OpenBuntStore(path string, defaults Settings) (*BuntStore, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open settings db %q: %w", path, err)
	}
	return &BuntStore{db: db, defaults: defaults.Clone()}, nil
}

func (b *BuntStore) load(tx *buntdb.Tx) (Settings, error) {
	raw, err := tx.Get(settingsKey)
	if errors.Is(err, buntdb.ErrNotFound) {
		return b.defaults.Clone(), nil
	}
	if err != nil {
		return Settings{}, err
	}
	var s Settings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	return s, nil
}

func save(tx *buntdb.Tx, s Settings) error {
	bs, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	_, _, err = tx.Set(settingsKey, string(bs), nil)
	return err
}

func (b *BuntStore) Get(ctx context.Context) (Settings, error) {
	if err := ctx.Err(); err != nil {
		return Settings{}, err
	}
	var s Settings
	err := b.db.View(func(tx *buntdb.Tx) error {
		var err error
		s, err = b.load(tx)
		return err
	})
	return s, err
}

func (b *BuntStore) Update(ctx context.Context, p Patch) (Settings, error) {
	if err := ctx.Err(); err != nil {
		return Settings{}, err
	}
	var s Settings
	err := b.db.Update(func(tx *buntdb.Tx) error {
		cur, err := b.load(tx)
		if err != nil {
			return err
		}
		s = p.Apply(cur)
		return save(tx, s)
	})
	if err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (b *BuntStore) Set(ctx context.Context, key, value string) (Settings, error) {
	p, err := PatchFor(key, value)
	if err != nil {
		return Settings{}, err
	}
	return b.Update(ctx, p)
}

func (b *BuntStore) Reset(ctx context.Context) (Settings, error) {
	if err := ctx.Err(); err != nil {
		return Settings{}, err
	}
	err := b.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(settingsKey)
		if errors.Is(err, buntdb.ErrNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return Settings{}, err
	}
	return b.defaults.Clone(), nil
}

func (b *BuntStore) Close() error {
	err := b.db.Close()
	if errors.Is(err, buntdb.ErrDatabaseClosed) {
		return nil
	}
	return err
}
