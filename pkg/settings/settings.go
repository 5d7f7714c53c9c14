// Package settings holds process-wide user preferences such as dark mode.
package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// KeyDarkMode is the settings key that toggles the dark theme.
const KeyDarkMode = "darkMode"

// ErrInvalidValue is returned when a value cannot be applied to its key.
var ErrInvalidValue = errors.New("invalid settings value")

// Settings are the persisted preferences.
type Settings struct {
	DarkMode bool              `json:"darkMode"`
	Values   map[string]string `json:"values,omitempty"`
}

// Clone returns a deep copy.
func (s Settings) Clone() Settings {
	out := Settings{DarkMode: s.DarkMode}
	if len(s.Values) > 0 {
		out.Values = make(map[string]string, len(s.Values))
		for k, v := range s.Values {
			out.Values[k] = v
		}
	}
	return out
}

// Patch is a partial update. Nil fields are left unchanged and Values are
// merged key by key; an empty value deletes the key.
type Patch struct {
	DarkMode *bool            `json:"darkMode,omitempty"`
	Values   map[string]string `json:"values,omitempty"`
}

// Apply returns s with p merged in.
func (p Patch) Apply(s Settings) Settings {
	out := s.Clone()
	if p.DarkMode != nil {
		out.DarkMode = *p.DarkMode
	}
	for k, v := range p.Values {
		if out.Values == nil {
			out.Values = make(map[string]string)
		}
		if v == "" {
			delete(out.Values, k)
			continue
		}
		out.Values[k] = v
	}
	return out
}

// PatchFor builds the patch that sets a single key.
func PatchFor(key, value string) (Patch, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Patch{}, fmt.Errorf("%w: empty key", ErrInvalidValue)
	}
	if strings.EqualFold(key, KeyDarkMode) || strings.EqualFold(key, "dark_mode") {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return Patch{}, fmt.Errorf("%w: %s=%q", ErrInvalidValue, KeyDarkMode, value)
		}
		return Patch{DarkMode: &b}, nil
	}
	return Patch{Values: map[string]string{key: value}}, nil
}

// Store is the settings boundary.
type Store interface {
	Get(ctx context.Context) (Settings, error)
	Update(ctx context.Context, p Patch) (Settings, error)
	Set(ctx context.Context, key, value string) (Settings, error)
	Reset(ctx context.Context) (Settings, error)
	Close() error
}

// Open creates the store named by backend ("memory" or "bunt").
func Open(backend, path string, defaults Settings) (Store, error) {
	switch strings.ToLower(backend) {
	case "", "memory", "mem":
		return NewMemoryStore(defaults), nil
	case "bunt", "buntdb", "file":
		if path == "" {
			path = ":memory:"
		}
		return OpenBuntStore(path, defaults)
	default:
		return nil, fmt.Errorf("unknown settings backend: %s (supported: memory, bunt)", backend)
	}
}
