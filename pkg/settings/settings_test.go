package settings

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T, defaults Settings) map[string]Store {
	t.Helper()
	bunt, err := OpenBuntStore(":memory:", defaults)
	require.NoError(t, err)
	t.Cleanup(func() { bunt.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(defaults),
		"bunt":   bunt,
	}
}

func TestStore_UpdateSetReset(t *testing.T) {
	defaults := Settings{Values: map[string]string{"fontSize": "medium"}}
	for name, s := range stores(t, defaults) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			got, err := s.Get(ctx)
			require.NoError(t, err)
			assert.False(t, got.DarkMode)
			assert.Equal(t, "medium", got.Values["fontSize"])

			dark := true
			got, err = s.Update(ctx, Patch{DarkMode: &dark})
			require.NoError(t, err)
			assert.True(t, got.DarkMode)
			assert.Equal(t, "medium", got.Values["fontSize"])

			got, err = s.Set(ctx, "fontSize", "large")
			require.NoError(t, err)
			assert.True(t, got.DarkMode)
			assert.Equal(t, "large", got.Values["fontSize"])

			got, err = s.Set(ctx, "darkMode", "false")
			require.NoError(t, err)
			assert.False(t, got.DarkMode)

			_, err = s.Set(ctx, "darkMode", "maybe")
			assert.ErrorIs(t, err, ErrInvalidValue)

			got, err = s.Reset(ctx)
			require.NoError(t, err)
			assert.Equal(t, defaults, got)

			got, err = s.Get(ctx)
			require.NoError(t, err)
			assert.Equal(t, defaults, got)
		})
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	for name, s := range stores(t, Settings{Values: map[string]string{"a": "1"}}) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			got, err := s.Get(ctx)
			require.NoError(t, err)
			got.Values["a"] = "mutated"

			again, err := s.Get(ctx)
			require.NoError(t, err)
			assert.Equal(t, "1", again.Values["a"])
		})
	}
}

func TestPatch_EmptyValueDeletesKey(t *testing.T) {
	t.Parallel()

	s := Patch{Values: map[string]string{"a": ""}}.Apply(Settings{Values: map[string]string{"a": "1", "b": "2"}})
	assert.Equal(t, map[string]string{"b": "2"}, s.Values)
}

func TestBuntStore_Persists(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "settings.db")

	s, err := OpenBuntStore(path, Settings{})
	require.NoError(t, err)
	_, err = s.Set(ctx, KeyDarkMode, "true")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := OpenBuntStore(path, Settings{})
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.Get(ctx)
	require.NoError(t, err)
	assert.True(t, got.DarkMode)
}

func TestOpen(t *testing.T) {
	t.Parallel()

	s, err := Open("memory", "", Settings{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = Open("etcd", "", Settings{})
	assert.Error(t, err)
}
