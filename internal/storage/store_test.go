package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"cropsense/internal/config"
	"cropsense/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStores(t *testing.T) {
	stores := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"file": func(t *testing.T) Store {
			return NewFileStore(filepath.Join(t.TempDir(), "nested", "state.json"))
		},
		"instrumented": func(t *testing.T) Store { return Instrument("memory", NewMemoryStore()) },
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)
			defer s.Close()

			_, ok, err := s.Get(ctx, KeyToken)
			require.NoError(t, err)
			assert.False(t, ok, "empty store should miss")

			require.NoError(t, s.Set(ctx, KeyToken, "abc"))
			require.NoError(t, s.Set(ctx, KeyLanguage, "hi"))

			v, ok, err := s.Get(ctx, KeyToken)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "abc", v)

			require.NoError(t, s.Set(ctx, KeyToken, "def"))
			v, _, _ = s.Get(ctx, KeyToken)
			assert.Equal(t, "def", v)

			require.NoError(t, s.Delete(ctx, KeyToken))
			_, ok, err = s.Get(ctx, KeyToken)
			require.NoError(t, err)
			assert.False(t, ok, "deleted key should miss")

			require.NoError(t, s.Delete(ctx, KeyToken), "deleting twice is fine")

			v, ok, _ = s.Get(ctx, KeyLanguage)
			assert.True(t, ok)
			assert.Equal(t, "hi", v)
		})
	}
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")

	require.NoError(t, NewFileStore(path).Set(ctx, KeyTheme, ThemeDark))

	v, ok, err := NewFileStore(path).Get(ctx, KeyTheme)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, ThemeDark, v)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, _, err := NewFileStore(path).Get(context.Background(), KeyToken)
	assert.Error(t, err)
}

func TestRedisStore_Key(t *testing.T) {
	assert.Equal(t, "cropsense:default:token", NewRedisStore(nil, "").Key(KeyToken))
	assert.Equal(t, "cropsense:farm-42:theme", NewRedisStore(nil, "farm-42").Key(KeyTheme))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	cfg := &config.Config{}
	cfg.Storage.Driver = "memory"
	s, err := Open(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "k", "v"))

	cfg.Storage.Driver = "file"
	cfg.Storage.Path = filepath.Join(t.TempDir(), "state.json")
	s, err = Open(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "k", "v"))

	cfg.Storage.Driver = "floppy"
	_, err = Open(ctx, cfg)
	assert.Error(t, err)
}

func TestPreferences(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	prefs := NewPreferences(store)

	lang, err := prefs.Language(ctx)
	require.NoError(t, err)
	assert.Equal(t, "en", lang, "default language")

	theme, err := prefs.Theme(ctx)
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, theme, "default theme")

	require.NoError(t, prefs.SetLanguage(ctx, "pa"))
	lang, _ = prefs.Language(ctx)
	assert.Equal(t, "pa", lang)

	require.NoError(t, prefs.SetTheme(ctx, ThemeDark))
	theme, _ = prefs.Theme(ctx)
	assert.Equal(t, ThemeDark, theme)

	assert.ErrorIs(t, prefs.SetLanguage(ctx, "fr"), models.ErrValidation)
	assert.ErrorIs(t, prefs.SetTheme(ctx, "sepia"), models.ErrValidation)

	// Unknown stored values fall back to defaults
	require.NoError(t, store.Set(ctx, KeyLanguage, "xx"))
	lang, _ = prefs.Language(ctx)
	assert.Equal(t, "en", lang)
}
