package tokencache_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksred/tradervolt-migrate/internal/api"
	"github.com/ksred/tradervolt-migrate/internal/tokencache"
)

func TestFileCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	cache := tokencache.NewFileCache(path)

	pair := &api.TokenPair{
		AccessToken:          "access",
		RefreshToken:         "refresh",
		AccessTokenExpiresAt: api.APITime{Time: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)},
	}
	require.NoError(t, cache.Save(pair))

	loaded, err := cache.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "access", loaded.AccessToken)
	assert.Equal(t, "refresh", loaded.RefreshToken)
	assert.True(t, loaded.AccessTokenExpiresAt.Equal(pair.AccessTokenExpiresAt.Time))
}

func TestFileCacheMissingFile(t *testing.T) {
	cache := tokencache.NewFileCache(filepath.Join(t.TempDir(), "absent.json"))

	pair, err := cache.Load()
	require.NoError(t, err)
	assert.Nil(t, pair)
}

func TestFileCachePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}

	path := filepath.Join(t.TempDir(), "token.json")
	cache := tokencache.NewFileCache(path)
	require.NoError(t, cache.Save(&api.TokenPair{AccessToken: "secret"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileCacheCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := tokencache.NewFileCache(path).Load()
	assert.Error(t, err)
}

func TestNopCache(t *testing.T) {
	cache := tokencache.NopCache{}
	require.NoError(t, cache.Save(&api.TokenPair{AccessToken: "x"}))
	pair, err := cache.Load()
	require.NoError(t, err)
	assert.Nil(t, pair)
}
