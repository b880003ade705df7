package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-medreminder/internal/config"
)

func TestLoadSettings_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env here
	s, err := config.LoadSettings()
	require.NoError(t, err)

	assert.Equal(t, config.StoreBackendPreferences, s.StoreBackend)
	assert.Equal(t, config.DefaultTickInterval, s.TickInterval)
	assert.True(t, s.FeedEnabled)
	assert.Equal(t, config.DefaultSummarySpec, s.SummarySpec)
}

func TestLoadSettings_FromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := t.TempDir()
	t.Setenv("MEDREMINDER_DATA_DIR", dir)
	t.Setenv("MEDREMINDER_STORE_BACKEND", "sqlite")
	t.Setenv("MEDREMINDER_TICK_INTERVAL", "250ms")
	t.Setenv("MEDREMINDER_FEED_ENABLED", "false")

	s, err := config.LoadSettings()
	require.NoError(t, err)

	assert.Equal(t, config.StoreBackendSQLite, s.StoreBackend)
	assert.Equal(t, 250*time.Millisecond, s.TickInterval)
	assert.False(t, s.FeedEnabled)

	path, err := s.SQLitePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, config.SQLiteFileName), path)
}

func TestLoadSettings_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want error
	}{
		{"unknown backend", "MEDREMINDER_STORE_BACKEND", "redis", config.ErrUnsupportedStore},
		{"zero tick", "MEDREMINDER_TICK_INTERVAL", "0s", config.ErrBadTickInterval},
		{"tick longer than half a minute", "MEDREMINDER_TICK_INTERVAL", "45s", config.ErrBadTickInterval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.val)
			_, err := config.LoadSettings()
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
