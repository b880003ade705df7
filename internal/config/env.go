package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Settings holds the runtime knobs read from the process environment.
// Variables are prefixed with MEDREMINDER_, e.g. MEDREMINDER_STORE_BACKEND=sqlite.
type Settings struct {
	DataDir       string        `envconfig:"DATA_DIR" default:""`
	StoreBackend  string        `envconfig:"STORE_BACKEND" default:"preferences"`
	TickInterval  time.Duration `envconfig:"TICK_INTERVAL" default:"1s"`
	SpeechCommand string        `envconfig:"SPEECH_COMMAND" default:""`
	PlayerCommand string        `envconfig:"PLAYER_COMMAND" default:""`
	FeedEnabled   bool          `envconfig:"FEED_ENABLED" default:"true"`
	SummarySpec   string        `envconfig:"SUMMARY_SPEC" default:"0 0 21 * * *"`
}

var (
	ErrUnsupportedStore = errors.New(ErrStoreUnsupport)
	ErrBadTickInterval  = errors.New(ErrTickInterval)
)

// LoadSettings reads an optional .env file from the working directory, then the
// environment, and validates the result.
func LoadSettings() (*Settings, error) {
	log := slog.With(slog.String(LogKeyComponent, CompConfig))

	if err := godotenv.Load(); err != nil {
		log.Debug(MsgNoDotEnv)
	}

	var s Settings
	if err := envconfig.Process(EnvPrefix, &s); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrEnvConfig, err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	log.Info("Configuration loaded",
		slog.String(LogKeyBackend, s.StoreBackend),
		slog.Duration(LogKeyInterval, s.TickInterval),
		slog.Bool("feed_enabled", s.FeedEnabled),
	)
	return &s, nil
}

// Validate rejects settings the scheduler or the store could not honor.
func (s *Settings) Validate() error {
	switch s.StoreBackend {
	case StoreBackendPreferences, StoreBackendSQLite:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedStore, s.StoreBackend)
	}
	if s.TickInterval <= 0 || s.TickInterval > MaxTickInterval {
		return fmt.Errorf("%w: %s", ErrBadTickInterval, s.TickInterval)
	}
	return nil
}

// ResolveDataDir returns the directory holding the SQLite store, creating it
// with owner-only permissions. DataDir wins over the OS config directory.
func (s *Settings) ResolveDataDir() (string, error) {
	dir := s.DataDir
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("%s: %w", ErrConfigDir, err)
		}
		dir = filepath.Join(base, AppID)
	}
	if err := os.MkdirAll(dir, DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", ErrCreateDir, err)
	}
	return dir, nil
}

// SQLitePath is the database file inside ResolveDataDir.
func (s *Settings) SQLitePath() (string, error) {
	dir, err := s.ResolveDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SQLiteFileName), nil
}
