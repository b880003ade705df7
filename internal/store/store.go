package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"fyne.io/fyne/v2"
	"github.com/tartampluch/go-medreminder/internal/config"
	"github.com/tartampluch/go-medreminder/internal/engine"
	"github.com/tartampluch/go-medreminder/internal/metrics"
)

// Store maps the typed records onto a Backend. Reads never fail: missing or
// unreadable data degrades to the zero profile or an empty collection. Writes
// are logged and counted on failure and otherwise ignored, so a full disk
// never takes the reminder loop down.
type Store struct {
	Backend Backend
	Metrics *metrics.Metrics
}

func New(b Backend, m *metrics.Metrics) *Store {
	return &Store{Backend: b, Metrics: m}
}

// Open selects the backend named in s. The returned closer is a no-op for
// the preferences backend.
func Open(s *config.Settings, prefs fyne.Preferences, m *metrics.Metrics) (*Store, io.Closer, error) {
	switch s.StoreBackend {
	case config.StoreBackendSQLite:
		path, err := s.SQLitePath()
		if err != nil {
			return nil, nil, err
		}
		b, err := OpenSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("Store opened",
			config.LogKeyComponent, config.CompStore,
			config.LogKeyBackend, s.StoreBackend,
			config.LogKeyFile, path)
		return New(b, m), b, nil
	case config.StoreBackendPreferences, "":
		return New(NewPreferencesBackend(prefs), m), nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrUnsupportedStore, s.StoreBackend)
	}
}

// LoadProfile returns the stored profile or the zero profile.
func (s *Store) LoadProfile(ctx context.Context) engine.UserProfile {
	var p engine.UserProfile
	if !s.load(ctx, config.RecordProfile, &p) {
		return engine.UserProfile{}
	}
	return p
}

// LoadMedications returns the stored medications in order. Entries that fail
// validation or repeat an earlier id are dropped. The result is never nil.
func (s *Store) LoadMedications(ctx context.Context) []engine.Medication {
	var raw []engine.Medication
	if !s.load(ctx, config.RecordMedications, &raw) {
		return []engine.Medication{}
	}

	out := make([]engine.Medication, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, m := range raw {
		if m.ID == "" || seen[m.ID] {
			slog.Warn(config.MsgRecordSkipped,
				config.LogKeyComponent, config.CompStore,
				config.LogKeyMedID, m.ID)
			continue
		}
		if err := m.Validate(); err != nil {
			slog.Warn(config.MsgRecordSkipped,
				config.LogKeyComponent, config.CompStore,
				config.LogKeyMedID, m.ID,
				config.LogKeyError, err)
			continue
		}
		seen[m.ID] = true
		out = append(out, m)
	}
	return out
}

// LoadHistory returns the ledger, newest first, never nil.
func (s *Store) LoadHistory(ctx context.Context) []engine.HistoryLog {
	var h []engine.HistoryLog
	if !s.load(ctx, config.RecordHistory, &h) || h == nil {
		return []engine.HistoryLog{}
	}
	return h
}

func (s *Store) SaveProfile(ctx context.Context, p engine.UserProfile) {
	s.save(ctx, config.RecordProfile, p)
}

func (s *Store) SaveMedications(ctx context.Context, meds []engine.Medication) {
	if meds == nil {
		meds = []engine.Medication{}
	}
	s.save(ctx, config.RecordMedications, meds)
}

func (s *Store) SaveHistory(ctx context.Context, h []engine.HistoryLog) {
	if h == nil {
		h = []engine.HistoryLog{}
	}
	s.save(ctx, config.RecordHistory, h)
}

// load decodes key into dst and reports whether dst holds stored data.
func (s *Store) load(ctx context.Context, key string, dst any) bool {
	log := slog.With(config.LogKeyComponent, config.CompStore, config.LogKeyRecord, key)

	data, err := s.Backend.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false
	}
	if err != nil {
		log.Warn(config.MsgRecordDefaulted, config.LogKeyError, err)
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		log.Warn(config.MsgRecordDefaulted,
			config.LogKeyError, fmt.Errorf("%s: %w", config.ErrRecordDecode, err))
		return false
	}
	return true
}

func (s *Store) save(ctx context.Context, key string, v any) {
	log := slog.With(config.LogKeyComponent, config.CompStore, config.LogKeyRecord, key)

	data, err := json.Marshal(v)
	if err != nil {
		log.Error(config.ErrRecordEncode, config.LogKeyError, err)
		s.Metrics.StoreWriteFailed(key)
		return
	}
	if err := s.Backend.Set(ctx, key, data); err != nil {
		log.Error(config.ErrRecordWrite, config.LogKeyError, err)
		s.Metrics.StoreWriteFailed(key)
		return
	}
	log.Debug(config.MsgRecordSaved, config.LogKeySizeBytes, len(data))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
