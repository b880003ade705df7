package store

import (
	"context"

	"fyne.io/fyne/v2"
)

// PreferencesBackend keeps records in the Fyne application preferences,
// which is the default for desktop installs.
type PreferencesBackend struct {
	Prefs fyne.Preferences
}

func NewPreferencesBackend(p fyne.Preferences) *PreferencesBackend {
	return &PreferencesBackend{Prefs: p}
}

// Get returns ErrNotFound for keys that are absent or empty.
func (b *PreferencesBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v := b.Prefs.String(key)
	if v == "" {
		return nil, ErrNotFound
	}
	return []byte(v), nil
}

func (b *PreferencesBackend) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.Prefs.SetString(key, string(value))
	return nil
}
