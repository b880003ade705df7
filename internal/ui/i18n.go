package ui

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-medreminder/internal/config"
	"github.com/tartampluch/go-medreminder/internal/engine"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// SetupI18n loads every embedded active.<lang>.json into a fresh bundle.
func (app *MedReminderApp) SetupI18n() {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return
	}

	var detected []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		detected = append(detected, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
		)
	}

	app.SupportedLanguages = detected
	app.I18nBundle = bundle
	app.UpdateLocalizer()
}

// UpdateLocalizer follows the language preference. Alarm and import
// goroutines translate concurrently, so the localizer is swapped atomically.
func (app *MedReminderApp) UpdateLocalizer() {
	if app.I18nBundle == nil {
		return
	}
	app.localizer.Store(i18n.NewLocalizer(app.I18nBundle, app.Language()))
}

// Language is the selected UI language code.
func (app *MedReminderApp) Language() string {
	return app.Preferences.StringWithFallback(config.PrefLanguage, config.DefaultLanguage)
}

// GetMsg translates key, returning the key itself when no translation exists.
func (app *MedReminderApp) GetMsg(key string) string {
	return app.GetMsgWith(key, nil)
}

// GetMsgWith translates a templated key.
func (app *MedReminderApp) GetMsgWith(key string, data map[string]any) string {
	loc := app.localizer.Load()
	if loc == nil {
		slog.Debug(config.ErrLocNotInit,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
		)
		return key
	}
	msg, err := loc.Localize(&i18n.LocalizeConfig{MessageID: key, TemplateData: data})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}

// announce is the spoken text of an alarm and the voice to read it with.
func (app *MedReminderApp) announce(m engine.Medication) (string, string) {
	data := map[string]any{"Name": m.Name, "Dosage": m.Dosage}
	text := app.GetMsgWith(config.TKeyAnnounce, data)
	if text == config.TKeyAnnounce {
		text = fmt.Sprintf(config.FallbackAnnounce, m.Name, m.Dosage)
	}
	lang := app.GetMsg(config.TKeySpeechLang)
	if lang == config.TKeySpeechLang {
		lang = config.FallbackSpeechLang
	}
	return text, lang
}

// formatTimeTaken renders the wall-clock time of an acknowledgment.
func (app *MedReminderApp) formatTimeTaken(t time.Time) string {
	layout := app.GetMsg(config.TKeyFormatTime)
	if layout == config.TKeyFormatTime {
		layout = config.TimeTakenFormat
	}
	return t.Format(layout)
}

func (app *MedReminderApp) weekdayLabel(tag string) string {
	key := config.TKeyWeekdayPrefix + tag
	if msg := app.GetMsg(key); msg != key {
		return msg
	}
	return tag
}

func (app *MedReminderApp) statusLabel(s engine.Status) string {
	if s == engine.StatusSkipped {
		return app.GetMsg(config.TKeyStatusSkipped)
	}
	return app.GetMsg(config.TKeyStatusTaken)
}
