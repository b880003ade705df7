package ui_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-medreminder/internal/config"
)

// usedKeys lists every translation key the UI asks for.
func usedKeys() []string {
	keys := []string{
		config.TKeyWinTitle, config.TKeyWinSettings,
		config.TKeyAnnounce, config.TKeySpeechLang, config.TKeyFormatTime,
		config.TKeyAlarmTitle, config.TKeyAlarmDosage,
		config.TKeyBtnTaken, config.TKeyBtnSkipped,
		config.TKeyStatusTaken, config.TKeyStatusSkipped,
		config.TKeyNotifAlarm, config.TKeyNotifSummary, config.TKeyNotifSummaryBody,
		config.TKeyNotifImportOK, config.TKeyNotifImportErr,
		config.TKeyLblProfile, config.TKeyLblName, config.TKeyLblDisease, config.TKeyLblBirthDate,
		config.TKeyHintName, config.TKeyHintDisease, config.TKeyHintBirthDate,
		config.TKeyBtnPhoto, config.TKeyBtnSaveProfile, config.TKeyLblProcessing, config.TKeyErrBirthDate,
		config.TKeyLblNoDisease, config.TKeyLblActiveCount, config.TKeyLblMyMeds, config.TKeyLblEmptyMeds,
		config.TKeyLblTimeSuffix, config.TKeyBtnAdd, config.TKeyBtnEdit, config.TKeyBtnHistory,
		config.TKeyBtnProfile, config.TKeyBtnSettings, config.TKeyLblActive,
		config.TKeyLblNewMed, config.TKeyLblEditMed, config.TKeyLblMedName, config.TKeyLblDosage,
		config.TKeyLblTime, config.TKeyLblDays, config.TKeyLblIcon, config.TKeyHintMedName, config.TKeyHintDosage,
		config.TKeyBtnCreate, config.TKeyBtnUpdate, config.TKeyBtnDelete, config.TKeyBtnBack,
		config.TKeyConfirmDelTitle, config.TKeyConfirmDelMsg, config.TKeyErrMedInvalid,
		config.TKeyLblHistory, config.TKeyLblEmptyHistory, config.TKeyLblCaregiver,
		config.TKeyLblLanguage, config.TKeyHelpLanguage, config.TKeyLblGeneral,
		config.TKeyLblPort, config.TKeyHelpPort, config.TKeyLblFeed, config.TKeyLblFeedHelp,
		config.TKeyLblPlan, config.TKeyModeWeb, config.TKeyModeLocal,
		config.TKeyLblURL, config.TKeyLblUser, config.TKeyLblPass,
		config.TKeyBtnBrowse, config.TKeyBtnImport, config.TKeyBtnSave, config.TKeyBtnCancel,
		config.TKeyLblFooter, config.TKeyErrPortReq, config.TKeyErrPortNum, config.TKeyErrPortRange,
	}
	for _, tag := range config.WeekdayTags {
		keys = append(keys, config.TKeyWeekdayPrefix+tag)
	}
	return keys
}

func loadLocale(t *testing.T, lang string) map[string]string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join("locales", "active."+lang+".json"))
	require.NoErrorf(t, err, "must load active.%s.json", lang)

	var m map[string]string
	require.NoError(t, json.Unmarshal(content, &m), "JSON must be a flat string map")
	return m
}

// TestI18nIntegrity ensures every key the UI uses exists in every shipped
// language, and that no language carries keys the others lack.
func TestI18nIntegrity(t *testing.T) {
	en := loadLocale(t, "en")

	for _, lang := range config.SupportedLanguages {
		t.Run(lang, func(t *testing.T) {
			msgs := loadLocale(t, lang)
			for _, key := range usedKeys() {
				v, ok := msgs[key]
				assert.Truef(t, ok, "key %q missing in active.%s.json", key, lang)
				assert.NotEmptyf(t, strings.TrimSpace(v), "key %q is blank in active.%s.json", key, lang)
			}
			assert.Len(t, msgs, len(en), "every language carries the same key set")
		})
	}
}

var templateVar = regexp.MustCompile(`\{\{\s*\.(\w+)\s*\}\}`)

// TestI18nTemplatesMatch ensures translations use the same template fields
// as English, so no announcement loses the medication name or dosage.
func TestI18nTemplatesMatch(t *testing.T) {
	en := loadLocale(t, "en")
	th := loadLocale(t, "th")

	for key, text := range en {
		want := templateVar.FindAllStringSubmatch(text, -1)
		got := templateVar.FindAllStringSubmatch(th[key], -1)
		assert.ElementsMatchf(t, want, got, "template fields differ for %q", key)
	}

	assert.Contains(t, en[config.TKeyAnnounce], "{{.Name}}")
	assert.Contains(t, en[config.TKeyAnnounce], "{{.Dosage}}")
}
