package ui_test

import (
	"testing"

	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/tartampluch/go-medreminder/internal/ui"
)

func TestNumericalEntry_TypedRune(t *testing.T) {
	entry := ui.NewNumericalEntry()
	window := test.NewWindow(entry)
	defer window.Close()

	tests := []struct {
		name     string
		input    rune
		accepted bool
	}{
		{"Digit_Zero", '0', true},
		{"Digit_Nine", '9', true},
		{"Letter_a", 'a', false},
		{"Symbol_Colon", ':', false},
		{"Symbol_Space", ' ', false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry.SetText("")
			test.Type(entry, string(tt.input))

			if tt.accepted {
				assert.Equal(t, string(tt.input), entry.Text)
			} else {
				assert.Empty(t, entry.Text)
			}
		})
	}
}

func TestEntries_Keyboard(t *testing.T) {
	assert.Equal(t, mobile.NumberKeyboard, ui.NewNumericalEntry().Keyboard())
	assert.Equal(t, mobile.NumberKeyboard, ui.NewClockEntry().Keyboard())
}

func TestClockEntry_FiltersAndCaps(t *testing.T) {
	entry := ui.NewClockEntry()
	window := test.NewWindow(entry)
	defer window.Close()

	test.Type(entry, "0a8:3x0:15")

	assert.Equal(t, "08:30", entry.Text, "letters dropped, input capped at HH:mm")
	assert.NoError(t, entry.Validate())
}

func TestClockEntry_Validator(t *testing.T) {
	entry := ui.NewClockEntry()

	entry.SetText("7:05")
	assert.NoError(t, entry.Validate(), "single-digit hour is accepted")

	entry.SetText("25:00")
	assert.Error(t, entry.Validate())

	entry.SetText("")
	assert.Error(t, entry.Validate())
}

func TestFilteredEntry_DirectSetTextBypassesFilter(t *testing.T) {
	entry := ui.NewNumericalEntry()

	entry.SetText("abc")
	assert.Equal(t, "abc", entry.Text, "SetText is not filtered; validation happens separately")
}
