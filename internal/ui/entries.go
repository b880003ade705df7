package ui

import (
	"unicode/utf8"

	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-medreminder/internal/engine"
)

// clockRunes is the length of an HH:mm value.
const clockRunes = 5

// FilteredEntry is an Entry that drops typed runes rejected by Accept and
// stops growing at MaxRunes. Pasted text bypasses the filter, so forms still
// attach a Validator.
type FilteredEntry struct {
	widget.Entry

	Accept   func(r rune) bool
	MaxRunes int

	keyboard mobile.KeyboardType
}

// NewNumericalEntry accepts digits only and asks mobile devices for a number pad.
func NewNumericalEntry() *FilteredEntry {
	e := &FilteredEntry{Accept: isDigit, keyboard: mobile.NumberKeyboard}
	e.ExtendBaseWidget(e)
	return e
}

// NewClockEntry accepts an HH:mm time.
func NewClockEntry() *FilteredEntry {
	e := &FilteredEntry{
		Accept:   func(r rune) bool { return isDigit(r) || r == ':' },
		MaxRunes: clockRunes,
		keyboard: mobile.NumberKeyboard,
	}
	e.ExtendBaseWidget(e)
	e.Validator = func(s string) error {
		_, err := engine.NormalizeClock(s)
		return err
	}
	return e
}

func (e *FilteredEntry) TypedRune(r rune) {
	if e.Accept != nil && !e.Accept(r) {
		return
	}
	if e.MaxRunes > 0 && utf8.RuneCountInString(e.Text) >= e.MaxRunes {
		return
	}
	e.Entry.TypedRune(r)
}

func (e *FilteredEntry) Keyboard() mobile.KeyboardType {
	return e.keyboard
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
