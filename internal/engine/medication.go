package engine

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tartampluch/go-medreminder/internal/config"
)

// Status is the outcome recorded when an alarm is acknowledged.
type Status string

const (
	StatusTaken   Status = "taken"
	StatusSkipped Status = "skipped"
)

// Valid reports whether s is one of the two acknowledgment outcomes.
func (s Status) Valid() bool {
	return s == StatusTaken || s == StatusSkipped
}

var (
	ErrClockFormat    = errors.New(config.ErrClockFormat)
	ErrNameRequired   = errors.New(config.ErrNameRequired)
	ErrDosageRequired = errors.New(config.ErrDosageRequired)
	ErrInvalidStatus  = errors.New(config.ErrStatusInvalid)
)

// UserProfile is the single patient record of an install.
type UserProfile struct {
	Name         string `json:"name"`
	Disease      string `json:"disease"`
	BirthDate    string `json:"birthDate"`
	ProfileImage string `json:"profileImage,omitempty"`
}

// Complete reports whether the profile has the fields required to leave the
// profile screen.
func (p UserProfile) Complete() bool {
	return strings.TrimSpace(p.Name) != "" && strings.TrimSpace(p.Disease) != ""
}

// Medication is one scheduled dose. Time is always a valid HH:mm string once
// the medication has passed Validate.
type Medication struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Dosage string   `json:"dosage"`
	Time   string   `json:"time"`
	Days   []string `json:"days"`
	Active bool     `json:"active"`
	Icon   string   `json:"icon"`
}

// AllDays returns a fresh Monday-first slice of every weekday tag.
func AllDays() []string {
	return slices.Clone(config.WeekdayTags)
}

// NewMedication builds a draft with a fresh id and the setup-screen defaults.
func NewMedication(name, dosage, clock string) Medication {
	return Medication{
		ID:     uuid.NewString(),
		Name:   name,
		Dosage: dosage,
		Time:   clock,
		Days:   AllDays(),
		Active: true,
		Icon:   config.DefaultIcon,
	}
}

// NormalizeClock parses an H:mm or HH:mm string and returns it zero-padded.
func NormalizeClock(value string) (string, error) {
	// The hour field accepts one digit, so "8:30" normalizes to "08:30".
	t, err := time.Parse(config.ClockFormat, strings.TrimSpace(value))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrClockFormat, value)
	}
	return t.Format(config.ClockFormat), nil
}

// Validate checks the user-editable fields and normalizes Time and Icon in place.
func (m *Medication) Validate() error {
	m.Name = strings.TrimSpace(m.Name)
	m.Dosage = strings.TrimSpace(m.Dosage)
	if m.Name == "" {
		return ErrNameRequired
	}
	if m.Dosage == "" {
		return ErrDosageRequired
	}
	clock, err := NormalizeClock(m.Time)
	if err != nil {
		return err
	}
	m.Time = clock
	if !slices.Contains(config.MedicationIcons, m.Icon) {
		m.Icon = config.DefaultIcon
	}
	m.Days = normalizeDays(m.Days)
	return nil
}

// ScheduledOn reports whether the medication is due on the given weekday.
// An empty day set means every day.
func (m Medication) ScheduledOn(day time.Weekday) bool {
	if len(m.Days) == 0 {
		return true
	}
	return slices.Contains(m.Days, WeekdayTag(day))
}

// Clone returns a copy that shares no slice memory with m.
func (m Medication) Clone() Medication {
	m.Days = slices.Clone(m.Days)
	return m
}

// WeekdayTag maps a time.Weekday to its stored tag ("Mon".."Sun").
func WeekdayTag(day time.Weekday) string {
	// WeekdayTags is Monday-first, time.Weekday is Sunday-first.
	return config.WeekdayTags[(int(day)+6)%7]
}

// normalizeDays drops unknown tags and duplicates and restores Monday-first order.
func normalizeDays(days []string) []string {
	out := make([]string, 0, len(days))
	for _, tag := range config.WeekdayTags {
		if slices.Contains(days, tag) {
			out = append(out, tag)
		}
	}
	return out
}

// HistoryLog is one immutable ledger entry. Timestamp is Unix milliseconds.
type HistoryLog struct {
	ID             string `json:"id"`
	MedicationName string `json:"medicationName"`
	TimeTaken      string `json:"timeTaken"`
	Status         Status `json:"status"`
	Timestamp      int64  `json:"timestamp"`
}

// NewHistoryLog stamps a ledger entry for med at now. The id is a UUIDv7 so
// that ids sort in creation order.
func NewHistoryLog(med Medication, status Status, now time.Time, timeTaken string) (HistoryLog, error) {
	if !status.Valid() {
		return HistoryLog{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return HistoryLog{}, fmt.Errorf("%s: %w", config.ErrHistoryID, err)
	}
	if timeTaken == "" {
		timeTaken = now.Format(config.TimeTakenFormat)
	}
	return HistoryLog{
		ID:             id.String(),
		MedicationName: med.Name,
		TimeTaken:      timeTaken,
		Status:         status,
		Timestamp:      now.UnixMilli(),
	}, nil
}
