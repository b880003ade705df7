package engine_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-medreminder/internal/config"
	"github.com/tartampluch/go-medreminder/internal/engine"
)

// monday is 2025-06-16 08:00 local.
var monday = time.Date(2025, 6, 16, 8, 0, 0, 0, time.Local)

func TestNewMedication_Defaults(t *testing.T) {
	m := engine.NewMedication("Metformin", "500mg", "08:00")

	_, err := uuid.Parse(m.ID)
	require.NoError(t, err)
	assert.Equal(t, config.WeekdayTags, m.Days)
	assert.True(t, m.Active)
	assert.Equal(t, config.DefaultIcon, m.Icon)

	other := engine.NewMedication("Metformin", "500mg", "08:00")
	assert.NotEqual(t, m.ID, other.ID, "ids must be unique")
}

func TestMedication_Validate(t *testing.T) {
	tests := []struct {
		name    string
		med     engine.Medication
		wantErr error
		want    string
	}{
		{"valid", engine.Medication{Name: "A", Dosage: "1", Time: "08:30"}, nil, "08:30"},
		{"single digit hour is padded", engine.Medication{Name: "A", Dosage: "1", Time: "8:30"}, nil, "08:30"},
		{"missing name", engine.Medication{Name: "  ", Dosage: "1", Time: "08:30"}, engine.ErrNameRequired, ""},
		{"missing dosage", engine.Medication{Name: "A", Dosage: "", Time: "08:30"}, engine.ErrDosageRequired, ""},
		{"hour out of range", engine.Medication{Name: "A", Dosage: "1", Time: "24:00"}, engine.ErrClockFormat, ""},
		{"not a clock", engine.Medication{Name: "A", Dosage: "1", Time: "noon"}, engine.ErrClockFormat, ""},
		{"seconds", engine.Medication{Name: "A", Dosage: "1", Time: "08:30:00"}, engine.ErrClockFormat, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.med
			err := m.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Time)
		})
	}
}

func TestMedication_ValidateNormalizesIconAndDays(t *testing.T) {
	m := engine.Medication{Name: "A", Dosage: "1", Time: "09:00", Icon: "fa-unknown", Days: []string{"Sun", "Mon", "Mon", "Funday"}}
	require.NoError(t, m.Validate())

	assert.Equal(t, config.DefaultIcon, m.Icon)
	assert.Equal(t, []string{"Mon", "Sun"}, m.Days)
}

func TestMedication_ScheduledOn(t *testing.T) {
	m := engine.Medication{Days: []string{"Mon", "Wed"}}
	assert.True(t, m.ScheduledOn(time.Monday))
	assert.True(t, m.ScheduledOn(time.Wednesday))
	assert.False(t, m.ScheduledOn(time.Sunday))

	every := engine.Medication{}
	for d := time.Sunday; d <= time.Saturday; d++ {
		assert.True(t, every.ScheduledOn(d), "empty day set means every day (%s)", d)
	}
}

func TestWeekdayTag(t *testing.T) {
	assert.Equal(t, "Sun", engine.WeekdayTag(time.Sunday))
	assert.Equal(t, "Mon", engine.WeekdayTag(time.Monday))
	assert.Equal(t, "Sat", engine.WeekdayTag(time.Saturday))
}

func TestMedication_CloneIsDeep(t *testing.T) {
	m := engine.NewMedication("A", "1", "08:00")
	c := m.Clone()
	c.Days[0] = "Sun"
	assert.Equal(t, "Mon", m.Days[0])
}

func TestMedication_JSONRoundTrip(t *testing.T) {
	m := engine.NewMedication("Aspirin", "81mg", "21:15")
	m.Days = []string{"Tue", "Thu"}
	m.Icon = "fa-vial"

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"id", "name", "dosage", "time", "days", "active", "icon"} {
		assert.Contains(t, raw, key)
	}

	var back engine.Medication
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, m, back)
}

func TestUserProfile_JSONShape(t *testing.T) {
	data, err := json.Marshal(engine.UserProfile{Name: "Somchai", Disease: "Diabetes", BirthDate: "1950-03-01"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Somchai","disease":"Diabetes","birthDate":"1950-03-01"}`, string(data))
}

func TestUserProfile_Complete(t *testing.T) {
	assert.True(t, engine.UserProfile{Name: "A", Disease: "B"}.Complete())
	assert.False(t, engine.UserProfile{Name: "A", Disease: " "}.Complete())
	assert.False(t, engine.UserProfile{Disease: "B"}.Complete())
}

func TestNewHistoryLog(t *testing.T) {
	med := engine.NewMedication("Metformin", "500mg", "08:00")

	log, err := engine.NewHistoryLog(med, engine.StatusTaken, monday, "08:00:12")
	require.NoError(t, err)

	id, err := uuid.Parse(log.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.Equal(t, "Metformin", log.MedicationName)
	assert.Equal(t, "08:00:12", log.TimeTaken)
	assert.Equal(t, engine.StatusTaken, log.Status)
	assert.Equal(t, monday.UnixMilli(), log.Timestamp)
}

func TestNewHistoryLog_DefaultsTimeTaken(t *testing.T) {
	log, err := engine.NewHistoryLog(engine.Medication{Name: "A"}, engine.StatusSkipped, monday, "")
	require.NoError(t, err)
	assert.Equal(t, "08:00:00", log.TimeTaken)
}

func TestNewHistoryLog_RejectsUnknownStatus(t *testing.T) {
	_, err := engine.NewHistoryLog(engine.Medication{Name: "A"}, engine.Status("snoozed"), monday, "")
	assert.ErrorIs(t, err, engine.ErrInvalidStatus)
}
