package ui

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-medreminder/internal/config"
	"github.com/tartampluch/go-medreminder/internal/controller"
	"github.com/tartampluch/go-medreminder/internal/engine"
	"github.com/zalando/go-keyring"
)

// -----------------------------------------------------------------------------
// Profile
// -----------------------------------------------------------------------------

func TestProfileForm_SaveEnabledOnlyWhenComplete(t *testing.T) {
	app := setupTestApp(t)
	f := app.buildProfileForm(controller.ProfileView{})

	assert.True(t, f.save.Disabled())
	assert.Nil(t, f.back, "no way back before a profile exists")

	test.Type(f.name, "Somchai")
	assert.True(t, f.save.Disabled(), "disease still missing")

	test.Type(f.disease, "Diabetes")
	assert.False(t, f.save.Disabled())

	f.processing = true
	f.refreshSave()
	assert.True(t, f.save.Disabled(), "disabled while a photo is processed")
}

func TestProfileForm_Submit(t *testing.T) {
	app := setupTestApp(t)
	f := app.buildProfileForm(controller.ProfileView{})
	test.Type(f.name, "Somchai")
	test.Type(f.disease, "Diabetes")

	f.birth.SetText("16/06/1950")
	test.Tap(f.save)
	assert.Equal(t, controller.ScreenProfile, app.Controller.Snapshot().Screen, "bad birth date blocks the save")

	f.birth.SetText("1950-06-16")
	test.Tap(f.save)

	snap := app.Controller.Snapshot()
	assert.Equal(t, controller.ScreenDashboard, snap.Screen)
	assert.Equal(t, "Somchai", snap.Profile.Name)
	assert.Equal(t, "1950-06-16", snap.Profile.BirthDate)
}

func TestProfileForm_BackOnceComplete(t *testing.T) {
	app := setupTestApp(t)
	withProfile(t, app)
	app.Controller.ViewProfile()

	v, ok := controller.Render(app.Controller.Snapshot()).(controller.ProfileView)
	require.True(t, ok)
	f := app.buildProfileForm(v)

	require.NotNil(t, f.back)
	assert.Equal(t, "Somchai", f.name.Text)

	test.Tap(f.back)
	assert.Equal(t, controller.ScreenDashboard, app.Controller.Snapshot().Screen)
}

// -----------------------------------------------------------------------------
// Dashboard
// -----------------------------------------------------------------------------

func TestDashboard_Header(t *testing.T) {
	app := setupTestApp(t)

	d := app.buildDashboard(controller.DashboardView{Profile: engine.UserProfile{Name: "Somchai"}})
	assert.Equal(t, "Somchai", d.name.Text)
	assert.Equal(t, "No condition recorded", d.disease.Text)
	assert.Equal(t, "0 active medication(s)", d.count.Text)
	require.NotNil(t, d.empty)
	assert.Empty(t, d.rows)
}

func TestDashboard_RowsToggleAndEdit(t *testing.T) {
	app := setupTestApp(t)
	withProfile(t, app)
	first := addMedication(t, app, "Metformin", "08:00")
	addMedication(t, app, "Aspirin", "20:00")

	v := controller.Render(app.Controller.Snapshot()).(controller.DashboardView)
	d := app.buildDashboard(v)
	require.Len(t, d.rows, 2)
	assert.Nil(t, d.empty)
	assert.Equal(t, "2 active medication(s)", d.count.Text)
	assert.Equal(t, "Metformin", d.rows[0].card.Title)
	assert.Contains(t, d.rows[0].card.Subtitle, "at 08:00")

	test.Tap(d.rows[0].active)
	assert.False(t, app.Controller.Medications()[0].Active)
	assert.Equal(t, controller.ScreenDashboard, app.Controller.Snapshot().Screen, "toggling stays on the dashboard")

	test.Tap(d.rows[0].edit)
	snap := app.Controller.Snapshot()
	assert.Equal(t, controller.ScreenEditMed, snap.Screen)
	assert.Equal(t, first.ID, snap.EditingID)
}

func TestDashboard_Navigation(t *testing.T) {
	app := setupTestApp(t)
	withProfile(t, app)
	d := app.buildDashboard(controller.DashboardView{})

	test.Tap(d.add)
	assert.Equal(t, controller.ScreenSettingMed, app.Controller.Snapshot().Screen)

	app.Controller.ShowDashboard()
	test.Tap(d.history)
	assert.Equal(t, controller.ScreenHistory, app.Controller.Snapshot().Screen)

	app.Controller.ShowDashboard()
	test.Tap(d.profile)
	assert.Equal(t, controller.ScreenProfile, app.Controller.Snapshot().Screen)
}

func TestMedicationSubtitle_Days(t *testing.T) {
	app := setupTestApp(t)

	m := engine.Medication{Dosage: "1 tablet", Time: "07:30", Days: []string{"Mon", "Fri"}}
	assert.Equal(t, "1 tablet · at 07:30 · Mon Fri", app.medicationSubtitle(m))

	m.Days = engine.AllDays()
	assert.Equal(t, "1 tablet · at 07:30", app.medicationSubtitle(m), "every day needs no day list")
}

func TestIconLabel(t *testing.T) {
	assert.Equal(t, "Pills", iconLabel("fa-pills"))
	assert.Equal(t, "Prescription bottle", iconLabel("fa-prescription-bottle"))
	assert.Equal(t, "fa-", iconLabel("fa-"))
}

// -----------------------------------------------------------------------------
// Medication form
// -----------------------------------------------------------------------------

func TestMedicationForm_Create(t *testing.T) {
	app := setupTestApp(t)
	withProfile(t, app)
	app.Controller.RequestAdd()

	f := app.buildMedicationForm(controller.DraftMedication(), false)
	assert.Nil(t, f.delete, "no delete on the setup screen")
	assert.Len(t, f.days.Selected, len(config.WeekdayTags), "new medications default to every day")

	test.Type(f.name, "Metformin")
	test.Type(f.dosage, "500 mg")
	f.clock.SetText("7:30")
	f.days.SetSelected([]string{"Mon", "Wed"})
	f.icon.SetSelected("Capsules")
	test.Tap(f.submit)

	snap := app.Controller.Snapshot()
	assert.Equal(t, controller.ScreenDashboard, snap.Screen)
	require.Len(t, snap.Medications, 1)
	m := snap.Medications[0]
	assert.Equal(t, "07:30", m.Time)
	assert.Equal(t, []string{"Mon", "Wed"}, m.Days)
	assert.Equal(t, "fa-capsules", m.Icon)
	assert.True(t, m.Active)
	assert.NotEmpty(t, m.ID)
}

func TestMedicationForm_InvalidShowsError(t *testing.T) {
	app := setupTestApp(t)
	withProfile(t, app)
	app.Controller.RequestAdd()

	f := app.buildMedicationForm(controller.DraftMedication(), false)
	assert.False(t, f.errText.Visible())

	test.Type(f.dosage, "500 mg")
	test.Tap(f.submit)

	assert.True(t, f.errText.Visible())
	assert.Empty(t, app.Controller.Medications())
	assert.Equal(t, controller.ScreenSettingMed, app.Controller.Snapshot().Screen, "no transition on validation errors")
}

func TestMedicationForm_EditThenDelete(t *testing.T) {
	app := setupTestApp(t)
	withProfile(t, app)
	m := addMedication(t, app, "Metformin", "08:00")

	require.NoError(t, app.Controller.RequestEdit(m.ID))
	f := app.buildMedicationForm(m, true)
	require.NotNil(t, f.delete)

	f.dosage.SetText("1000 mg")
	test.Tap(f.submit)
	assert.Equal(t, "1000 mg", app.Controller.Medications()[0].Dosage)
	assert.Equal(t, m.ID, app.Controller.Medications()[0].ID)

	require.NoError(t, app.Controller.RequestEdit(m.ID))
	f = app.buildMedicationForm(app.Controller.Medications()[0], true)

	f.confirmDelete(false)
	assert.Len(t, app.Controller.Medications(), 1, "cancelled confirmation keeps the medication")

	f.confirmDelete(true)
	snap := app.Controller.Snapshot()
	assert.Empty(t, snap.Medications)
	assert.Equal(t, controller.ScreenDashboard, snap.Screen)
	assert.Empty(t, snap.EditingID)
}

// -----------------------------------------------------------------------------
// History
// -----------------------------------------------------------------------------

func TestHistoryScreen_EmptyState(t *testing.T) {
	app := setupTestApp(t)

	h := app.buildHistoryScreen(controller.HistoryView{})
	require.NotNil(t, h.empty)
	assert.Equal(t, "No dose recorded yet.", h.empty.Text)
	require.NotNil(t, h.note)
	assert.Contains(t, h.note.Text, "http://127.0.0.1:"+config.DefaultPort+config.RouteCalendar)
}

func TestHistoryScreen_Rows(t *testing.T) {
	app := setupTestApp(t)
	withProfile(t, app)
	app.Controller.ViewHistory()
	history := []engine.HistoryLog{
		{ID: "2", MedicationName: "Aspirin", TimeTaken: "8:01:00 PM", Status: engine.StatusSkipped, Timestamp: 1750100460000},
		{ID: "1", MedicationName: "Metformin", TimeTaken: "8:00:10 AM", Status: engine.StatusTaken, Timestamp: 1750057210000},
	}

	h := app.buildHistoryScreen(controller.HistoryView{History: history})
	assert.Nil(t, h.empty)
	require.Len(t, h.rows, 2)
	assert.Equal(t, "Aspirin", h.rows[0].Title, "newest first, as given")
	assert.Contains(t, h.rows[0].Subtitle, "Skipped")
	assert.Contains(t, h.rows[1].Subtitle, "Taken")
	assert.Contains(t, h.rows[1].Subtitle, "8:00:10 AM")

	test.Tap(h.back)
	assert.Equal(t, controller.ScreenDashboard, app.Controller.Snapshot().Screen)
}

func TestHistoryScreen_NoNoteWhenFeedOff(t *testing.T) {
	app := setupTestApp(t)
	app.Preferences.SetBool(config.PrefFeedEnabled, false)

	h := app.buildHistoryScreen(controller.HistoryView{})
	assert.Nil(t, h.note)
}

// -----------------------------------------------------------------------------
// Settings
// -----------------------------------------------------------------------------

func TestSettings_ValidatePort(t *testing.T) {
	app := setupTestApp(t)

	tests := []struct {
		in      string
		wantErr string
	}{
		{"18081", ""},
		{"", "Port is required"},
		{"abc", "Port must be a number"},
		{"0", "Port must be between 1 and 65535"},
		{"70000", "Port must be between 1 and 65535"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := app.validatePort(tt.in)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestSettings_WindowSingleton(t *testing.T) {
	keyring.MockInit()
	app := setupTestApp(t)

	app.ShowSettingsWindow()
	first := app.settingsWindow
	require.NotNil(t, first)

	app.ShowSettingsWindow()
	assert.Same(t, first, app.settingsWindow, "a second open focuses the existing window")

	first.Close()
	assert.Nil(t, app.settingsWindow)
}

func TestSettings_Save(t *testing.T) {
	keyring.MockInit()
	app := setupTestApp(t)

	sw := app.newSettingsWidgets()
	assert.Equal(t, "en", sw.langSelect.Selected)
	assert.True(t, sw.feedCheck.Checked)
	assert.Equal(t, config.DefaultPort, sw.entryPort.Text)

	sw.langSelect.SetSelected("th")
	sw.feedCheck.SetChecked(false)
	sw.entryPort.SetText("18090")
	sw.modeSelect.SetSelected(app.GetMsg(config.TKeyModeWeb))
	sw.urlEntry.SetText("https://pharmacy.example.com/plan.ics")
	sw.userEntry.SetText("nurse")
	sw.passEntry.SetText("s3cret")

	app.saveSettings(sw)

	assert.Equal(t, "th", app.Preferences.String(config.PrefLanguage))
	assert.False(t, app.Preferences.Bool(config.PrefFeedEnabled))
	assert.Equal(t, "18090", app.Preferences.String(config.PrefServerPort))
	assert.Equal(t, config.PlanModeWeb, app.Preferences.String(config.PrefPlanMode))
	assert.Equal(t, "nurse", app.Preferences.String(config.PrefPlanUser))

	pwd, err := keyring.Get(config.KeyringService, "nurse")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", pwd)

	assert.Equal(t, "ทานแล้ว", app.GetMsg(config.TKeyBtnTaken), "the new language applies immediately")

	reopened := app.newSettingsWidgets()
	assert.Equal(t, "s3cret", reopened.passEntry.Text, "password is read back from the keyring")
}
