package controller

import (
	"slices"

	"github.com/tartampluch/go-medreminder/internal/config"
	"github.com/tartampluch/go-medreminder/internal/engine"
)

// Screen names the view currently shown. It is never persisted.
type Screen string

const (
	ScreenProfile    Screen = "PROFILE"
	ScreenSettingMed Screen = "SETTING_MED"
	ScreenDashboard  Screen = "DASHBOARD"
	ScreenEditMed    Screen = "EDIT_MED"
	ScreenAlarm      Screen = "ALARM"
	ScreenHistory    Screen = "HISTORY"
)

// Snapshot is an immutable copy of the controller state handed to listeners.
type Snapshot struct {
	Screen      Screen
	Profile     engine.UserProfile
	Medications []engine.Medication
	History     []engine.HistoryLog
	ActiveAlarm *engine.Medication
	EditingID   string
}

// View is what a screen needs to draw itself. Exactly one concrete type
// exists per Screen.
type View interface {
	Screen() Screen
}

type ProfileView struct {
	Profile engine.UserProfile
	// CanLeave is set once a complete profile exists, so the form can offer
	// a way back to the dashboard.
	CanLeave bool
}

type MedicationSetupView struct {
	Draft engine.Medication
}

type DashboardView struct {
	Profile     engine.UserProfile
	Medications []engine.Medication
	ActiveCount int
}

type EditMedicationView struct {
	Medication engine.Medication
}

type AlarmView struct {
	Medication engine.Medication
}

type HistoryView struct {
	History []engine.HistoryLog
}

func (ProfileView) Screen() Screen         { return ScreenProfile }
func (MedicationSetupView) Screen() Screen { return ScreenSettingMed }
func (DashboardView) Screen() Screen       { return ScreenDashboard }
func (EditMedicationView) Screen() Screen  { return ScreenEditMed }
func (AlarmView) Screen() Screen           { return ScreenAlarm }
func (HistoryView) Screen() Screen         { return ScreenHistory }

// Render maps a snapshot to the view to draw. It has no side effects. A
// missing edit target or alarm medication falls back to the dashboard.
func Render(s Snapshot) View {
	switch s.Screen {
	case ScreenProfile:
		return ProfileView{Profile: s.Profile, CanLeave: s.Profile.Complete()}
	case ScreenSettingMed:
		return MedicationSetupView{Draft: DraftMedication()}
	case ScreenEditMed:
		if i := indexOf(s.Medications, s.EditingID); i >= 0 {
			return EditMedicationView{Medication: s.Medications[i].Clone()}
		}
	case ScreenAlarm:
		if s.ActiveAlarm != nil {
			return AlarmView{Medication: s.ActiveAlarm.Clone()}
		}
	case ScreenHistory:
		return HistoryView{History: slices.Clone(s.History)}
	}
	return dashboard(s)
}

// DraftMedication is the blank form state of the setup screen.
func DraftMedication() engine.Medication {
	return engine.Medication{
		Time:   config.DefaultMedicationTime,
		Days:   engine.AllDays(),
		Active: true,
		Icon:   config.DefaultIcon,
	}
}

func dashboard(s Snapshot) DashboardView {
	v := DashboardView{Profile: s.Profile, Medications: cloneMeds(s.Medications)}
	for _, m := range s.Medications {
		if m.Active {
			v.ActiveCount++
		}
	}
	return v
}

func indexOf(meds []engine.Medication, id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(meds, func(m engine.Medication) bool { return m.ID == id })
}

func cloneMeds(meds []engine.Medication) []engine.Medication {
	out := make([]engine.Medication, len(meds))
	for i, m := range meds {
		out[i] = m.Clone()
	}
	return out
}
