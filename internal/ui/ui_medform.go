package ui

import (
	"errors"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-medreminder/internal/config"
	"github.com/tartampluch/go-medreminder/internal/engine"
)

// medicationForm serves both the setup and the edit screen.
type medicationForm struct {
	content fyne.CanvasObject

	base    engine.Medication
	editing bool

	name    *widget.Entry
	dosage  *widget.Entry
	clock   *FilteredEntry
	days    *widget.CheckGroup
	icon    *widget.Select
	active  *widget.Check
	errText *widget.Label

	submit *widget.Button
	back   *widget.Button
	delete *widget.Button // edit only

	// confirmDelete is the callback of the delete confirmation dialog.
	confirmDelete func(bool)

	dayTags   map[string]string // label -> tag
	iconNames map[string]string // label -> tag
}

func (app *MedReminderApp) buildMedicationForm(m engine.Medication, editing bool) *medicationForm {
	f := &medicationForm{
		base:      m.Clone(),
		editing:   editing,
		dayTags:   make(map[string]string, len(config.WeekdayTags)),
		iconNames: make(map[string]string, len(config.MedicationIcons)),
	}

	f.name = widget.NewEntry()
	f.name.SetText(m.Name)
	f.name.SetPlaceHolder(app.GetMsg(config.TKeyHintMedName))

	f.dosage = widget.NewEntry()
	f.dosage.SetText(m.Dosage)
	f.dosage.SetPlaceHolder(app.GetMsg(config.TKeyHintDosage))

	f.clock = NewClockEntry()
	f.clock.SetText(m.Time)
	f.clock.SetPlaceHolder(config.DefaultMedicationTime)

	dayLabels := make([]string, len(config.WeekdayTags))
	for i, tag := range config.WeekdayTags {
		label := app.weekdayLabel(tag)
		dayLabels[i] = label
		f.dayTags[label] = tag
	}
	f.days = widget.NewCheckGroup(dayLabels, nil)
	f.days.Horizontal = true
	selected := make([]string, 0, len(m.Days))
	for _, tag := range m.Days {
		selected = append(selected, app.weekdayLabel(tag))
	}
	f.days.SetSelected(selected)

	iconLabels := make([]string, len(config.MedicationIcons))
	for i, tag := range config.MedicationIcons {
		iconLabels[i] = iconLabel(tag)
		f.iconNames[iconLabels[i]] = tag
	}
	f.icon = widget.NewSelect(iconLabels, nil)
	f.icon.SetSelected(iconLabel(m.Icon))

	f.active = widget.NewCheck(app.GetMsg(config.TKeyLblActive), nil)
	f.active.SetChecked(m.Active)

	f.errText = widget.NewLabel(app.GetMsg(config.TKeyErrMedInvalid))
	f.errText.Importance = widget.DangerImportance
	f.errText.Wrapping = fyne.TextWrapWord
	f.errText.Hide()

	titleKey, submitKey := config.TKeyLblNewMed, config.TKeyBtnCreate
	if editing {
		titleKey, submitKey = config.TKeyLblEditMed, config.TKeyBtnUpdate
	}

	f.submit = widget.NewButtonWithIcon(app.GetMsg(submitKey), theme.DocumentSaveIcon(), func() {
		app.submitMedication(f)
	})
	f.submit.Importance = widget.HighImportance
	f.back = widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnBack), theme.NavigateBackIcon(), app.Controller.ShowDashboard)

	form := widget.NewForm(
		widget.NewFormItem(app.GetMsg(config.TKeyLblMedName), f.name),
		widget.NewFormItem(app.GetMsg(config.TKeyLblDosage), f.dosage),
		widget.NewFormItem(app.GetMsg(config.TKeyLblTime), f.clock),
		widget.NewFormItem(app.GetMsg(config.TKeyLblDays), f.days),
		widget.NewFormItem(app.GetMsg(config.TKeyLblIcon), f.icon),
		widget.NewFormItem("", f.active),
	)

	actions := container.NewGridWithColumns(config.LayoutColumnsDouble, f.back, f.submit)
	body := container.NewVBox(
		widget.NewLabelWithStyle(app.GetMsg(titleKey), fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		form,
		f.errText,
		actions,
	)

	if editing {
		f.confirmDelete = func(ok bool) {
			if !ok {
				return
			}
			if err := app.Controller.DeleteMedication(f.base.ID); err != nil {
				slog.Warn(config.MsgActionFailed,
					config.LogKeyComponent, config.CompUI,
					config.LogKeyMedID, f.base.ID,
					config.LogKeyError, err)
			}
		}
		f.delete = widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnDelete), theme.DeleteIcon(), func() {
			dialog.ShowConfirm(
				app.GetMsg(config.TKeyConfirmDelTitle),
				app.GetMsgWith(config.TKeyConfirmDelMsg, map[string]any{"Name": f.base.Name}),
				f.confirmDelete,
				app.Window,
			)
		})
		f.delete.Importance = widget.DangerImportance
		body.Add(f.delete)
	}

	f.content = container.NewVScroll(container.NewPadded(body))
	return f
}

// medication reads the form back into a Medication.
func (f *medicationForm) medication() engine.Medication {
	m := f.base.Clone()
	m.Name = f.name.Text
	m.Dosage = f.dosage.Text
	m.Time = f.clock.Text
	m.Active = f.active.Checked
	m.Icon = f.iconNames[f.icon.Selected]

	m.Days = make([]string, 0, len(f.days.Selected))
	for _, label := range f.days.Selected {
		if tag, ok := f.dayTags[label]; ok {
			m.Days = append(m.Days, tag)
		}
	}
	return m
}

func (app *MedReminderApp) submitMedication(f *medicationForm) {
	m := f.medication()

	var err error
	if f.editing {
		err = app.Controller.UpdateMedication(m)
	} else {
		_, err = app.Controller.CreateMedication(m)
	}
	if err == nil {
		return
	}

	slog.Warn(config.MsgActionFailed,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyError, err)
	if errors.Is(err, engine.ErrNameRequired) || errors.Is(err, engine.ErrDosageRequired) || errors.Is(err, engine.ErrClockFormat) {
		f.errText.Show()
		return
	}
	dialog.ShowError(err, app.Window)
}
