package ui

import (
	"log/slog"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-medreminder/internal/config"
	"github.com/tartampluch/go-medreminder/internal/controller"
	"github.com/tartampluch/go-medreminder/internal/engine"
)

type dashboardScreen struct {
	content fyne.CanvasObject

	name    *widget.Label
	disease *widget.Label
	count   *widget.Label
	empty   *widget.Label
	rows    []medicationRow

	add      *widget.Button
	history  *widget.Button
	profile  *widget.Button
	settings *widget.Button
}

type medicationRow struct {
	id     string
	card   *widget.Card
	active *widget.Check
	edit   *widget.Button
}

func (app *MedReminderApp) buildDashboard(v controller.DashboardView) *dashboardScreen {
	d := &dashboardScreen{}

	d.name = widget.NewLabelWithStyle(v.Profile.Name, fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	disease := v.Profile.Disease
	if strings.TrimSpace(disease) == "" {
		disease = app.GetMsg(config.TKeyLblNoDisease)
	}
	d.disease = widget.NewLabel(disease)
	d.count = widget.NewLabel(app.GetMsgWith(config.TKeyLblActiveCount, map[string]any{"Count": v.ActiveCount}))

	header := container.NewBorder(nil, nil, app.avatar(v.Profile.ProfileImage), nil,
		container.NewVBox(d.name, d.disease, d.count))

	list := container.NewVBox()
	for _, m := range v.Medications {
		row := app.buildMedicationRow(m)
		d.rows = append(d.rows, row)
		list.Add(row.card)
	}
	if len(v.Medications) == 0 {
		d.empty = widget.NewLabel(app.GetMsg(config.TKeyLblEmptyMeds))
		d.empty.Wrapping = fyne.TextWrapWord
		list.Add(d.empty)
	}

	d.add = widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnAdd), theme.ContentAddIcon(), app.Controller.RequestAdd)
	d.add.Importance = widget.HighImportance
	d.history = widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnHistory), theme.HistoryIcon(), app.Controller.ViewHistory)
	d.profile = widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnProfile), theme.AccountIcon(), app.Controller.ViewProfile)
	d.settings = widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnSettings), theme.SettingsIcon(), app.ShowSettingsWindow)

	title := widget.NewLabelWithStyle(app.GetMsg(config.TKeyLblMyMeds), fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	top := container.NewVBox(widget.NewCard("", "", header), title)
	bottom := container.NewVBox(
		d.add,
		container.NewGridWithColumns(3, d.history, d.profile, d.settings),
	)

	d.content = container.NewPadded(container.NewBorder(top, bottom, nil, nil, container.NewVScroll(list)))
	return d
}

func (app *MedReminderApp) buildMedicationRow(m engine.Medication) medicationRow {
	row := medicationRow{id: m.ID}

	row.active = widget.NewCheck(app.GetMsg(config.TKeyLblActive), nil)
	row.active.SetChecked(m.Active)
	row.active.OnChanged = func(bool) {
		if err := app.Controller.ToggleActive(m.ID); err != nil {
			slog.Warn(config.MsgActionFailed,
				config.LogKeyComponent, config.CompUI,
				config.LogKeyMedID, m.ID,
				config.LogKeyError, err)
		}
	}

	row.edit = widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnEdit), theme.DocumentCreateIcon(), func() {
		if err := app.Controller.RequestEdit(m.ID); err != nil {
			slog.Warn(config.MsgActionFailed,
				config.LogKeyComponent, config.CompUI,
				config.LogKeyMedID, m.ID,
				config.LogKeyError, err)
		}
	})

	row.card = widget.NewCard(m.Name, app.medicationSubtitle(m),
		container.NewBorder(nil, nil, widget.NewLabel(iconLabel(m.Icon)), container.NewHBox(row.active, row.edit)))
	return row
}

// medicationSubtitle reads "500 mg · at 08:00 · Mon Wed Fri".
func (app *MedReminderApp) medicationSubtitle(m engine.Medication) string {
	parts := []string{
		m.Dosage,
		app.GetMsgWith(config.TKeyLblTimeSuffix, map[string]any{"Time": m.Time}),
	}
	if len(m.Days) > 0 && len(m.Days) < len(config.WeekdayTags) {
		days := make([]string, len(m.Days))
		for i, tag := range m.Days {
			days[i] = app.weekdayLabel(tag)
		}
		parts = append(parts, strings.Join(days, " "))
	}
	return strings.Join(parts, " · ")
}

// iconLabel turns "fa-prescription-bottle" into "Prescription bottle".
func iconLabel(tag string) string {
	s := strings.ReplaceAll(strings.TrimPrefix(tag, "fa-"), "-", " ")
	if s == "" {
		return tag
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
