package ui

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-medreminder/internal/config"
	"github.com/tartampluch/go-medreminder/internal/controller"
	"github.com/tartampluch/go-medreminder/internal/engine"
)

type historyScreen struct {
	content fyne.CanvasObject
	rows    []*widget.Card
	empty   *widget.Label
	note    *widget.Label // nil when the feed is off
	back    *widget.Button
}

func (app *MedReminderApp) buildHistoryScreen(v controller.HistoryView) *historyScreen {
	h := &historyScreen{}

	list := container.NewVBox()
	for _, entry := range v.History {
		card := widget.NewCard(entry.MedicationName, app.historySubtitle(entry), nil)
		h.rows = append(h.rows, card)
		list.Add(card)
	}
	if len(v.History) == 0 {
		h.empty = widget.NewLabelWithStyle(app.GetMsg(config.TKeyLblEmptyHistory), fyne.TextAlignCenter, fyne.TextStyle{Italic: true})
		list.Add(h.empty)
	}

	h.back = widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnBack), theme.NavigateBackIcon(), app.Controller.ShowDashboard)

	bottom := container.NewVBox()
	if app.Server != nil && app.feedEnabled() {
		url := fmt.Sprintf(config.FeedURLFormat, app.feedPort())
		h.note = widget.NewLabel(app.GetMsgWith(config.TKeyLblCaregiver, map[string]any{"URL": url}))
		h.note.Wrapping = fyne.TextWrapWord
		h.note.TextStyle = fyne.TextStyle{Italic: true}
		bottom.Add(h.note)
	}
	bottom.Add(h.back)

	title := widget.NewLabelWithStyle(app.GetMsg(config.TKeyLblHistory), fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	h.content = container.NewPadded(container.NewBorder(title, bottom, nil, nil, container.NewVScroll(list)))
	return h
}

// historySubtitle reads "Taken · 08:01:12 · 2025-06-16".
func (app *MedReminderApp) historySubtitle(entry engine.HistoryLog) string {
	day := time.UnixMilli(entry.Timestamp).Format(config.DateFormatDay)
	return app.statusLabel(entry.Status) + " · " + entry.TimeTaken + " · " + day
}
