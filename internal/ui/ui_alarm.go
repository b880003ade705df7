package ui

import (
	"image/color"
	"log/slog"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-medreminder/internal/config"
	"github.com/tartampluch/go-medreminder/internal/controller"
	"github.com/tartampluch/go-medreminder/internal/engine"
)

var (
	pulseDim    = color.NRGBA{R: 0xb7, G: 0x1c, B: 0x1c, A: 0xff}
	pulseBright = color.NRGBA{R: 0xe5, G: 0x39, B: 0x35, A: 0xff}
)

type alarmScreen struct {
	content    fyne.CanvasObject
	background *canvas.Rectangle
	name       *canvas.Text
	taken      *widget.Button
	skipped    *widget.Button
}

// buildAlarmScreen draws the full-screen alarm and starts its pulse. The
// pulse stops on the next render.
func (app *MedReminderApp) buildAlarmScreen(v controller.AlarmView) *alarmScreen {
	s := &alarmScreen{background: canvas.NewRectangle(pulseDim)}

	title := canvas.NewText(app.GetMsg(config.TKeyAlarmTitle), color.White)
	title.TextSize = config.AlarmTitleSize
	title.Alignment = fyne.TextAlignCenter

	s.name = canvas.NewText(v.Medication.Name, color.White)
	s.name.TextSize = config.AlarmTitleSize * 1.5
	s.name.TextStyle = fyne.TextStyle{Bold: true}
	s.name.Alignment = fyne.TextAlignCenter

	dosage := canvas.NewText(app.GetMsgWith(config.TKeyAlarmDosage, map[string]any{"Dosage": v.Medication.Dosage}), color.White)
	dosage.TextSize = config.AlarmTitleSize * 0.75
	dosage.Alignment = fyne.TextAlignCenter

	clock := canvas.NewText(v.Medication.Time, color.White)
	clock.TextSize = config.AlarmTitleSize
	clock.Alignment = fyne.TextAlignCenter

	s.taken = widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnTaken), theme.ConfirmIcon(), func() {
		app.acknowledge(engine.StatusTaken)
	})
	s.taken.Importance = widget.SuccessImportance
	s.skipped = widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnSkipped), theme.CancelIcon(), func() {
		app.acknowledge(engine.StatusSkipped)
	})
	s.skipped.Importance = widget.WarningImportance

	body := container.NewVBox(
		title,
		clock,
		s.name,
		dosage,
		container.NewGridWithColumns(config.LayoutColumnsDouble, s.skipped, s.taken),
	)
	s.content = container.NewStack(s.background, container.NewCenter(container.NewPadded(body)))

	app.startPulse(s.background)
	return s
}

func (app *MedReminderApp) acknowledge(status engine.Status) {
	if _, err := app.Controller.AcknowledgeAlarm(status); err != nil {
		slog.Warn(config.MsgActionFailed,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyAckStatus, string(status),
			config.LogKeyError, err)
	}
}

// startPulse alternates bg between two reds every AlarmPulseInterval until
// app.stopPulse is called or the app context ends.
func (app *MedReminderApp) startPulse(bg *canvas.Rectangle) {
	if app.stopPulse != nil {
		app.stopPulse()
	}
	done := make(chan struct{})
	var once sync.Once
	app.stopPulse = func() { once.Do(func() { close(done) }) }

	go func() {
		ticker := time.NewTicker(config.AlarmPulseInterval)
		defer ticker.Stop()
		bright := false
		for {
			select {
			case <-done:
				return
			case <-app.Ctx.Done():
				return
			case <-ticker.C:
				bright = !bright
				fill := color.Color(pulseDim)
				if bright {
					fill = pulseBright
				}
				fyne.Do(func() {
					bg.FillColor = fill
					bg.Refresh()
				})
			}
		}
	}()
}
