package ui

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-medreminder/internal/config"
	"github.com/tartampluch/go-medreminder/internal/controller"
	"github.com/tartampluch/go-medreminder/internal/engine"
)

// profileForm holds the widgets of the profile screen.
type profileForm struct {
	content fyne.CanvasObject

	name    *widget.Entry
	disease *widget.Entry
	birth   *widget.Entry
	save    *widget.Button
	photo   *widget.Button
	back    *widget.Button // nil until a profile exists
	status  *widget.Label
	avatar  *fyne.Container

	image      string
	processing bool
}

func (app *MedReminderApp) buildProfileForm(v controller.ProfileView) *profileForm {
	f := &profileForm{image: v.Profile.ProfileImage}

	f.name = widget.NewEntry()
	f.name.SetText(v.Profile.Name)
	f.name.SetPlaceHolder(app.GetMsg(config.TKeyHintName))

	f.disease = widget.NewEntry()
	f.disease.SetText(v.Profile.Disease)
	f.disease.SetPlaceHolder(app.GetMsg(config.TKeyHintDisease))

	f.birth = widget.NewEntry()
	f.birth.SetText(v.Profile.BirthDate)
	f.birth.SetPlaceHolder(config.PlaceholderBirthDate)
	f.birth.Validator = func(s string) error {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		if _, err := time.Parse(config.DateFormatBirth, strings.TrimSpace(s)); err != nil {
			return errors.New(app.GetMsg(config.TKeyErrBirthDate))
		}
		return nil
	}

	f.status = widget.NewLabel(app.GetMsg(config.TKeyLblProcessing))
	f.status.Hide()

	f.avatar = container.NewStack(app.avatar(f.image))

	f.save = widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnSaveProfile), theme.DocumentSaveIcon(), func() {
		app.submitProfile(f)
	})
	f.save.Importance = widget.HighImportance

	f.name.OnChanged = func(string) { f.refreshSave() }
	f.disease.OnChanged = func(string) { f.refreshSave() }
	f.refreshSave()

	f.photo = widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnPhoto), theme.FileImageIcon(), func() {
		d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
			if err != nil || r == nil {
				return
			}
			app.loadPhoto(f, r)
		}, app.Window)
		d.SetFilter(storage.NewExtensionFileFilter([]string{config.ExtJPG, config.ExtPNG}))
		d.Show()
	})

	itemName := widget.NewFormItem(app.GetMsg(config.TKeyLblName), f.name)
	itemDisease := widget.NewFormItem(app.GetMsg(config.TKeyLblDisease), f.disease)
	itemBirth := widget.NewFormItem(app.GetMsg(config.TKeyLblBirthDate), f.birth)
	itemBirth.HintText = app.GetMsg(config.TKeyHintBirthDate)
	form := widget.NewForm(itemName, itemDisease, itemBirth)

	title := widget.NewLabelWithStyle(app.GetMsg(config.TKeyLblProfile), fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	photoRow := container.NewHBox(f.avatar, container.NewCenter(f.photo))

	actions := []fyne.CanvasObject{f.save}
	if v.CanLeave {
		f.back = widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnBack), theme.NavigateBackIcon(), app.Controller.ShowDashboard)
		actions = []fyne.CanvasObject{f.back, f.save}
	}

	f.content = container.NewVScroll(container.NewPadded(container.NewVBox(
		title,
		photoRow,
		form,
		f.status,
		container.NewGridWithColumns(len(actions), actions...),
	)))
	return f
}

// refreshSave enables Save only for a complete profile with no photo in flight.
func (f *profileForm) refreshSave() {
	if f.processing || strings.TrimSpace(f.name.Text) == "" || strings.TrimSpace(f.disease.Text) == "" {
		f.save.Disable()
		return
	}
	f.save.Enable()
}

func (app *MedReminderApp) submitProfile(f *profileForm) {
	if err := f.birth.Validate(); err != nil {
		dialog.ShowError(err, app.Window)
		return
	}
	p := engine.UserProfile{
		Name:         f.name.Text,
		Disease:      f.disease.Text,
		BirthDate:    strings.TrimSpace(f.birth.Text),
		ProfileImage: f.image,
	}
	if err := app.Controller.SaveProfile(p); err != nil {
		slog.Warn(config.MsgActionFailed,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyError, err)
		dialog.ShowError(err, app.Window)
	}
}

// loadPhoto encodes r off the UI goroutine and swaps the avatar when done.
func (app *MedReminderApp) loadPhoto(f *profileForm, r io.ReadCloser) {
	f.processing = true
	f.status.Show()
	f.refreshSave()

	go func() {
		defer func() { _ = r.Close() }()
		data, err := EncodeProfilePhoto(r)

		fyne.Do(func() {
			f.processing = false
			f.status.Hide()
			if err != nil {
				slog.Warn(config.MsgPhotoFailed,
					config.LogKeyComponent, config.CompUI,
					config.LogKeyError, err)
				dialog.ShowError(err, app.Window)
			} else {
				f.image = data
				f.avatar.Objects = []fyne.CanvasObject{app.avatar(data)}
				f.avatar.Refresh()
			}
			f.refreshSave()
		})
	}()
}

// avatar draws the profile photo, or a placeholder icon.
func (app *MedReminderApp) avatar(dataURL string) fyne.CanvasObject {
	size := fyne.NewSize(config.AvatarSize, config.AvatarSize)
	if dataURL != "" {
		img, err := DecodeProfilePhoto(dataURL)
		if err == nil {
			c := canvas.NewImageFromImage(img)
			c.FillMode = canvas.ImageFillContain
			c.SetMinSize(size)
			return c
		}
		slog.Debug(config.MsgPhotoFailed,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyError, err)
	}
	return container.NewGridWrap(size, widget.NewIcon(theme.AccountIcon()))
}
