package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-medreminder/internal/config"
	"github.com/zalando/go-keyring"
)

// settingsWidgets holds references to the inputs read back on save.
type settingsWidgets struct {
	langSelect *widget.Select
	feedCheck  *widget.Check
	entryPort  *FilteredEntry
	modeSelect *widget.Select
	urlEntry   *widget.Entry
	userEntry  *widget.Entry
	passEntry  *widget.Entry
	pathEntry  *widget.Entry

	btnSave   *widget.Button
	btnImport *widget.Button
}

// ShowSettingsWindow opens the settings dialog, or focuses it if already open.
func (app *MedReminderApp) ShowSettingsWindow() {
	if app.settingsWindow != nil {
		slog.Debug(config.MsgSettingsFocus, config.LogKeyComponent, config.CompUISet)
		app.settingsWindow.RequestFocus()
		return
	}

	slog.Info(config.MsgSettingsOpen, config.LogKeyComponent, config.CompUISet)
	w := app.App.NewWindow(app.GetMsg(config.TKeyWinSettings))
	app.settingsWindow = w

	sw := app.newSettingsWidgets()

	var refreshLayout func()
	onLayoutChange := func() {
		if refreshLayout != nil {
			refreshLayout()
		}
	}

	itemLang := widget.NewFormItem(app.GetMsg(config.TKeyLblLanguage), sw.langSelect)
	itemLang.HintText = app.GetMsg(config.TKeyHelpLanguage)
	itemPort := widget.NewFormItem(app.GetMsg(config.TKeyLblPort), sw.entryPort)
	itemPort.HintText = app.GetMsg(config.TKeyHelpPort)
	itemFeed := widget.NewFormItem("", sw.feedCheck)
	itemFeed.HintText = app.GetMsg(config.TKeyLblFeedHelp)
	generalCard := widget.NewCard(app.GetMsg(config.TKeyLblGeneral), "", widget.NewForm(itemLang, itemFeed, itemPort))

	planCard := app.buildPlanCard(w, sw, onLayoutChange)

	sw.btnSave = widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnSave), theme.DocumentSaveIcon(), func() {
		if err := sw.entryPort.Validate(); err != nil {
			dialog.ShowError(err, w)
			return
		}
		app.saveSettings(sw)
		w.Close()
	})
	sw.btnSave.Importance = widget.HighImportance
	btnCancel := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnCancel), theme.CancelIcon(), w.Close)

	footer := widget.NewLabelWithStyle(fmt.Sprintf(app.GetMsg(config.TKeyLblFooter), config.Version),
		fyne.TextAlignCenter, fyne.TextStyle{Italic: true})

	content := container.NewPadded(container.NewVBox(
		generalCard,
		planCard,
		container.NewGridWithColumns(config.LayoutColumnsDouble, btnCancel, sw.btnSave),
		footer,
	))

	refreshLayout = func() {
		content.Refresh()
		w.Resize(fyne.NewSize(config.SettingsWindowWidth, content.MinSize().Height))
	}

	w.SetContent(content)
	w.SetFixedSize(true)
	w.SetOnClosed(func() { app.settingsWindow = nil })
	refreshLayout()
	w.Show()
}

// newSettingsWidgets builds the inputs pre-filled from preferences and the keyring.
func (app *MedReminderApp) newSettingsWidgets() *settingsWidgets {
	sw := &settingsWidgets{}

	sw.langSelect = widget.NewSelect(app.SupportedLanguages, nil)
	sw.langSelect.SetSelected(app.Language())

	sw.feedCheck = widget.NewCheck(app.GetMsg(config.TKeyLblFeed), nil)
	sw.feedCheck.SetChecked(app.Preferences.BoolWithFallback(config.PrefFeedEnabled, true))

	sw.entryPort = NewNumericalEntry()
	sw.entryPort.SetText(app.feedPort())
	sw.entryPort.Validator = app.validatePort

	sw.modeSelect = widget.NewSelect([]string{
		app.GetMsg(config.TKeyModeWeb),
		app.GetMsg(config.TKeyModeLocal),
	}, nil)

	sw.urlEntry = widget.NewEntry()
	sw.urlEntry.SetText(app.Preferences.String(config.PrefPlanURL))
	sw.urlEntry.SetPlaceHolder(config.PlaceholderURL)

	sw.userEntry = widget.NewEntry()
	sw.userEntry.SetText(app.Preferences.String(config.PrefPlanUser))

	sw.passEntry = widget.NewPasswordEntry()
	if user := sw.userEntry.Text; user != "" {
		if pwd, err := keyring.Get(config.KeyringService, user); err == nil {
			sw.passEntry.SetText(pwd)
		}
	}

	sw.pathEntry = widget.NewEntry()
	sw.pathEntry.SetText(app.Preferences.String(config.PrefPlanPath))

	return sw
}

func (app *MedReminderApp) validatePort(s string) error {
	if s == "" {
		return errors.New(app.GetMsg(config.TKeyErrPortReq))
	}
	port, err := strconv.Atoi(s)
	if err != nil {
		return errors.New(app.GetMsg(config.TKeyErrPortNum))
	}
	if port < config.MinPort || port > config.MaxPort {
		return errors.New(app.GetMsg(config.TKeyErrPortRange))
	}
	return nil
}

// buildPlanCard constructs the prescription plan source UI.
func (app *MedReminderApp) buildPlanCard(w fyne.Window, sw *settingsWidgets, onLayoutChange func()) *widget.Card {
	browseBtn := widget.NewButton(app.GetMsg(config.TKeyBtnBrowse), func() {
		d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
			if err == nil && r != nil {
				sw.pathEntry.SetText(r.URI().Path())
				_ = r.Close()
			}
		}, w)
		d.SetFilter(storage.NewExtensionFileFilter([]string{config.ExtICS}))
		d.Show()
	})

	webForm := widget.NewForm(
		widget.NewFormItem(app.GetMsg(config.TKeyLblURL), sw.urlEntry),
		widget.NewFormItem(app.GetMsg(config.TKeyLblUser), sw.userEntry),
		widget.NewFormItem(app.GetMsg(config.TKeyLblPass), sw.passEntry),
	)
	localForm := container.NewBorder(nil, nil, nil, browseBtn, sw.pathEntry)

	setVisibility := func(mode string) {
		if mode == app.GetMsg(config.TKeyModeLocal) {
			webForm.Hide()
			localForm.Show()
		} else {
			webForm.Show()
			localForm.Hide()
		}
	}
	sw.modeSelect.OnChanged = func(mode string) {
		setVisibility(mode)
		onLayoutChange()
	}

	if app.Preferences.StringWithFallback(config.PrefPlanMode, config.PlanModeLocal) == config.PlanModeWeb {
		sw.modeSelect.SetSelected(app.GetMsg(config.TKeyModeWeb))
	} else {
		sw.modeSelect.SetSelected(app.GetMsg(config.TKeyModeLocal))
	}
	setVisibility(sw.modeSelect.Selected)

	sw.btnImport = widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnImport), theme.DownloadIcon(), func() {
		app.savePlanSource(sw)
		go func() { _, _ = app.importPlan(app.Ctx) }()
	})

	return widget.NewCard(app.GetMsg(config.TKeyLblPlan), "",
		container.NewVBox(sw.modeSelect, webForm, localForm, sw.btnImport))
}

// savePlanSource persists the plan fields; the password goes to the keyring.
func (app *MedReminderApp) savePlanSource(sw *settingsWidgets) {
	mode := config.PlanModeLocal
	if sw.modeSelect.Selected == app.GetMsg(config.TKeyModeWeb) {
		mode = config.PlanModeWeb
	}
	app.Preferences.SetString(config.PrefPlanMode, mode)
	app.Preferences.SetString(config.PrefPlanURL, sw.urlEntry.Text)
	app.Preferences.SetString(config.PrefPlanUser, sw.userEntry.Text)
	app.Preferences.SetString(config.PrefPlanPath, sw.pathEntry.Text)

	if sw.userEntry.Text != "" && sw.passEntry.Text != "" {
		if err := keyring.Set(config.KeyringService, sw.userEntry.Text, sw.passEntry.Text); err != nil {
			slog.Error(config.MsgPassSaveFail,
				config.LogKeyComponent, config.CompUISet,
				config.LogKeyError, err)
		}
	}
}

// saveSettings persists every field and redraws the main window in the
// selected language. The feed worker picks up port and toggle changes
// through the preference listener.
func (app *MedReminderApp) saveSettings(sw *settingsWidgets) {
	slog.Info(config.MsgSettingsSaved, config.LogKeyComponent, config.CompUISet)

	if sw.langSelect.Selected != "" {
		app.Preferences.SetString(config.PrefLanguage, sw.langSelect.Selected)
	}
	app.Preferences.SetBool(config.PrefFeedEnabled, sw.feedCheck.Checked)
	if sw.entryPort.Text != "" {
		app.Preferences.SetString(config.PrefServerPort, sw.entryPort.Text)
	}
	app.savePlanSource(sw)

	app.UpdateLocalizer()
	app.Window.SetTitle(app.GetMsg(config.TKeyWinTitle))
	app.render(app.Controller.Snapshot())
}
