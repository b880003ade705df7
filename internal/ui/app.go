package ui

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"sync/atomic"

	"fyne.io/fyne/v2"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/robfig/cron/v3"
	"github.com/tartampluch/go-medreminder/internal/alarm"
	"github.com/tartampluch/go-medreminder/internal/config"
	"github.com/tartampluch/go-medreminder/internal/controller"
	"github.com/tartampluch/go-medreminder/internal/engine"
	"github.com/tartampluch/go-medreminder/internal/server"
	"github.com/tartampluch/go-medreminder/internal/store"
	"github.com/zalando/go-keyring"
)

//go:embed Icon.png
var appIconData []byte

// Services are the collaborators built by main. Any of them may be nil:
// a nil Store keeps records in memory, a nil Launcher runs silent alarms
// and a nil Server disables the caregiver feed.
type Services struct {
	Settings *config.Settings
	Store    *store.Store
	Launcher *alarm.Launcher
	Server   *server.FeedServer
	Importer *engine.PlanImporter
}

// MedReminderApp owns the main window and the background services around
// the controller.
type MedReminderApp struct {
	App         fyne.App
	Window      fyne.Window
	Preferences fyne.Preferences
	I18nBundle  *i18n.Bundle
	Ctx         context.Context

	Settings   *config.Settings
	Controller *controller.Controller
	Scheduler  *engine.Scheduler
	Server     *server.FeedServer
	Importer   *engine.PlanImporter
	Feed       *engine.FeedBuilder
	Clock      engine.Clock

	SupportedLanguages []string
	configChan         chan struct{}

	localizer      atomic.Pointer[i18n.Localizer]
	settingsWindow fyne.Window

	// UI goroutine only.
	stopPulse   func()
	lastAlarmID string
}

// NewMedReminderApp loads the records, builds the controller and renders the
// startup screen. Nothing runs in the background until Run.
func NewMedReminderApp(a fyne.App, ctx context.Context, svc Services) *MedReminderApp {
	a.SetIcon(fyne.NewStaticResource(config.IconFile, appIconData))

	settings := svc.Settings
	if settings == nil {
		settings = &config.Settings{
			StoreBackend: config.StoreBackendPreferences,
			TickInterval: config.DefaultTickInterval,
			FeedEnabled:  true,
			SummarySpec:  config.DefaultSummarySpec,
		}
	}

	app := &MedReminderApp{
		App:                a,
		Preferences:        a.Preferences(),
		Ctx:                ctx,
		Settings:           settings,
		Server:             svc.Server,
		Importer:           svc.Importer,
		Clock:              engine.RealClock{},
		SupportedLanguages: config.SupportedLanguages,
		configChan:         make(chan struct{}, config.ChannelBufferSize),
	}
	if app.Importer == nil {
		app.Importer = &engine.PlanImporter{Fetcher: engine.NewHTTPFetcher()}
	}
	app.Feed = &engine.FeedBuilder{Clock: app.Clock}

	app.SetupI18n()

	var starter controller.AlarmStarter
	if l := svc.Launcher; l != nil {
		l.Announce = app.announce
		l.FormatTime = app.formatTimeTaken
		starter = func(ctx context.Context, med engine.Medication) controller.AlarmSession {
			return l.Start(ctx, med)
		}
	}

	var persister controller.Persister
	var records controller.Records
	if svc.Store != nil {
		persister = svc.Store
		records = controller.Records{
			Profile:     svc.Store.LoadProfile(ctx),
			Medications: svc.Store.LoadMedications(ctx),
			History:     svc.Store.LoadHistory(ctx),
		}
	}
	app.Controller = controller.New(ctx, persister, starter, records)

	app.Scheduler = engine.NewScheduler(app.Clock, engine.MedicationSourceFunc(app.Controller.Medications), app.Controller.Trigger)
	app.Scheduler.Interval = settings.TickInterval

	app.Window = a.NewWindow(app.GetMsg(config.TKeyWinTitle))
	app.Window.Resize(fyne.NewSize(config.MainWindowWidth, config.MainWindowHeight))
	app.Window.SetMaster()

	app.Controller.Subscribe(app.onChange)
	snap := app.Controller.Snapshot()
	app.publish(snap)
	app.render(snap)

	return app
}

// Run starts the scheduler, the caregiver feed and the summary job, then
// blocks in the Fyne event loop.
func (app *MedReminderApp) Run() {
	app.watchPreferences()

	go app.Scheduler.Run(app.Ctx)
	go app.feedWorker()
	app.startSummaryJob()

	app.Window.SetOnClosed(app.Controller.Close)
	app.Window.Show()
	app.App.Run()
}

// onChange runs under the controller's intent lock, possibly off the UI
// goroutine. Drawing is handed to fyne.Do.
func (app *MedReminderApp) onChange(s controller.Snapshot) {
	app.publish(s)
	fyne.Do(func() { app.render(s) })
}

// render swaps the window content for the view of s.
func (app *MedReminderApp) render(s controller.Snapshot) {
	view := controller.Render(s)

	if app.stopPulse != nil {
		app.stopPulse()
		app.stopPulse = nil
	}
	app.Window.SetContent(app.buildScreen(view))

	alarmView, alarmOn := view.(controller.AlarmView)
	app.Window.SetFullScreen(alarmOn)
	if !alarmOn {
		app.lastAlarmID = ""
		return
	}
	if alarmView.Medication.ID == app.lastAlarmID {
		return
	}
	app.lastAlarmID = alarmView.Medication.ID
	app.Window.RequestFocus()
	app.App.SendNotification(fyne.NewNotification(
		config.AppName,
		app.GetMsgWith(config.TKeyNotifAlarm, map[string]any{"Name": alarmView.Medication.Name}),
	))
	slog.Info(config.MsgAlarmShown,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyMedID, alarmView.Medication.ID)
}

func (app *MedReminderApp) buildScreen(view controller.View) fyne.CanvasObject {
	switch v := view.(type) {
	case controller.ProfileView:
		return app.buildProfileForm(v).content
	case controller.MedicationSetupView:
		return app.buildMedicationForm(v.Draft, false).content
	case controller.EditMedicationView:
		return app.buildMedicationForm(v.Medication, true).content
	case controller.AlarmView:
		return app.buildAlarmScreen(v).content
	case controller.HistoryView:
		return app.buildHistoryScreen(v).content
	case controller.DashboardView:
		return app.buildDashboard(v).content
	}
	return app.buildDashboard(controller.DashboardView{}).content
}

// publish refreshes the caregiver feed from s.
func (app *MedReminderApp) publish(s controller.Snapshot) {
	if app.Server == nil {
		return
	}
	if err := app.Server.Publish(app.Feed, s.Profile, s.Medications, s.History); err != nil {
		slog.Error(config.MsgFeedFailed,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyError, err)
	}
}

// watchPreferences wakes the feed worker on any preference change.
func (app *MedReminderApp) watchPreferences() {
	app.Preferences.AddChangeListener(func() {
		select {
		case app.configChan <- struct{}{}:
		default:
		}
	})
}

func (app *MedReminderApp) feedEnabled() bool {
	return app.Settings.FeedEnabled && app.Preferences.BoolWithFallback(config.PrefFeedEnabled, true)
}

func (app *MedReminderApp) feedPort() string {
	return app.Preferences.StringWithFallback(config.PrefServerPort, config.DefaultPort)
}

// feedWorker keeps the caregiver feed listening on the configured port and
// restarts it when the port or the enabled flag changes.
func (app *MedReminderApp) feedWorker() {
	if app.Server == nil {
		return
	}
	log := slog.With(config.LogKeyComponent, config.CompServer)

	var current *feedRun
	apply := func() {
		enabled, port := app.feedEnabled(), app.feedPort()
		if current != nil && enabled && port == current.port {
			return
		}
		if current != nil {
			log.Info(config.MsgFeedRestart, config.LogKeyPort, current.port)
			current.stop()
			current = nil
		}
		if !enabled {
			log.Info(config.MsgFeedDisabled)
			return
		}
		current = app.startFeed(port)
	}

	apply()
	for {
		select {
		case <-app.Ctx.Done():
			if current != nil {
				current.stop()
			}
			return
		case <-app.configChan:
			apply()
		}
	}
}

// feedRun is one listening session of the caregiver feed.
type feedRun struct {
	port   string
	cancel context.CancelFunc
	done   chan struct{}
}

// startFeed serves the feed on port until the returned run is stopped.
func (app *MedReminderApp) startFeed(port string) *feedRun {
	ctx, cancel := context.WithCancel(app.Ctx)
	run := &feedRun{port: port, cancel: cancel, done: make(chan struct{})}
	app.Server.Port = port

	go func() {
		defer close(run.done)
		if err := app.Server.Start(ctx); err != nil {
			slog.Error(config.ErrServerStartup,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err)
			app.App.SendNotification(fyne.NewNotification(
				config.TitleStartupError,
				fmt.Sprintf(config.MsgPortBusy, port)))
		}
	}()
	return run
}

// stop returns once the listener is closed, so the port can be bound again.
func (r *feedRun) stop() {
	r.cancel()
	<-r.done
}

// startSummaryJob schedules the daily adherence notification. An invalid
// spec disables the job.
func (app *MedReminderApp) startSummaryJob() *cron.Cron {
	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(app.Settings.SummarySpec, func() { app.sendDailySummary() }); err != nil {
		slog.Error(config.ErrCronSpec,
			config.LogKeyComponent, config.CompScheduler,
			config.LogKeyValue, app.Settings.SummarySpec,
			config.LogKeyError, err)
		return nil
	}
	c.Start()
	go func() {
		<-app.Ctx.Done()
		<-c.Stop().Done()
	}()
	return c
}

// sendDailySummary notifies today's taken and skipped counts.
func (app *MedReminderApp) sendDailySummary() engine.DailySummary {
	sum := engine.Summarize(app.Controller.Snapshot().History, app.Clock.Now())
	body := app.GetMsgWith(config.TKeyNotifSummaryBody, map[string]any{
		"Taken":   sum.Taken,
		"Skipped": sum.Skipped,
	})
	app.App.SendNotification(fyne.NewNotification(app.GetMsg(config.TKeyNotifSummary), body))
	slog.Info(config.MsgSummarySent,
		config.LogKeyComponent, config.CompScheduler,
		config.LogKeyTaken, sum.Taken,
		config.LogKeySkipped, sum.Skipped)
	return sum
}

// loadPlanSource assembles the import source from preferences and the keyring.
func (app *MedReminderApp) loadPlanSource() engine.PlanSource {
	src := engine.PlanSource{
		Mode:      app.Preferences.StringWithFallback(config.PrefPlanMode, config.PlanModeLocal),
		LocalPath: app.Preferences.String(config.PrefPlanPath),
		WebURL:    app.Preferences.String(config.PrefPlanURL),
		WebUser:   app.Preferences.String(config.PrefPlanUser),
	}
	if src.WebUser != "" {
		if p, err := keyring.Get(config.KeyringService, src.WebUser); err == nil {
			src.WebPass = p
		} else {
			slog.Debug(config.MsgPassFail,
				config.LogKeyUser, src.WebUser,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUI)
		}
	}
	return src
}

// importPlan appends the medications of the configured plan and reports the
// outcome as a notification.
func (app *MedReminderApp) importPlan(ctx context.Context) (int, error) {
	meds, err := app.Importer.Import(ctx, app.loadPlanSource())
	if err != nil {
		slog.Error(config.MsgImportFailed,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyError, err)
		app.App.SendNotification(fyne.NewNotification(config.AppName, app.GetMsg(config.TKeyNotifImportErr)))
		return 0, err
	}

	added := app.Controller.ImportMedications(meds)
	app.App.SendNotification(fyne.NewNotification(config.AppName,
		app.GetMsgWith(config.TKeyNotifImportOK, map[string]any{"Count": added})))
	return added, nil
}
