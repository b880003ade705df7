package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"
	"github.com/tartampluch/go-medreminder/internal/alarm"
	"github.com/tartampluch/go-medreminder/internal/config"
	"github.com/tartampluch/go-medreminder/internal/engine"
	"github.com/tartampluch/go-medreminder/internal/metrics"
	"github.com/tartampluch/go-medreminder/internal/server"
	"github.com/tartampluch/go-medreminder/internal/store"
	"github.com/tartampluch/go-medreminder/internal/ui"
)

// main delegates to runMain so deferred closes run before os.Exit.
func main() {
	os.Exit(runMain())
}

// runMain wires the command tree and maps its outcome to an exit code.
func runMain() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}
	return config.ExitCodeSuccess
}

type rootFlags struct {
	version bool
	debug   bool

	logCloser io.Closer
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           config.CmdRoot,
		Short:         config.CmdDescRoot,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			flags.logCloser = setupLogging(flags.debug)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if flags.logCloser != nil {
				_ = flags.logCloser.Close()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.version {
				printVersion(cmd.OutOrStdout())
				return nil
			}
			logStartupInfo()
			if err := run(cmd.Context()); err != nil {
				return err
			}
			slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
			return nil
		},
	}
	root.PersistentFlags().BoolVar(&flags.debug, config.FlagDebug, false, config.FlagDescDebug)
	root.Flags().BoolVar(&flags.version, config.FlagVersion, false, config.FlagDescVersion)

	root.AddCommand(
		&cobra.Command{
			Use:   config.CmdHistory,
			Short: config.CmdDescHistory,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withStore(cmd.Context(), func(st *store.Store) error {
					writeHistory(cmd.OutOrStdout(), st.LoadHistory(cmd.Context()))
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   config.CmdExport,
			Short: config.CmdDescExport,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withStore(cmd.Context(), func(st *store.Store) error {
					return writeFeed(cmd.OutOrStdout(), st.LoadMedications(cmd.Context()), engine.RealClock{})
				})
			},
		},
	)
	return root
}

// run wires the services and blocks in the UI loop.
func run(ctx context.Context) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}

	a := app.NewWithID(config.AppID)
	a.Preferences().SetString(config.PrefLastRun, config.Version)

	m := metrics.New()
	st, closer, err := store.Open(settings, a.Preferences(), m)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	player := &alarm.CommandTonePlayer{Command: settings.PlayerCommand}
	defer func() { _ = player.Close() }()
	launcher := alarm.NewLauncher(alarm.CommandSpeaker{Command: settings.SpeechCommand}, player, engine.RealClock{}, m)

	var srv *server.FeedServer
	if settings.FeedEnabled {
		port := a.Preferences().StringWithFallback(config.PrefServerPort, config.DefaultPort)
		srv = server.NewFeedServer(port, m.Handler())
	}

	gui := ui.NewMedReminderApp(a, ctx, ui.Services{
		Settings: settings,
		Store:    st,
		Launcher: launcher,
		Server:   srv,
		Importer: &engine.PlanImporter{Fetcher: engine.NewHTTPFetcher()},
	})

	go func() {
		<-ctx.Done()
		slog.Info(config.MsgCtxCancel, config.LogKeyComponent, config.CompMain)
		fyne.Do(a.Quit)
	}()

	gui.Run()
	return nil
}

// withStore opens the configured store for a one-shot command. The Fyne app
// only provides the preferences file; no window is created.
func withStore(ctx context.Context, fn func(*store.Store) error) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}
	a := app.NewWithID(config.AppID)
	st, closer, err := store.Open(settings, a.Preferences(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()
	return fn(st)
}

// writeHistory prints one tab-separated row per dose, newest first.
func writeHistory(w io.Writer, history []engine.HistoryLog) {
	for _, h := range history {
		when := time.UnixMilli(h.Timestamp).Format(config.DateFormatDay) + " " + h.TimeTaken
		_, _ = fmt.Fprintf(w, config.FormatHistoryRow, when, h.Status, h.MedicationName)
	}
}

func writeFeed(w io.Writer, meds []engine.Medication, clock engine.Clock) error {
	data, err := (&engine.FeedBuilder{Clock: clock}).Build(meds)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func printVersion(w io.Writer) {
	_, _ = fmt.Fprintf(w, config.MsgVersionOutput,
		config.AppName,
		config.Version,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyCommit, config.Commit),
			slog.String(config.LogKeyBuildDate, config.Date),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging installs a JSON slog handler writing to stderr and to a log
// file in the user's cache directory. Stdout stays free for command output.
func setupLogging(debugMode bool) io.Closer {
	writers := []io.Writer{os.Stderr}
	var logFile *os.File

	if logPath, err := getLogFilePath(); err == nil {
		// O_TRUNC resets logs on restart.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}))
	slog.SetDefault(logger)

	if logFile == nil {
		return nil
	}
	return logFile
}

func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}
	return filepath.Join(appDir, config.LogFileName), nil
}
