// Package alarm runs the audible side of a due dose: a spoken announcement
// and a repeating beep that continue until the alarm is acknowledged.
package alarm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tartampluch/go-medreminder/internal/config"
	"github.com/tartampluch/go-medreminder/internal/engine"
	"github.com/tartampluch/go-medreminder/internal/metrics"
)

// ErrAlreadyAcknowledged is returned by every Acknowledge after the first.
var ErrAlreadyAcknowledged = errors.New(config.ErrAlreadyAcked)

// Launcher holds the alerting dependencies shared by all sessions.
type Launcher struct {
	Speaker      Speaker
	Player       TonePlayer
	Tone         Tone
	ToneInterval time.Duration
	Clock        engine.Clock
	Metrics      *metrics.Metrics

	// Announce returns the spoken text and its voice language.
	Announce func(m engine.Medication) (text, lang string)
	// FormatTime renders HistoryLog.TimeTaken in the UI language.
	FormatTime func(t time.Time) string
}

// NewLauncher returns a launcher with the default tone and English fallbacks.
func NewLauncher(speaker Speaker, player TonePlayer, clock engine.Clock, m *metrics.Metrics) *Launcher {
	return &Launcher{
		Speaker:      speaker,
		Player:       player,
		Tone:         DefaultTone,
		ToneInterval: config.ToneInterval,
		Clock:        clock,
		Metrics:      m,
	}
}

// Session is one alarm in flight.
type Session struct {
	med      engine.Medication
	launcher *Launcher

	cancel context.CancelFunc
	wg     sync.WaitGroup
	done   chan struct{}

	mu    sync.Mutex
	acked bool
}

// Start begins the announcement and the tone loop for med and returns
// immediately. Neither effect gates acknowledgment.
func (l *Launcher) Start(ctx context.Context, med engine.Medication) *Session {
	ctx, cancel := context.WithCancel(ctx)
	s := &Session{med: med.Clone(), launcher: l, cancel: cancel, done: make(chan struct{})}

	l.Metrics.AlarmTriggered()

	if l.Speaker != nil {
		s.wg.Add(1)
		go s.speak(ctx)
	}
	if l.Player != nil {
		s.wg.Add(1)
		go s.beep(ctx)
	}
	go func() {
		s.wg.Wait()
		close(s.done)
	}()
	return s
}

// Medication returns the medication the session was started for.
func (s *Session) Medication() engine.Medication {
	return s.med.Clone()
}

// Acknowledge records the outcome exactly once and tears the session down.
func (s *Session) Acknowledge(status engine.Status) (engine.HistoryLog, error) {
	s.mu.Lock()
	if s.acked {
		s.mu.Unlock()
		return engine.HistoryLog{}, ErrAlreadyAcknowledged
	}

	l := s.launcher
	now := l.now()
	taken := ""
	if l.FormatTime != nil {
		taken = l.FormatTime(now)
	}
	entry, err := engine.NewHistoryLog(s.med, status, now, taken)
	if err != nil {
		s.mu.Unlock()
		return engine.HistoryLog{}, err
	}
	s.acked = true
	s.mu.Unlock()

	l.Metrics.Acknowledged(string(status))
	slog.Info(config.MsgAlarmAcked,
		config.LogKeyComponent, config.CompAlarm,
		config.LogKeyMedID, s.med.ID,
		config.LogKeyAckStatus, string(status))

	s.Close()
	return entry, nil
}

// Close cancels speech and the tone loop without waiting for them, so a
// stuck audio command never delays the caller. It is idempotent and safe on
// a nil session.
func (s *Session) Close() {
	if s == nil || s.cancel == nil {
		return
	}
	s.cancel()
}

// Done is closed once both alerting goroutines have exited.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) speak(ctx context.Context) {
	defer s.wg.Done()
	l := s.launcher

	text, lang := fmt.Sprintf(config.FallbackAnnounce, s.med.Name, s.med.Dosage), config.FallbackSpeechLang
	if l.Announce != nil {
		text, lang = l.Announce(s.med)
	}

	if err := l.Speaker.Speak(ctx, text, lang); err != nil && ctx.Err() == nil {
		l.Metrics.AlertFailed(config.ChannelSpeech)
		slog.Warn(config.MsgSpeechFailed,
			config.LogKeyComponent, config.CompAlarm,
			config.LogKeyLang, lang,
			config.LogKeyError, err)
	}
}

func (s *Session) beep(ctx context.Context) {
	defer s.wg.Done()
	l := s.launcher
	log := slog.With(config.LogKeyComponent, config.CompAlarm)

	interval := l.ToneInterval
	if interval <= 0 {
		interval = config.ToneInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := l.Player.Play(ctx, l.Tone); err != nil && ctx.Err() == nil {
			l.Metrics.AlertFailed(config.ChannelTone)
			if errors.Is(err, ErrAudioUnavailable) {
				log.Warn(config.MsgToneDisabled, config.LogKeyError, err)
				return
			}
			log.Warn(config.MsgToneFailed, config.LogKeyError, err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (l *Launcher) now() time.Time {
	if l.Clock == nil {
		return time.Now()
	}
	return l.Clock.Now()
}
