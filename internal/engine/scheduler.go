package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tartampluch/go-medreminder/internal/config"
)

// MedicationSource supplies the current medication collection on each tick.
type MedicationSource interface {
	Medications() []Medication
}

// MedicationSourceFunc adapts a plain function to MedicationSource.
type MedicationSourceFunc func() []Medication

func (f MedicationSourceFunc) Medications() []Medication { return f() }

// Scheduler polls the clock and hands due medications to OnTrigger at most
// once per wall-clock minute. The guard lives in memory only, so a restart
// re-arms the current minute.
type Scheduler struct {
	Clock     Clock
	Source    MedicationSource
	OnTrigger func(TriggerEvent)
	Interval  time.Duration

	mu          sync.Mutex
	lastHandled string
}

// NewScheduler wires a scheduler with the default tick interval.
func NewScheduler(clock Clock, src MedicationSource, onTrigger func(TriggerEvent)) *Scheduler {
	return &Scheduler{
		Clock:     clock,
		Source:    src,
		OnTrigger: onTrigger,
		Interval:  config.DefaultTickInterval,
	}
}

// Tick evaluates the current minute once. It reports whether a trigger fired.
// The guard is updated before OnTrigger runs so a slow handler cannot cause a
// second alarm for the same minute.
func (s *Scheduler) Tick() bool {
	now := s.Clock.Now()

	s.mu.Lock()
	ev, ok := Evaluate(now, s.Source.Medications(), s.lastHandled)
	if ok {
		s.lastHandled = ev.Minute
	}
	s.mu.Unlock()

	if !ok {
		return false
	}

	slog.Info(config.MsgTrigger,
		config.LogKeyComponent, config.CompScheduler,
		config.LogKeyMinute, ev.Minute,
		config.LogKeyMedID, ev.Medication.ID,
		config.LogKeyMedName, ev.Medication.Name)

	if s.OnTrigger != nil {
		s.OnTrigger(ev)
	}
	return true
}

// LastHandled returns the most recent minute that raised an alarm.
func (s *Scheduler) LastHandled() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastHandled
}

// Run ticks until ctx is cancelled. The first evaluation happens immediately.
func (s *Scheduler) Run(ctx context.Context) {
	log := slog.With(config.LogKeyComponent, config.CompScheduler)

	interval := s.Interval
	if interval <= 0 {
		interval = config.DefaultTickInterval
	}

	s.Tick()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info(config.MsgSchedulerStart, config.LogKeyInterval, interval)

	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgSchedulerStop)
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}
