// Package controller owns the application state: the current screen, the
// alarm in flight, the edit target and the three persisted records. Every
// change goes through an intent method; intents are serialized so the
// scheduler and the UI can call in from different goroutines.
package controller

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/tartampluch/go-medreminder/internal/alarm"
	"github.com/tartampluch/go-medreminder/internal/config"
	"github.com/tartampluch/go-medreminder/internal/engine"
)

var (
	ErrProfileIncomplete  = errors.New(config.ErrProfileIncomplete)
	ErrMedicationNotFound = errors.New(config.ErrMedNotFound)
	ErrNoActiveAlarm      = errors.New(config.ErrNoActiveAlarm)
)

// Persister saves records. Implementations handle their own failures.
type Persister interface {
	SaveProfile(ctx context.Context, p engine.UserProfile)
	SaveMedications(ctx context.Context, meds []engine.Medication)
	SaveHistory(ctx context.Context, h []engine.HistoryLog)
}

// AlarmSession is the running alert for one due medication.
type AlarmSession interface {
	Acknowledge(status engine.Status) (engine.HistoryLog, error)
	Close()
}

// AlarmStarter begins an alarm session for med.
type AlarmStarter func(ctx context.Context, med engine.Medication) AlarmSession

// Listener receives a snapshot after every state change. It is called with
// the intent lock held and must not call back into the controller
// synchronously.
type Listener func(Snapshot)

// Records is the persisted state loaded at startup.
type Records struct {
	Profile     engine.UserProfile
	Medications []engine.Medication
	History     []engine.HistoryLog
}

type dirty uint8

const (
	dirtyProfile dirty = 1 << iota
	dirtyMedications
	dirtyHistory
)

type state struct {
	screen      Screen
	profile     engine.UserProfile
	medications []engine.Medication
	history     []engine.HistoryLog
	activeAlarm *engine.Medication
	editingID   string
}

// Controller is safe for concurrent use.
type Controller struct {
	ctx        context.Context
	persist    Persister
	startAlarm AlarmStarter

	intentMu sync.Mutex // single writer

	mu      sync.RWMutex // guards st and session
	st      state
	session AlarmSession

	listenersMu sync.Mutex
	listeners   map[int]Listener
	nextID      int
}

// New builds a controller over the loaded records. A nil starter runs
// silent sessions, which is what headless tools and tests want.
func New(ctx context.Context, p Persister, start AlarmStarter, rec Records) *Controller {
	if start == nil {
		silent := alarm.NewLauncher(nil, nil, engine.RealClock{}, nil)
		start = func(ctx context.Context, med engine.Medication) AlarmSession {
			return silent.Start(ctx, med)
		}
	}

	st := state{
		screen:      ScreenProfile,
		profile:     rec.Profile,
		medications: cloneMeds(rec.Medications),
		history:     slices.Clone(rec.History),
	}
	if st.history == nil {
		st.history = []engine.HistoryLog{}
	}
	if strings.TrimSpace(rec.Profile.Name) != "" {
		st.screen = ScreenDashboard
	}

	return &Controller{
		ctx:        ctx,
		persist:    p,
		startAlarm: start,
		st:         st,
		listeners:  make(map[int]Listener),
	}
}

// Subscribe registers l and returns a function that removes it.
func (c *Controller) Subscribe(l Listener) func() {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = l
	return func() {
		c.listenersMu.Lock()
		defer c.listenersMu.Unlock()
		delete(c.listeners, id)
	}
}

// Snapshot returns a deep copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

// Medications returns a copy of the collection. The scheduler reads it on
// every tick.
func (c *Controller) Medications() []engine.Medication {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneMeds(c.st.medications)
}

// View renders the current snapshot.
func (c *Controller) View() View {
	return Render(c.Snapshot())
}

// SaveProfile stores p and opens the dashboard.
func (c *Controller) SaveProfile(p engine.UserProfile) error {
	if !p.Complete() {
		return ErrProfileIncomplete
	}
	p.Name = strings.TrimSpace(p.Name)
	p.Disease = strings.TrimSpace(p.Disease)
	p.BirthDate = strings.TrimSpace(p.BirthDate)

	c.intentMu.Lock()
	defer c.intentMu.Unlock()
	return c.apply(func(st *state) (dirty, error) {
		st.profile = p
		st.screen = ScreenDashboard
		return dirtyProfile, nil
	})
}

func (c *Controller) RequestAdd() {
	c.navigate(ScreenSettingMed)
}

func (c *Controller) ViewHistory() {
	c.navigate(ScreenHistory)
}

func (c *Controller) ViewProfile() {
	c.navigate(ScreenProfile)
}

func (c *Controller) ShowDashboard() {
	c.navigate(ScreenDashboard)
}

// CreateMedication validates draft, gives it a fresh id when it has none
// (or a taken one) and appends it.
func (c *Controller) CreateMedication(draft engine.Medication) (engine.Medication, error) {
	m := draft.Clone()
	if err := m.Validate(); err != nil {
		return engine.Medication{}, err
	}

	c.intentMu.Lock()
	defer c.intentMu.Unlock()
	err := c.apply(func(st *state) (dirty, error) {
		if m.ID == "" || indexOf(st.medications, m.ID) >= 0 {
			m.ID = uuid.NewString()
		}
		st.medications = append(st.medications, m)
		st.screen = ScreenDashboard
		return dirtyMedications, nil
	})
	if err != nil {
		return engine.Medication{}, err
	}

	slog.Info(config.MsgMedCreated,
		config.LogKeyComponent, config.CompController,
		config.LogKeyMedID, m.ID)
	return m.Clone(), nil
}

// ImportMedications appends several medications at once without changing
// the screen. Invalid entries are skipped; the number added is returned.
func (c *Controller) ImportMedications(meds []engine.Medication) int {
	c.intentMu.Lock()
	defer c.intentMu.Unlock()

	added := 0
	_ = c.apply(func(st *state) (dirty, error) {
		for _, d := range meds {
			m := d.Clone()
			if err := m.Validate(); err != nil {
				continue
			}
			if m.ID == "" || indexOf(st.medications, m.ID) >= 0 {
				m.ID = uuid.NewString()
			}
			st.medications = append(st.medications, m)
			added++
		}
		if added == 0 {
			return 0, nil
		}
		return dirtyMedications, nil
	})
	return added
}

// RequestEdit opens the edit screen for id. An unknown id lands on the
// dashboard and returns ErrMedicationNotFound.
func (c *Controller) RequestEdit(id string) error {
	c.intentMu.Lock()
	defer c.intentMu.Unlock()

	var missing bool
	_ = c.apply(func(st *state) (dirty, error) {
		if indexOf(st.medications, id) < 0 {
			missing = true
			st.editingID = ""
			st.screen = ScreenDashboard
			return 0, nil
		}
		st.editingID = id
		st.screen = ScreenEditMed
		return 0, nil
	})
	if missing {
		slog.Warn(config.MsgEditMissing,
			config.LogKeyComponent, config.CompController,
			config.LogKeyMedID, id)
		return ErrMedicationNotFound
	}
	return nil
}

// UpdateMedication replaces the stored medication with the same id.
func (c *Controller) UpdateMedication(m engine.Medication) error {
	m = m.Clone()
	if err := m.Validate(); err != nil {
		return err
	}

	c.intentMu.Lock()
	defer c.intentMu.Unlock()

	var missing bool
	_ = c.apply(func(st *state) (dirty, error) {
		st.editingID = ""
		st.screen = ScreenDashboard
		i := indexOf(st.medications, m.ID)
		if i < 0 {
			missing = true
			return 0, nil
		}
		st.medications[i] = m
		return dirtyMedications, nil
	})
	if missing {
		return ErrMedicationNotFound
	}

	slog.Info(config.MsgMedUpdated,
		config.LogKeyComponent, config.CompController,
		config.LogKeyMedID, m.ID)
	return nil
}

// DeleteMedication removes id in two steps. Listeners first see the
// dashboard with the medication still present, so no screen is left bound
// to it; only then is it removed and persisted.
func (c *Controller) DeleteMedication(id string) error {
	c.intentMu.Lock()
	defer c.intentMu.Unlock()

	_ = c.apply(func(st *state) (dirty, error) {
		st.editingID = ""
		st.screen = ScreenDashboard
		return 0, nil
	})

	var missing bool
	_ = c.apply(func(st *state) (dirty, error) {
		i := indexOf(st.medications, id)
		if i < 0 {
			missing = true
			return 0, nil
		}
		st.medications = slices.Delete(st.medications, i, i+1)
		return dirtyMedications, nil
	})
	if missing {
		return ErrMedicationNotFound
	}

	slog.Info(config.MsgMedDeleted,
		config.LogKeyComponent, config.CompController,
		config.LogKeyMedID, id)
	return nil
}

// ToggleActive flips the active flag of id without changing the screen.
func (c *Controller) ToggleActive(id string) error {
	c.intentMu.Lock()
	defer c.intentMu.Unlock()

	var missing bool
	var active bool
	_ = c.apply(func(st *state) (dirty, error) {
		i := indexOf(st.medications, id)
		if i < 0 {
			missing = true
			return 0, nil
		}
		st.medications[i].Active = !st.medications[i].Active
		active = st.medications[i].Active
		return dirtyMedications, nil
	})
	if missing {
		return ErrMedicationNotFound
	}

	slog.Debug(config.MsgMedToggled,
		config.LogKeyComponent, config.CompController,
		config.LogKeyMedID, id,
		config.LogKeyValue, active)
	return nil
}

// Trigger raises the alarm for ev. An alarm already on screen is replaced;
// its session is closed without a history entry.
func (c *Controller) Trigger(ev engine.TriggerEvent) {
	c.intentMu.Lock()
	defer c.intentMu.Unlock()

	med := ev.Medication.Clone()
	session := c.startAlarm(c.ctx, med)

	var previous AlarmSession
	_ = c.apply(func(st *state) (dirty, error) {
		st.activeAlarm = &med
		st.screen = ScreenAlarm
		return 0, nil
	})

	c.mu.Lock()
	previous, c.session = c.session, session
	c.mu.Unlock()

	if previous != nil {
		slog.Warn(config.MsgAlarmReplaced,
			config.LogKeyComponent, config.CompController,
			config.LogKeyMedID, med.ID)
		previous.Close()
	}
}

// AcknowledgeAlarm records status for the alarm on screen, prepends the
// entry to the history and returns to the dashboard.
func (c *Controller) AcknowledgeAlarm(status engine.Status) (engine.HistoryLog, error) {
	c.intentMu.Lock()
	defer c.intentMu.Unlock()

	c.mu.RLock()
	session := c.session
	c.mu.RUnlock()
	if session == nil {
		return engine.HistoryLog{}, ErrNoActiveAlarm
	}

	entry, err := session.Acknowledge(status)
	if err != nil {
		return engine.HistoryLog{}, err
	}

	_ = c.apply(func(st *state) (dirty, error) {
		st.history = append([]engine.HistoryLog{entry}, st.history...)
		st.activeAlarm = nil
		st.screen = ScreenDashboard
		return dirtyHistory, nil
	})

	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
	session.Close()

	return entry, nil
}

// Close stops the alarm in flight, if any.
func (c *Controller) Close() {
	c.intentMu.Lock()
	defer c.intentMu.Unlock()

	c.mu.Lock()
	session := c.session
	c.session = nil
	c.mu.Unlock()
	if session != nil {
		session.Close()
	}
}

func (c *Controller) navigate(to Screen) {
	c.intentMu.Lock()
	defer c.intentMu.Unlock()
	_ = c.apply(func(st *state) (dirty, error) {
		st.screen = to
		if to != ScreenEditMed {
			st.editingID = ""
		}
		return 0, nil
	})
}

// apply runs fn on the state, then persists the records it dirtied and
// notifies listeners if anything changed. Callers hold intentMu. While an
// alarm is in flight the screen stays on ALARM whatever fn asked for.
func (c *Controller) apply(fn func(st *state) (dirty, error)) error {
	c.mu.Lock()
	before := c.st
	d, err := fn(&c.st)
	if err != nil {
		c.st = before
		c.mu.Unlock()
		return err
	}
	if c.st.activeAlarm != nil {
		c.st.screen = ScreenAlarm
	}
	changed := d != 0 ||
		before.screen != c.st.screen ||
		before.editingID != c.st.editingID ||
		before.activeAlarm != c.st.activeAlarm
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if before.screen != snap.Screen {
		slog.Debug(config.MsgScreenChange,
			config.LogKeyComponent, config.CompController,
			config.LogKeyFrom, string(before.screen),
			config.LogKeyScreen, string(snap.Screen))
	}

	if c.persist != nil {
		if d&dirtyProfile != 0 {
			c.persist.SaveProfile(c.ctx, snap.Profile)
		}
		if d&dirtyMedications != 0 {
			c.persist.SaveMedications(c.ctx, snap.Medications)
		}
		if d&dirtyHistory != 0 {
			c.persist.SaveHistory(c.ctx, snap.History)
		}
	}

	if changed {
		c.notify(snap)
	}
	return nil
}

func (c *Controller) notify(s Snapshot) {
	c.listenersMu.Lock()
	ls := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		ls = append(ls, l)
	}
	c.listenersMu.Unlock()

	for _, l := range ls {
		l(s)
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		Screen:      c.st.screen,
		Profile:     c.st.profile,
		Medications: cloneMeds(c.st.medications),
		History:     slices.Clone(c.st.history),
		EditingID:   c.st.editingID,
	}
	if s.History == nil {
		s.History = []engine.HistoryLog{}
	}
	if c.st.activeAlarm != nil {
		m := c.st.activeAlarm.Clone()
		s.ActiveAlarm = &m
	}
	return s
}
