package engine

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-medreminder/internal/config"
)

// FeedBuilder renders the medication schedule as an iCalendar feed that a
// caregiver can subscribe to. Each active medication becomes one recurring
// event with a DISPLAY alarm at the dose time.
type FeedBuilder struct {
	Clock Clock

	// FormatDescription lets the UI inject a localized event description.
	FormatDescription func(m Medication) string
}

// Build encodes meds. Inactive medications are left out. When nothing
// remains, a minimal valid VCALENDAR is returned so subscribers never see
// an invalid feed.
func (b *FeedBuilder) Build(meds []Medication) ([]byte, error) {
	now := b.Clock.Now()

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refresh := ical.NewProp(config.PropRefresh)
	refresh.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refresh)

	// DTSTAMP follows the local day like DTSTART, so rebuilding an unchanged
	// schedule yields the same bytes and subscribers keep their validators.
	y, mo, d := now.Date()
	stamp := ical.NewProp(config.PropDTStamp)
	stamp.SetDateTime(time.Date(y, mo, d, 0, 0, 0, 0, now.Location()).UTC())

	for _, m := range meds {
		if !m.Active {
			continue
		}
		event, err := b.event(m, now)
		if err != nil {
			slog.Warn(config.MsgFeedFailed,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyMedID, m.ID,
				config.LogKeyError, err)
			continue
		}
		event.Props.Set(stamp)
		cal.Children = append(cal.Children, event.Component)
	}

	if len(cal.Children) == 0 {
		return []byte(config.StubVCalendar), nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	return buf.Bytes(), nil
}

func (b *FeedBuilder) event(m Medication, now time.Time) (*ical.Event, error) {
	clock, err := time.Parse(config.ClockFormat, m.Time)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrClockFormat, m.Time)
	}

	event := ical.NewEvent()
	event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, m.ID, config.ICalDomain))
	event.Props.SetText(config.PropSummary, m.Name)

	description := m.Dosage
	if b.FormatDescription != nil {
		description = b.FormatDescription(m)
	}
	event.Props.SetText(config.PropDescription, description)

	// Floating local time: the dose follows the wall clock wherever the
	// patient is, so no TZID is attached. The value is set raw because
	// SetDateTime would pin a zone.
	start := time.Date(now.Year(), now.Month(), now.Day(), clock.Hour(), clock.Minute(), 0, 0, time.Local)
	dtStart := ical.NewProp(config.PropDTStart)
	dtStart.Value = start.Format(config.ICalFloatingFormat)
	event.Props.Set(dtStart)

	rrule := ical.NewProp(config.PropRRule)
	rrule.Value = recurrenceRule(m.Days)
	event.Props.Set(rrule)

	addAlarm(event, description)
	return event, nil
}

// recurrenceRule emits a daily rule for the full week (or an empty set) and
// a weekly BYDAY rule otherwise.
func recurrenceRule(days []string) string {
	days = normalizeDays(days)
	if len(days) == 0 || len(days) == len(config.WeekdayTags) {
		return config.ICalDailyRule
	}
	codes := make([]string, 0, len(days))
	for _, d := range days {
		codes = append(codes, config.ICalWeekdays[d])
	}
	return config.ICalWeekRule + strings.Join(codes, ",")
}

// addAlarm attaches a DISPLAY alarm that fires at the event start.
func addAlarm(event *ical.Event, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Raw value avoids a VALUE=TEXT parameter on the duration.
	trigger := ical.NewProp(config.PropTrigger)
	trigger.Value = config.ICalTriggerAt
	alarm.Props.Set(trigger)

	event.Children = append(event.Children, alarm)
}
