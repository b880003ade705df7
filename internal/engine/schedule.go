package engine

import "time"

// TriggerEvent is emitted once per matching minute. Medication is a value copy
// so the receiver never observes later edits.
type TriggerEvent struct {
	Minute     string
	Medication Medication
	At         time.Time
}

// Evaluate decides whether now should raise an alarm. It returns false when
// the minute was already handled or when no active medication is due. When
// several medications share the minute, the first one in slice order wins.
func Evaluate(now time.Time, meds []Medication, lastHandled string) (TriggerEvent, bool) {
	minute := MinuteKey(now)
	if minute == lastHandled {
		return TriggerEvent{}, false
	}

	day := now.Weekday()
	for _, m := range meds {
		if m.Active && m.Time == minute && m.ScheduledOn(day) {
			return TriggerEvent{Minute: minute, Medication: m.Clone(), At: now}, true
		}
	}
	return TriggerEvent{}, false
}
