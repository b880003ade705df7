package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-medreminder/internal/config"
)

// PlanSource says where a prescription plan is read from.
type PlanSource struct {
	Mode      string // config.PlanModeLocal or config.PlanModeWeb
	LocalPath string
	WebURL    string
	WebUser   string
	WebPass   string
}

// PlanImporter turns an iCalendar prescription plan into medication drafts.
// SUMMARY maps to the name, DESCRIPTION to the dosage, DTSTART to the dose
// time and RRULE BYDAY to the weekdays.
type PlanImporter struct {
	Fetcher PlanFetcher
}

// Import reads src and returns the medications it describes. Events that do
// not yield a valid medication are skipped and logged.
func (p *PlanImporter) Import(ctx context.Context, src PlanSource) ([]Medication, error) {
	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyMode, src.Mode,
	)
	log.InfoContext(ctx, config.MsgImportStarted)

	reader, err := p.open(ctx, src)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	meds, err := DecodePlan(reader)
	if err != nil {
		return nil, err
	}

	log.Info(config.MsgImportDone,
		config.LogKeyCount, len(meds),
		config.LogKeyDuration, time.Since(start).Milliseconds())
	return meds, nil
}

func (p *PlanImporter) open(ctx context.Context, src PlanSource) (io.ReadCloser, error) {
	switch src.Mode {
	case config.PlanModeLocal:
		if src.LocalPath == "" {
			return nil, errors.New(config.ErrLocalPathEmpty)
		}
		return os.Open(src.LocalPath)
	case config.PlanModeWeb:
		if src.WebURL == "" {
			return nil, errors.New(config.ErrWebURLEmpty)
		}
		if p.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return p.Fetcher.Fetch(ctx, src.WebURL, src.WebUser, src.WebPass)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, src.Mode)
	}
}

// DecodePlan parses every VCALENDAR in r.
func DecodePlan(r io.Reader) ([]Medication, error) {
	dec := ical.NewDecoder(r)
	meds := make([]Medication, 0)

	for {
		cal, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrPlanParse, err)
		}
		for _, ev := range cal.Events() {
			m, err := medicationFromEvent(ev)
			if err != nil {
				slog.Warn(config.MsgSkippedEvent,
					config.LogKeyComponent, config.CompEngine,
					config.LogKeyError, err)
				continue
			}
			meds = append(meds, m)
		}
	}
	return meds, nil
}

func medicationFromEvent(ev ical.Event) (Medication, error) {
	name, _ := ev.Props.Text(config.PropSummary)
	dosage, _ := ev.Props.Text(config.PropDescription)
	if strings.TrimSpace(dosage) == "" {
		dosage = config.FallbackDosage
	}

	start := ev.Props.Get(config.PropDTStart)
	if start == nil {
		return Medication{}, fmt.Errorf("%w: missing %s", ErrClockFormat, config.PropDTStart)
	}
	at, err := start.DateTime(time.Local)
	if err != nil {
		return Medication{}, fmt.Errorf("%w: %v", ErrClockFormat, err)
	}

	m := NewMedication(name, dosage, at.In(time.Local).Format(config.ClockFormat))
	if rule := ev.Props.Get(config.PropRRule); rule != nil {
		if days := daysFromRule(rule.Value); len(days) > 0 {
			m.Days = days
		}
	}
	if err := m.Validate(); err != nil {
		return Medication{}, err
	}
	return m, nil
}

// daysFromRule extracts weekday tags from an RRULE BYDAY part. Ordinal
// prefixes such as "1MO" are ignored.
func daysFromRule(rule string) []string {
	var out []string
	for _, part := range strings.Split(rule, ";") {
		codes, ok := strings.CutPrefix(strings.ToUpper(part), config.ICalByDay)
		if !ok {
			continue
		}
		for _, code := range strings.Split(codes, ",") {
			code = strings.TrimLeft(code, "+-0123456789")
			for tag, c := range config.ICalWeekdays {
				if c == code {
					out = append(out, tag)
				}
			}
		}
	}
	return normalizeDays(out)
}
