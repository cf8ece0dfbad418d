package domain

import (
	"math"
	"sort"
	"time"
)

type AvailabilityStatus string

const (
	AvailabilityAvailable  AvailabilityStatus = "AVAILABLE"
	AvailabilityShiftBreak AvailabilityStatus = "SHIFT_BREAK"
	AvailabilityOffDuty    AvailabilityStatus = "OFF_DUTY"
)

type BreakType string

const (
	BreakIntraShift BreakType = "INTRA_SHIFT"
	BreakInterShift BreakType = "INTER_SHIFT"
)

// EndingSoonThreshold is how close to shift end a worker counts as ending soon.
const EndingSoonThreshold = 15 * time.Minute

// AvailabilityInput carries everything the evaluator looks at. Schedules whose
// date does not match the day they are passed for are ignored.
type AvailabilityInput struct {
	DefaultShift *ShiftWindow
	// Schedule is the schedule for Now's date.
	Schedule *ShiftSchedule
	// PreviousSchedule covers windows from the day before that run past midnight.
	PreviousSchedule *ShiftSchedule
	// NextSchedule is consulted when looking for the next shift start.
	NextSchedule *ShiftSchedule
	Now          time.Time
}

// Availability is the evaluated state of a worker at an instant.
type Availability struct {
	Status                  AvailabilityStatus `json:"status"`
	BreakType               BreakType          `json:"break_type,omitempty"`
	ShiftStart              *time.Time         `json:"shift_start,omitempty"`
	ShiftEnd                *time.Time         `json:"shift_end,omitempty"`
	MinutesUntilStateChange int                `json:"minutes_until_state_change"`
	NextChangeAt            *time.Time         `json:"next_change_at,omitempty"`
	IsEndingSoon            bool               `json:"is_ending_soon"`
}

type timedWindow struct {
	start, end           time.Time
	breakStart, breakEnd time.Time
	hasBreak             bool
	dayOffset            int
	index                int
}

// EvaluateAvailability computes whether a worker is available, on a break or
// off duty at in.Now, and how long until that changes. Missing configuration
// yields OFF_DUTY; malformed or overlapping windows yield an INVALID error.
func EvaluateAvailability(in AvailabilityInput) (Availability, error) {
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	days := []struct {
		offset   int
		schedule *ShiftSchedule
	}{
		{-1, in.PreviousSchedule},
		{0, in.Schedule},
		{1, in.NextSchedule},
	}

	var windows []timedWindow
	for _, d := range days {
		date := today.AddDate(0, 0, d.offset)
		schedule := d.schedule
		if schedule != nil && schedule.Date != date.Format(DateLayout) {
			schedule = nil
		}
		effective, err := effectiveWindows(schedule, in.DefaultShift)
		if err != nil {
			return Availability{}, err
		}
		var firstStart time.Duration
		for i, w := range effective {
			span, err := w.span()
			if err != nil {
				return Availability{}, err
			}
			if i == 0 {
				firstStart = span.start
			} else if span.start < firstStart {
				span = span.nextDay()
			}
			tw := timedWindow{
				start:     atOffset(date, span.start),
				end:       atOffset(date, span.end),
				dayOffset: d.offset,
				index:     i,
			}
			if span.hasBreak {
				tw.breakStart = atOffset(date, span.breakStart)
				tw.breakEnd = atOffset(date, span.breakEnd)
				tw.hasBreak = true
			}
			windows = append(windows, tw)
		}
	}
	sort.SliceStable(windows, func(i, j int) bool {
		return windows[i].start.Before(windows[j].start)
	})

	for _, w := range windows {
		if now.Before(w.start) || !now.Before(w.end) {
			continue
		}
		a := Availability{
			Status:       AvailabilityAvailable,
			ShiftStart:   timePtr(w.start),
			ShiftEnd:     timePtr(w.end),
			IsEndingSoon: w.end.Sub(now) <= EndingSoonThreshold,
		}
		next := w.end
		switch {
		case w.hasBreak && !now.Before(w.breakStart) && now.Before(w.breakEnd):
			a.Status = AvailabilityShiftBreak
			a.BreakType = BreakIntraShift
			next = w.breakEnd
		case w.hasBreak && now.Before(w.breakStart):
			next = w.breakStart
		}
		a.setNextChange(now, next)
		return a, nil
	}

	for i := 0; i+1 < len(windows); i++ {
		first, second := windows[i], windows[i+1]
		if first.dayOffset != second.dayOffset || first.index != 0 || second.index != 1 {
			continue
		}
		if !now.Before(first.end) && now.Before(second.start) {
			a := Availability{
				Status:     AvailabilityShiftBreak,
				BreakType:  BreakInterShift,
				ShiftStart: timePtr(second.start),
				ShiftEnd:   timePtr(second.end),
			}
			a.setNextChange(now, second.start)
			return a, nil
		}
	}

	a := Availability{Status: AvailabilityOffDuty}
	for _, w := range windows {
		if w.start.After(now) {
			a.ShiftStart = timePtr(w.start)
			a.ShiftEnd = timePtr(w.end)
			a.setNextChange(now, w.start)
			break
		}
	}
	return a, nil
}

func (a *Availability) setNextChange(now, next time.Time) {
	a.NextChangeAt = timePtr(next)
	a.MinutesUntilStateChange = int(math.Ceil(next.Sub(now).Minutes()))
}

// atOffset resolves a wall-clock offset against date's midnight in date's
// location. Offsets past 24h roll into the next day.
func atOffset(date time.Time, offset time.Duration) time.Time {
	h := int(offset / time.Hour)
	m := int(offset % time.Hour / time.Minute)
	s := int(offset % time.Minute / time.Second)
	return time.Date(date.Year(), date.Month(), date.Day(), h, m, s, 0, date.Location())
}

func timePtr(t time.Time) *time.Time {
	return &t
}
