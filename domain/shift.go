package domain

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format used for schedules.
const DateLayout = "2006-01-02"

const day = 24 * time.Hour

// ShiftWindow is a wall-clock work window. End before Start means the
// window crosses midnight.
type ShiftWindow struct {
	Start      string `json:"start"`
	End        string `json:"end"`
	BreakStart string `json:"break_start,omitempty"`
	BreakEnd   string `json:"break_end,omitempty"`
}

// IsEmpty reports whether no time field is set.
func (w *ShiftWindow) IsEmpty() bool {
	return w == nil || (w.Start == "" && w.End == "" && w.BreakStart == "" && w.BreakEnd == "")
}

func (w *ShiftWindow) HasBreak() bool {
	return w != nil && w.BreakStart != "" && w.BreakEnd != ""
}

// Validate checks the window is well formed.
func (w *ShiftWindow) Validate() error {
	_, err := w.span()
	return err
}

// shiftSpan holds offsets from the window's own midnight. end and the break
// offsets may exceed 24h for overnight windows.
type shiftSpan struct {
	start, end           time.Duration
	breakStart, breakEnd time.Duration
	hasBreak             bool
}

func (w *ShiftWindow) span() (shiftSpan, error) {
	if w == nil {
		return shiftSpan{}, Invalidf("shift window is missing")
	}
	if w.Start == "" || w.End == "" {
		return shiftSpan{}, Invalidf("shift start and end must both be set")
	}
	if (w.BreakStart == "") != (w.BreakEnd == "") {
		return shiftSpan{}, Invalidf("break start and end must both be set or both be empty")
	}

	start, err := ParseClock(w.Start)
	if err != nil {
		return shiftSpan{}, err
	}
	end, err := ParseClock(w.End)
	if err != nil {
		return shiftSpan{}, err
	}
	if start == end {
		return shiftSpan{}, Invalidf("shift start and end are equal (%s)", w.Start)
	}
	if end < start {
		end += day
	}

	s := shiftSpan{start: start, end: end}
	if !w.HasBreak() {
		return s, nil
	}

	bs, err := ParseClock(w.BreakStart)
	if err != nil {
		return shiftSpan{}, err
	}
	be, err := ParseClock(w.BreakEnd)
	if err != nil {
		return shiftSpan{}, err
	}
	if bs < start {
		bs += day
	}
	if be < start {
		be += day
	}
	if bs >= be || bs < s.start || be > s.end {
		return shiftSpan{}, Invalidf("break %s-%s is outside shift %s-%s", w.BreakStart, w.BreakEnd, w.Start, w.End)
	}
	s.breakStart, s.breakEnd, s.hasBreak = bs, be, true
	return s, nil
}

// nextDay moves the span forward by one day. A second shift that starts
// before the first one belongs to the following morning.
func (s shiftSpan) nextDay() shiftSpan {
	s.start += day
	s.end += day
	if s.hasBreak {
		s.breakStart += day
		s.breakEnd += day
	}
	return s
}

// ParseClock parses HH:MM or HH:MM:SS into an offset from midnight.
func ParseClock(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, Invalidf("invalid time of day %q", value)
}

// ShiftSchedule is a worker's schedule for one calendar date.
type ShiftSchedule struct {
	ID             string       `json:"id"`
	WorkerID       string       `json:"worker_id"`
	Date           string       `json:"schedule_date"`
	Shift1         *ShiftWindow `json:"shift_1,omitempty"`
	Shift2         *ShiftWindow `json:"shift_2,omitempty"`
	HasShift2      bool         `json:"has_shift_2"`
	IsDualShift    bool         `json:"is_dual_shift"`
	IsOverride     bool         `json:"is_override"`
	OverrideReason string       `json:"override_reason,omitempty"`
	Notes          string       `json:"notes,omitempty"`
	CreatedBy      string       `json:"created_by,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// IsDayOff reports an override that clears every time field.
func (s *ShiftSchedule) IsDayOff() bool {
	return s != nil && s.IsOverride && s.Shift1.IsEmpty() && s.Shift2.IsEmpty()
}

// IsDual reports whether the second window is in effect.
func (s *ShiftSchedule) IsDual() bool {
	return s != nil && (s.HasShift2 || s.IsDualShift) && !s.Shift2.IsEmpty()
}

// Normalize drops empty windows and keeps the dual-shift flags consistent.
func (s *ShiftSchedule) Normalize() {
	if s == nil {
		return
	}
	if s.Shift1.IsEmpty() {
		s.Shift1 = nil
	}
	if s.Shift2.IsEmpty() {
		s.Shift2 = nil
	}
	dual := s.Shift2 != nil
	s.HasShift2, s.IsDualShift = dual, dual
	if !s.IsOverride {
		s.OverrideReason = ""
	}
}

// Validate checks the schedule before it is stored.
func (s *ShiftSchedule) Validate() error {
	if s == nil {
		return ErrInvalidPayload
	}
	if s.WorkerID == "" {
		return Invalidf("worker id is required")
	}
	if _, err := time.Parse(DateLayout, s.Date); err != nil {
		return Invalidf("invalid schedule date %q", s.Date)
	}
	if s.Shift1.IsEmpty() && !s.Shift2.IsEmpty() {
		return Invalidf("shift 2 requires shift 1")
	}
	if (s.HasShift2 || s.IsDualShift) && s.Shift2.IsEmpty() {
		return Invalidf("dual shift requires shift 2 times")
	}
	if s.Shift1.IsEmpty() {
		return nil
	}
	if err := s.Shift1.Validate(); err != nil {
		return err
	}
	if s.Shift2.IsEmpty() {
		return nil
	}
	return validateShiftPair(s.Shift1, s.Shift2)
}

// validateShiftPair rejects a second window that starts before the first
// ends or runs into the next day's first window.
func validateShiftPair(first, second *ShiftWindow) error {
	a, err := first.span()
	if err != nil {
		return err
	}
	b, err := second.span()
	if err != nil {
		return err
	}
	if b.start < a.start {
		b = b.nextDay()
	}
	if b.start < a.end || b.end > a.start+day {
		return ErrOverlappingShifts
	}
	return nil
}

// effectiveWindows returns the windows in force for a date. Day-off
// overrides yield none; schedules without times defer to the default shift.
func effectiveWindows(schedule *ShiftSchedule, defaultShift *ShiftWindow) ([]*ShiftWindow, error) {
	if schedule.IsDayOff() {
		return nil, nil
	}
	if schedule == nil || schedule.Shift1.IsEmpty() {
		if defaultShift.IsEmpty() {
			return nil, nil
		}
		return []*ShiftWindow{defaultShift}, nil
	}
	if !schedule.IsDual() {
		return []*ShiftWindow{schedule.Shift1}, nil
	}
	if err := validateShiftPair(schedule.Shift1, schedule.Shift2); err != nil {
		return nil, err
	}
	return []*ShiftWindow{schedule.Shift1, schedule.Shift2}, nil
}
