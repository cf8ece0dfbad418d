package domain

import (
	"math"
	"time"
)

// PauseRecord is one pause interval in a task's pause history.
type PauseRecord struct {
	PausedAt  DualTimestamp  `json:"paused_at"`
	ResumedAt *DualTimestamp `json:"resumed_at"`
	Reason    string         `json:"reason"`
}

// IsOpen reports whether the pause has not been resumed yet.
func (p PauseRecord) IsOpen() bool {
	return p.ResumedAt == nil
}

// ActiveMinutes returns the non-paused minutes between startedAt and
// completedAt using server timestamps. Open pauses end at completedAt.
// Negative intervals from clock skew are clamped to zero.
func ActiveMinutes(startedAt DualTimestamp, pauses []PauseRecord, completedAt DualTimestamp) (int, error) {
	start, err := startedAt.ServerTime()
	if err != nil {
		return 0, err
	}
	end, err := completedAt.ServerTime()
	if err != nil {
		return 0, err
	}

	paused, err := pausedDuration(pauses, end)
	if err != nil {
		return 0, err
	}

	return roundMinutes(end.Sub(start) - paused), nil
}

// PausedMinutes returns the total paused minutes, treating open pauses as
// ending at until.
func PausedMinutes(pauses []PauseRecord, until DualTimestamp) (int, error) {
	end, err := until.ServerTime()
	if err != nil {
		return 0, err
	}
	paused, err := pausedDuration(pauses, end)
	if err != nil {
		return 0, err
	}
	return roundMinutes(paused), nil
}

func pausedDuration(pauses []PauseRecord, end time.Time) (time.Duration, error) {
	var total time.Duration
	for _, p := range pauses {
		pausedAt, err := p.PausedAt.ServerTime()
		if err != nil {
			return 0, err
		}
		resumedAt := end
		if p.ResumedAt != nil {
			if resumedAt, err = p.ResumedAt.ServerTime(); err != nil {
				return 0, err
			}
		}
		if d := resumedAt.Sub(pausedAt); d > 0 {
			total += d
		}
	}
	return total, nil
}

func roundMinutes(d time.Duration) int {
	minutes := math.Round(float64(d.Milliseconds()) / 60000)
	if minutes < 0 {
		return 0
	}
	return int(minutes)
}
