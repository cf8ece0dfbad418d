package transport

import "github.com/Likheet/hermes-monitoring-sub002/domain"

type AuthLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	SessionID string `json:"session_id"`
}

type ProfileUpdateRequest struct {
	Name     *string           `json:"name"`
	Phone    *string           `json:"phone"`
	Metadata map[string]string `json:"metadata"`
}

type WorkerUpsertRequest struct {
	Name         string              `json:"name"`
	Username     string              `json:"username"`
	Password     string              `json:"password"`
	Role         string              `json:"role"`
	Department   string              `json:"department"`
	Phone        string              `json:"phone"`
	Status       string              `json:"status"`
	DefaultShift *domain.ShiftWindow `json:"default_shift"`
	Metadata     map[string]string   `json:"metadata"`
}

type ShiftRequest struct {
	Start      string `json:"start"`
	End        string `json:"end"`
	BreakStart string `json:"break_start"`
	BreakEnd   string `json:"break_end"`
}

// Window returns nil for an empty request, which clears the shift.
func (r ShiftRequest) Window() *domain.ShiftWindow {
	w := &domain.ShiftWindow{Start: r.Start, End: r.End, BreakStart: r.BreakStart, BreakEnd: r.BreakEnd}
	if w.IsEmpty() {
		return nil
	}
	return w
}

type ScheduleRequest struct {
	Shift1         *domain.ShiftWindow `json:"shift_1"`
	Shift2         *domain.ShiftWindow `json:"shift_2"`
	IsOverride     bool                `json:"is_override"`
	OverrideReason string              `json:"override_reason"`
	Notes          string              `json:"notes"`
}

type TaskCreateRequest struct {
	TaskType         string `json:"task_type"`
	Department       string `json:"department"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	Priority         string `json:"priority"`
	RoomNumber       string `json:"room_number"`
	AssignedTo       string `json:"assigned_to"`
	ExpectedDuration int    `json:"expected_duration_minutes"`
	ClientTimestamp  string `json:"client_timestamp"`
}

type TaskAssignRequest struct {
	WorkerID        string `json:"worker_id"`
	Version         int    `json:"version"`
	ClientTimestamp string `json:"client_timestamp"`
}

// TaskActionRequest is the body of POST /tasks/{id}/actions/{action}.
type TaskActionRequest struct {
	ClientTimestamp string   `json:"client_timestamp"`
	Version         int      `json:"version"`
	Reason          string   `json:"reason"`
	Remark          string   `json:"remark"`
	PhotoURLs       []string `json:"photo_urls"`
}
