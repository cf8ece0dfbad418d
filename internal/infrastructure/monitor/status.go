package monitor

import "time"

// Status is the last observed health of the backing stores.
type Status struct {
	PostgreSQL bool      `json:"postgresql"`
	Redis      bool      `json:"redis"`
	Buffer     bool      `json:"buffer"`
	BufferSize int       `json:"buffer_size"`
	LastCheck  time.Time `json:"last_check"`
}

// Online reports whether writes can go straight to Postgres. Redis is not
// required: sessions degrade but task writes do not.
func (s Status) Online() bool {
	return s.PostgreSQL
}
