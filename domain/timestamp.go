package domain

import (
	"strings"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-07",
}

// DualTimestamp records the device-local and the server-trusted time of a
// state transition. Server is authoritative for duration math.
type DualTimestamp struct {
	Client string `json:"client"`
	Server string `json:"server"`
}

// NewDualTimestamp stamps server with the given instant. An empty client
// value is replaced by the server value.
func NewDualTimestamp(client string, server time.Time) DualTimestamp {
	serverStr := server.UTC().Format(time.RFC3339Nano)
	client = strings.TrimSpace(client)
	if client == "" {
		client = serverStr
	}
	return DualTimestamp{Client: client, Server: serverStr}
}

// ServerTime parses the server half.
func (t DualTimestamp) ServerTime() (time.Time, error) {
	return ParseTimestamp(t.Server)
}

// ClientTime parses the client half.
func (t DualTimestamp) ClientTime() (time.Time, error) {
	return ParseTimestamp(t.Client)
}

// Drift returns client minus server. Callers use it to flag devices with a
// skewed clock.
func (t DualTimestamp) Drift() (time.Duration, error) {
	client, err := t.ClientTime()
	if err != nil {
		return 0, err
	}
	server, err := t.ServerTime()
	if err != nil {
		return 0, err
	}
	return client.Sub(server), nil
}

// ParseTimestamp parses an ISO8601 timestamp, failing with INVALID_TIMESTAMP.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, NewError(ErrCodeInvalidTimestamp, "empty timestamp")
	}
	var lastErr error
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed, nil
		}
		lastErr = err
	}
	return time.Time{}, WrapError(ErrCodeInvalidTimestamp, "invalid timestamp "+value, lastErr)
}
