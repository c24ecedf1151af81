package api

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// APITime is a timestamp as serialized by the remote platform. Expiries
// sometimes arrive with sub-microsecond precision (seven or more fractional
// digits); the fraction is truncated to nanoseconds before parsing.
type APITime struct {
	time.Time
}

// ParseTimestamp parses an ISO-8601 timestamp, tolerating over-long
// fractional seconds and a Z suffix.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	value = truncateFraction(value)
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", value, err)
	}
	return parsed, nil
}

// truncateFraction caps fractional seconds at nine digits, the maximum
// RFC3339Nano accepts.
func truncateFraction(value string) string {
	dot := strings.IndexByte(value, '.')
	if dot < 0 {
		return value
	}
	end := dot + 1
	for end < len(value) && value[end] >= '0' && value[end] <= '9' {
		end++
	}
	if end-dot-1 <= 9 {
		return value
	}
	return value[:dot+1+9] + value[end:]
}

func (t APITime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

func (t *APITime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}
