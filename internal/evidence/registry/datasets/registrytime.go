package datasets

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// registryTimeLayouts are tried in order. The registers emit timestamps
// both with and without a zone; zoneless values are read as UTC.
var registryTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// RegistryTime is a timestamp from an Arbeidstilsynet register. Null and
// the register's unset sentinel (0001-01-01T00:00:00) both decode to the
// zero time.
type RegistryTime struct {
	time.Time
}

// IsSet reports whether the register supplied a real date.
func (t RegistryTime) IsSet() bool {
	return !t.Time.IsZero()
}

func (t *RegistryTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("registry time: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range registryTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("registry time: unrecognised timestamp %q", s)
}
