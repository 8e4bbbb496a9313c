package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	dErrors "carehub/pkg/domain-errors"
)

// timestampGrammar is the full RFC3339 date-time grammar: date, time, optional
// fraction and a mandatory zone designator.
var timestampGrammar = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d{1,9})?(Z|[+-]\d{2}:\d{2})$`)

// canonicalLen is len("2006-01-02T15:04:05Z").
const canonicalLen = 20

// Timestamp is an RFC3339 date-time kept exactly as received. No normalization
// is performed so audit trails keep the source representation.
type Timestamp struct {
	value string
}

// EncodeTimestamp validates raw against the date-time grammar and calendar.
func EncodeTimestamp(raw string) (Timestamp, error) {
	if !timestampGrammar.MatchString(raw) {
		return Timestamp{}, dErrors.New(dErrors.CodeInvalidTimestamp,
			"timestamp must be an RFC3339 date-time with a timezone designator")
	}
	if _, err := parseInstant(raw); err != nil {
		return Timestamp{}, dErrors.New(dErrors.CodeInvalidTimestamp, "timestamp is not a valid calendar date-time")
	}
	return Timestamp{value: raw}, nil
}

// secondsAt is the offset of the seconds field in "2006-01-02T15:04:05".
const secondsAt = 17

// parseInstant parses raw, allowing the RFC3339 leap second ":60" in the
// last minute of an hour (any hour, since the offset may shift 23:59 UTC).
// time.Time cannot hold a leap second, so it resolves to the following
// instant.
func parseInstant(raw string) (time.Time, error) {
	if raw[secondsAt:secondsAt+2] != "60" {
		return time.Parse(time.RFC3339Nano, raw)
	}
	if raw[secondsAt-3:secondsAt-1] != "59" {
		return time.Time{}, fmt.Errorf("leap second outside the last minute of the hour")
	}
	folded := raw[:secondsAt] + "59" + raw[secondsAt+2:]
	t, err := time.Parse(time.RFC3339Nano, folded)
	if err != nil {
		return time.Time{}, err
	}
	return t.Add(time.Second), nil
}

// MustTimestamp is EncodeTimestamp for static values; it panics on error.
func MustTimestamp(raw string) Timestamp {
	ts, err := EncodeTimestamp(raw)
	if err != nil {
		panic(err)
	}
	return ts
}

// TimestampFromTime formats t in canonical form: UTC, whole seconds, "Z".
func TimestampFromTime(t time.Time) Timestamp {
	return Timestamp{value: t.UTC().Truncate(time.Second).Format(time.RFC3339)}
}

// Time returns the instant the timestamp denotes.
func (t Timestamp) Time() time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	parsed, _ := parseInstant(t.value)
	return parsed
}

func (t Timestamp) String() string { return t.value }

// IsZero reports whether the timestamp is the zero value.
func (t Timestamp) IsZero() bool { return t.value == "" }

// IsCanonical reports whether lexicographic order equals chronological order
// for this value: UTC designator and no fractional seconds.
func (t Timestamp) IsCanonical() bool {
	return len(t.value) == canonicalLen && strings.HasSuffix(t.value, "Z")
}

// CompareTimestamps orders two canonical timestamps lexicographically.
// Non-canonical inputs are rejected rather than compared incorrectly.
func CompareTimestamps(a, b Timestamp) (int, error) {
	if !a.IsCanonical() || !b.IsCanonical() {
		return 0, dErrors.New(dErrors.CodeInvalidTimestamp, "timestamps must be canonical UTC to be ordered lexicographically")
	}
	return strings.Compare(a.value, b.value), nil
}

// MarshalJSON emits the timestamp string; the zero value encodes as null.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.value)
}

// UnmarshalJSON accepts a JSON string (validated) or null.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return dErrors.New(dErrors.CodeInvalidTimestamp, "timestamp must be a JSON string")
	}
	parsed, err := EncodeTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Scan implements sql.Scanner for TIMESTAMPTZ and TEXT columns.
func (t *Timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = Timestamp{}
		return nil
	case time.Time:
		*t = TimestampFromTime(v)
		return nil
	case string:
		return t.scanString(v)
	case []byte:
		return t.scanString(string(v))
	default:
		return fmt.Errorf("scan timestamp: unsupported type %T", src)
	}
}

func (t *Timestamp) scanString(s string) error {
	parsed, err := EncodeTimestamp(s)
	if err != nil {
		return fmt.Errorf("scan timestamp: %w", err)
	}
	*t = parsed
	return nil
}

// Value implements driver.Valuer.
func (t Timestamp) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.Time(), nil
}
