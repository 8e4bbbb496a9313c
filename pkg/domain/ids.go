// Package domain provides the primitive codec shared by every contract: branded
// identifiers, RFC3339 timestamps and open JSON payloads.
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"

	dErrors "carehub/pkg/domain-errors"
)

// maxSafeFloat is the largest integer a float64 carries without precision loss.
const maxSafeFloat = 1<<53 - 1

// ID is a branded decimal identifier. The unexported field means the only way
// to obtain a non-zero ID is through a validating constructor, so an ID can
// never be confused with (or silently built from) a plain string.
//
// Identifiers travel as decimal strings so values beyond 2^53 survive clients
// whose native numbers are float64.
type ID struct {
	value string
}

// ParseID validates s as a non-empty run of decimal digits.
// Use at trust boundaries (handlers, path params, database rows).
func ParseID(s string) (ID, error) {
	if s == "" {
		return ID{}, dErrors.New(dErrors.CodeInvalidID, "id cannot be empty")
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return ID{}, dErrors.New(dErrors.CodeInvalidID, "id must contain only decimal digits")
		}
	}
	return ID{value: s}, nil
}

// EncodeID builds an ID from a string or numeric input. Floats are accepted
// only when integral, non-negative and within the float64 safe-integer range.
func EncodeID(raw any) (ID, error) {
	switch v := raw.(type) {
	case ID:
		if v.IsNil() {
			return ID{}, dErrors.New(dErrors.CodeInvalidID, "id cannot be empty")
		}
		return v, nil
	case string:
		return ParseID(v)
	case json.Number:
		return ParseID(v.String())
	case int:
		return fromSigned(int64(v))
	case int8:
		return fromSigned(int64(v))
	case int16:
		return fromSigned(int64(v))
	case int32:
		return fromSigned(int64(v))
	case int64:
		return fromSigned(v)
	case uint:
		return ID{value: strconv.FormatUint(uint64(v), 10)}, nil
	case uint8:
		return ID{value: strconv.FormatUint(uint64(v), 10)}, nil
	case uint16:
		return ID{value: strconv.FormatUint(uint64(v), 10)}, nil
	case uint32:
		return ID{value: strconv.FormatUint(uint64(v), 10)}, nil
	case uint64:
		return ID{value: strconv.FormatUint(v, 10)}, nil
	case float32:
		return fromFloat(float64(v))
	case float64:
		return fromFloat(v)
	case *big.Int:
		if v == nil {
			return ID{}, dErrors.New(dErrors.CodeInvalidID, "id cannot be empty")
		}
		if v.Sign() < 0 {
			return ID{}, dErrors.New(dErrors.CodeInvalidID, "id cannot be negative")
		}
		return ID{value: v.String()}, nil
	default:
		return ID{}, dErrors.Newf(dErrors.CodeInvalidID, "unsupported id type %T", raw)
	}
}

// MustParseID is ParseID for static values such as fixtures; it panics on error.
func MustParseID(s string) ID {
	id, err := ParseID(s)
	if err != nil {
		panic(err)
	}
	return id
}

func fromSigned(n int64) (ID, error) {
	if n < 0 {
		return ID{}, dErrors.New(dErrors.CodeInvalidID, "id cannot be negative")
	}
	return ID{value: strconv.FormatInt(n, 10)}, nil
}

func fromFloat(f float64) (ID, error) {
	switch {
	case math.IsNaN(f) || math.IsInf(f, 0):
		return ID{}, dErrors.New(dErrors.CodeInvalidID, "id must be a finite number")
	case f < 0:
		return ID{}, dErrors.New(dErrors.CodeInvalidID, "id cannot be negative")
	case f != math.Trunc(f):
		return ID{}, dErrors.New(dErrors.CodeInvalidID, "id must be an integer")
	case f > maxSafeFloat:
		return ID{}, dErrors.New(dErrors.CodeInvalidID, "id exceeds the safe integer range; send it as a string")
	}
	return ID{value: strconv.FormatInt(int64(f), 10)}, nil
}

// DecodeID returns the identifier's integer value without precision loss.
// Returns nil for the zero ID.
func DecodeID(id ID) *big.Int {
	return id.BigInt()
}

// BigInt returns the identifier's integer value, or nil for the zero ID.
func (id ID) BigInt() *big.Int {
	if id.IsNil() {
		return nil
	}
	n, _ := new(big.Int).SetString(id.value, 10)
	return n
}

// Uint64 returns the identifier as uint64 when it fits.
func (id ID) Uint64() (uint64, error) {
	n, err := strconv.ParseUint(id.value, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidID, "id does not fit in 64 bits")
	}
	return n, nil
}

// String returns the identifier exactly as it was received.
func (id ID) String() string { return id.value }

// IsNil reports whether the ID is the zero value.
func (id ID) IsNil() bool { return id.value == "" }

// MarshalJSON always emits a JSON string; the zero ID encodes as null.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsNil() {
		return []byte("null"), nil
	}
	return json.Marshal(id.value)
}

// UnmarshalJSON accepts only JSON strings of decimal digits (or null).
func (id *ID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = ID{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return dErrors.New(dErrors.CodeInvalidID, "id must be a JSON string")
	}
	parsed, err := ParseID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Scan implements sql.Scanner for BIGINT/NUMERIC/TEXT columns.
func (id *ID) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*id = ID{}
		return nil
	case []byte:
		parsed, err := ParseID(string(v))
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	default:
		parsed, err := EncodeID(v)
		if err != nil {
			return fmt.Errorf("scan id: %w", err)
		}
		*id = parsed
		return nil
	}
}

// Value implements driver.Valuer. IDs that fit int64 are sent as integers.
func (id ID) Value() (driver.Value, error) {
	if id.IsNil() {
		return nil, nil
	}
	if n, err := strconv.ParseInt(id.value, 10, 64); err == nil {
		return n, nil
	}
	return id.value, nil
}
