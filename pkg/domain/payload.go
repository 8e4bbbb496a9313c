package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	dErrors "carehub/pkg/domain-errors"
)

// JSONPayload is an open key-value map for extensible metadata. Its internal
// shape is never validated; only JSON round-trip safety is.
type JSONPayload map[string]any

// ValidatePayload checks that m survives a JSON round trip.
func ValidatePayload(m map[string]any) (JSONPayload, error) {
	if _, err := json.Marshal(m); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "payload is not JSON-serializable")
	}
	return JSONPayload(m), nil
}

// Scan implements sql.Scanner for JSON/JSONB columns.
func (p *JSONPayload) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*p = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan payload: unsupported type %T", src)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("scan payload: %w", err)
	}
	*p = m
	return nil
}

// Value implements driver.Valuer.
func (p JSONPayload) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	b, err := json.Marshal(map[string]any(p))
	if err != nil {
		return nil, err
	}
	return b, nil
}
