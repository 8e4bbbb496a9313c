// Package schema is the declarative validation layer shared by every contract.
//
// A Schema validates a decoded JSON value (or a Go value from a persistence row)
// and returns its parsed form: identifiers become domain.ID, timestamps become
// domain.Timestamp, integers become int64, nested objects become
// map[string]any. Failures are reported as a single VALIDATION_ERROR carrying
// one issue per offending field, never as one opaque message.
//
// Entity schemas are built with DefineEntity and derived with CreateInput and
// UpdateInput. Composition is structural (Extend, Merge, Pick, Omit); there is
// no inheritance between schemas.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strconv"

	dErrors "carehub/pkg/domain-errors"
)

// Schema validates one value. The parse method is unexported so every schema
// in the system is built from the constructors in this package.
type Schema interface {
	parse(v any, path string) (any, []dErrors.Issue)
	// JSONSchema describes the schema as a JSON Schema fragment.
	JSONSchema() map[string]any
}

// Validate runs s against input and returns the parsed value.
func Validate(s Schema, input any) (any, error) {
	out, issues := s.parse(normalize(input), "")
	if len(issues) > 0 {
		return nil, dErrors.NewValidation(issues)
	}
	return out, nil
}

// ValidateJSON decodes raw (preserving number precision) and validates it.
func ValidateJSON(s Schema, raw []byte) (any, error) {
	v, err := DecodeJSON(raw)
	if err != nil {
		return nil, err
	}
	return Validate(s, v)
}

// DecodeJSON decodes raw into generic JSON values with numbers kept as
// json.Number. Malformed documents fail with a root-level issue.
func DecodeJSON(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, dErrors.NewValidation([]dErrors.Issue{{Message: "must be valid JSON"}})
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, dErrors.NewValidation([]dErrors.Issue{{Message: "must contain a single JSON value"}})
	}
	return v, nil
}

// Bind validates input and projects the parsed value onto T through its json tags.
func Bind[T any](s Schema, input any) (T, error) {
	var zero T
	parsed, err := Validate(s, input)
	if err != nil {
		return zero, err
	}
	return project[T](parsed)
}

// Decode is Bind for raw JSON.
func Decode[T any](s Schema, raw []byte) (T, error) {
	var zero T
	parsed, err := ValidateJSON(s, raw)
	if err != nil {
		return zero, err
	}
	return project[T](parsed)
}

func project[T any](parsed any) (T, error) {
	var out T
	b, err := json.Marshal(parsed)
	if err != nil {
		return out, dErrors.Wrap(err, dErrors.CodeInternal, "encode parsed value")
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, dErrors.Wrap(err, dErrors.CodeInternal, "project parsed value")
	}
	return out, nil
}

// normalize converts foreign Go values (structs, typed maps, named scalars)
// into the generic shapes parse understands. Types with their own JSON
// encoding, such as domain.ID or time.Time, are left for the schema to handle.
func normalize(v any) any {
	switch v.(type) {
	case nil, map[string]any, []any, string, bool, json.Number,
		int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return v
	case json.Marshaler:
		return v
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Struct, reflect.Map, reflect.Slice, reflect.Array, reflect.Pointer:
		if rv.Kind() == reflect.Pointer && rv.IsNil() {
			return nil
		}
		b, err := json.Marshal(v)
		if err != nil {
			return v
		}
		out, err := DecodeJSON(b)
		if err != nil {
			return v
		}
		return out
	}
	return v
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func index(path string, i int) string {
	return join(path, strconv.Itoa(i))
}

func issue(path, msg string) []dErrors.Issue {
	return []dErrors.Issue{{Path: path, Message: msg}}
}
