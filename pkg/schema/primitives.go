package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"carehub/pkg/domain"
	dErrors "carehub/pkg/domain-errors"
	"carehub/pkg/validation"
)

// StringSchema validates strings. Builder methods return copies, so a shared
// base schema is never mutated by a caller refining it.
type StringSchema struct {
	min, max int
	pattern  *regexp.Regexp
	tags     []string
	format   string
}

// String returns an unconstrained string schema.
func String() *StringSchema {
	return &StringSchema{min: -1, max: -1}
}

// Min sets the minimum length in characters.
func (s *StringSchema) Min(n int) *StringSchema {
	c := *s
	c.min = n
	return &c
}

// Max sets the maximum length in characters.
func (s *StringSchema) Max(n int) *StringSchema {
	c := *s
	c.max = n
	return &c
}

// Pattern requires a full match of expr; the expression is anchored here,
// so callers need not add ^ and $. Panics on an invalid expression.
func (s *StringSchema) Pattern(expr string) *StringSchema {
	c := *s
	c.pattern = regexp.MustCompile(`^(?:` + expr + `)$`)
	return &c
}

// Tag adds a go-playground/validator tag (for example "email" or "e164").
// Unknown tags panic at declaration time.
func (s *StringSchema) Tag(tag string) *StringSchema {
	if !validation.KnownTag(tag) {
		panic(fmt.Sprintf("schema: unknown validation tag %q", tag))
	}
	c := *s
	c.tags = append(append([]string(nil), s.tags...), tag)
	if c.format == "" {
		c.format = formatForTag(tag)
	}
	return &c
}

func (s *StringSchema) parse(v any, path string) (any, []dErrors.Issue) {
	str, ok := v.(string)
	if !ok {
		return nil, issue(path, "must be a string")
	}
	n := utf8.RuneCountInString(str)
	if s.min >= 0 && n < s.min {
		if s.min == 1 {
			return nil, issue(path, "must not be empty")
		}
		return nil, issue(path, fmt.Sprintf("must be at least %d characters", s.min))
	}
	if s.max >= 0 && n > s.max {
		return nil, issue(path, fmt.Sprintf("must be at most %d characters", s.max))
	}
	if s.pattern != nil && !s.pattern.MatchString(str) {
		return nil, issue(path, "has an invalid format")
	}
	for _, tag := range s.tags {
		if msg, ok := validation.Var(str, tag); !ok {
			return nil, issue(path, msg)
		}
	}
	return str, nil
}

func (s *StringSchema) JSONSchema() map[string]any {
	out := map[string]any{"type": "string"}
	if s.min >= 0 {
		out["minLength"] = s.min
	}
	if s.max >= 0 {
		out["maxLength"] = s.max
	}
	if s.pattern != nil {
		out["pattern"] = s.pattern.String()
	}
	if s.format != "" {
		out["format"] = s.format
	}
	return out
}

func formatForTag(tag string) string {
	switch tag {
	case "email":
		return "email"
	case "url", "http_url":
		return "uri"
	case "uuid":
		return "uuid"
	default:
		return ""
	}
}

// IntSchema validates integers and yields int64.
type IntSchema struct {
	min, max *int64
	clamp    *[2]int64
	coerce   bool
}

// Int returns an integer schema.
func Int() *IntSchema { return &IntSchema{} }

// Min rejects values below n.
func (s *IntSchema) Min(n int64) *IntSchema {
	c := *s
	c.min = &n
	return &c
}

// Max rejects values above n.
func (s *IntSchema) Max(n int64) *IntSchema {
	c := *s
	c.max = &n
	return &c
}

// Clamp coerces out-of-range values into [lo, hi] instead of rejecting them.
func (s *IntSchema) Clamp(lo, hi int64) *IntSchema {
	c := *s
	c.clamp = &[2]int64{lo, hi}
	return &c
}

// Coerce accepts decimal strings, as found in query strings and path params.
func (s *IntSchema) Coerce() *IntSchema {
	c := *s
	c.coerce = true
	return &c
}

func (s *IntSchema) parse(v any, path string) (any, []dErrors.Issue) {
	n, ok := toInt64(v, s.coerce)
	if !ok {
		return nil, issue(path, "must be an integer")
	}
	if s.clamp != nil {
		return min(max(n, s.clamp[0]), s.clamp[1]), nil
	}
	if s.min != nil && n < *s.min {
		return nil, issue(path, fmt.Sprintf("must be at least %d", *s.min))
	}
	if s.max != nil && n > *s.max {
		return nil, issue(path, fmt.Sprintf("must be at most %d", *s.max))
	}
	return n, nil
}

func (s *IntSchema) JSONSchema() map[string]any {
	out := map[string]any{"type": "integer"}
	switch {
	case s.clamp != nil:
		out["minimum"] = s.clamp[0]
		out["maximum"] = s.clamp[1]
	default:
		if s.min != nil {
			out["minimum"] = *s.min
		}
		if s.max != nil {
			out["maximum"] = *s.max
		}
	}
	return out
}

func toInt64(v any, coerce bool) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		return parseIntString(string(n))
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float64:
		return floatToInt(n)
	case float32:
		return floatToInt(float64(n))
	case string:
		if !coerce {
			return 0, false
		}
		return parseIntString(strings.TrimSpace(n))
	}
	return 0, false
}

func parseIntString(s string) (int64, bool) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return floatToInt(f)
}

func floatToInt(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, false
	}
	return int64(f), true
}

// NumberSchema validates finite numbers and yields float64.
type NumberSchema struct {
	min, max *float64
}

// Number returns a number schema.
func Number() *NumberSchema { return &NumberSchema{} }

// Min rejects values below n.
func (s *NumberSchema) Min(n float64) *NumberSchema {
	c := *s
	c.min = &n
	return &c
}

// Max rejects values above n.
func (s *NumberSchema) Max(n float64) *NumberSchema {
	c := *s
	c.max = &n
	return &c
}

func (s *NumberSchema) parse(v any, path string) (any, []dErrors.Issue) {
	var f float64
	switch n := v.(type) {
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return nil, issue(path, "must be a number")
		}
		f = parsed
	case float64:
		f = n
	case float32:
		f = float64(n)
	default:
		i, ok := toInt64(v, false)
		if !ok {
			return nil, issue(path, "must be a number")
		}
		f = float64(i)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, issue(path, "must be a finite number")
	}
	if s.min != nil && f < *s.min {
		return nil, issue(path, fmt.Sprintf("must be at least %v", *s.min))
	}
	if s.max != nil && f > *s.max {
		return nil, issue(path, fmt.Sprintf("must be at most %v", *s.max))
	}
	return f, nil
}

func (s *NumberSchema) JSONSchema() map[string]any {
	out := map[string]any{"type": "number"}
	if s.min != nil {
		out["minimum"] = *s.min
	}
	if s.max != nil {
		out["maximum"] = *s.max
	}
	return out
}

// BoolSchema validates booleans.
type BoolSchema struct {
	coerce bool
}

// Bool returns a boolean schema.
func Bool() *BoolSchema { return &BoolSchema{} }

// Coerce accepts "true" and "false" strings, as found in query strings.
func (s *BoolSchema) Coerce() *BoolSchema {
	return &BoolSchema{coerce: true}
}

func (s *BoolSchema) parse(v any, path string) (any, []dErrors.Issue) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		if s.coerce {
			switch b {
			case "true":
				return true, nil
			case "false":
				return false, nil
			}
		}
	}
	return nil, issue(path, "must be a boolean")
}

func (s *BoolSchema) JSONSchema() map[string]any {
	return map[string]any{"type": "boolean"}
}

type idSchema struct{}

// ID validates branded identifiers. On the wire identifiers must be decimal
// strings; JSON numbers are rejected. Native Go integers (persistence rows)
// are accepted.
func ID() Schema { return idSchema{} }

func (idSchema) parse(v any, path string) (any, []dErrors.Issue) {
	if _, isNumber := v.(json.Number); isNumber {
		return nil, issue(path, "must be a decimal-digit string")
	}
	if v == nil {
		return nil, issue(path, "must be a decimal-digit string")
	}
	id, err := domain.EncodeID(v)
	if err != nil {
		return nil, issue(path, "must be a decimal-digit string")
	}
	return id, nil
}

func (idSchema) JSONSchema() map[string]any {
	return map[string]any{"type": "string", "pattern": `^\d+$`}
}

type timestampSchema struct{}

// Timestamp validates RFC3339 date-times with a zone designator.
func Timestamp() Schema { return timestampSchema{} }

func (timestampSchema) parse(v any, path string) (any, []dErrors.Issue) {
	switch t := v.(type) {
	case domain.Timestamp:
		if t.IsZero() {
			return nil, issue(path, "must be an RFC3339 date-time")
		}
		return t, nil
	case time.Time:
		return domain.TimestampFromTime(t), nil
	case string:
		ts, err := domain.EncodeTimestamp(t)
		if err != nil {
			return nil, issue(path, "must be an RFC3339 date-time with a timezone designator")
		}
		return ts, nil
	}
	return nil, issue(path, "must be an RFC3339 date-time")
}

func (timestampSchema) JSONSchema() map[string]any {
	return map[string]any{"type": "string", "format": "date-time"}
}

type dateSchema struct{}

// Date validates calendar dates in YYYY-MM-DD form and yields the string.
func Date() Schema { return dateSchema{} }

const dateLayout = "2006-01-02"

func (dateSchema) parse(v any, path string) (any, []dErrors.Issue) {
	switch d := v.(type) {
	case time.Time:
		return d.Format(dateLayout), nil
	case string:
		if len(d) == len(dateLayout) {
			if _, err := time.Parse(dateLayout, d); err == nil {
				return d, nil
			}
		}
	}
	return nil, issue(path, "must be a date (YYYY-MM-DD)")
}

func (dateSchema) JSONSchema() map[string]any {
	return map[string]any{"type": "string", "format": "date"}
}

type payloadSchema struct{}

// JSON validates an open object whose internal shape is unconstrained.
func JSON() Schema { return payloadSchema{} }

func (payloadSchema) parse(v any, path string) (any, []dErrors.Issue) {
	var m map[string]any
	switch p := v.(type) {
	case map[string]any:
		m = p
	case domain.JSONPayload:
		m = p
	default:
		return nil, issue(path, "must be an object")
	}
	payload, err := domain.ValidatePayload(m)
	if err != nil {
		return nil, issue(path, "must be JSON-serializable")
	}
	return payload, nil
}

func (payloadSchema) JSONSchema() map[string]any {
	return map[string]any{"type": "object", "additionalProperties": true}
}

type anySchema struct{}

// Any accepts every value unchanged.
func Any() Schema { return anySchema{} }

func (anySchema) parse(v any, _ string) (any, []dErrors.Issue) { return v, nil }

func (anySchema) JSONSchema() map[string]any { return map[string]any{} }

type literalSchema struct {
	value any
}

// Literal accepts exactly one string, bool or integer value.
func Literal(v any) Schema {
	switch v.(type) {
	case string, bool, int, int64:
		return literalSchema{value: v}
	}
	panic(fmt.Sprintf("schema: unsupported literal type %T", v))
}

func (s literalSchema) parse(v any, path string) (any, []dErrors.Issue) {
	switch want := s.value.(type) {
	case int:
		if n, ok := toInt64(v, false); ok && n == int64(want) {
			return int64(want), nil
		}
	case int64:
		if n, ok := toInt64(v, false); ok && n == want {
			return want, nil
		}
	default:
		if v == s.value {
			return v, nil
		}
	}
	return nil, issue(path, fmt.Sprintf("must be %v", s.value))
}

func (s literalSchema) JSONSchema() map[string]any {
	return map[string]any{"const": s.value}
}

// EnumSchema accepts one of a fixed set of strings.
type EnumSchema struct {
	values []string
	set    map[string]struct{}
}

// Enum returns a schema accepting exactly the given strings.
func Enum(values ...string) *EnumSchema {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return &EnumSchema{values: append([]string(nil), values...), set: set}
}

// Values returns the accepted strings in declaration order.
func (s *EnumSchema) Values() []string {
	return append([]string(nil), s.values...)
}

func (s *EnumSchema) parse(v any, path string) (any, []dErrors.Issue) {
	if str, ok := v.(string); ok {
		if _, ok := s.set[str]; ok {
			return str, nil
		}
	}
	return nil, issue(path, fmt.Sprintf("must be one of [%s]", strings.Join(s.values, " ")))
}

func (s *EnumSchema) JSONSchema() map[string]any {
	return map[string]any{"type": "string", "enum": s.Values()}
}
