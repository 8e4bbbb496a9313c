package schema

import (
	"fmt"
	"reflect"

	dErrors "carehub/pkg/domain-errors"
)

// ArraySchema validates a list whose elements all match one schema.
type ArraySchema struct {
	elem     Schema
	min, max int
}

// Array returns a schema for lists of elem.
func Array(elem Schema) *ArraySchema {
	return &ArraySchema{elem: elem, min: -1, max: -1}
}

// Min sets the minimum number of items.
func (s *ArraySchema) Min(n int) *ArraySchema {
	c := *s
	c.min = n
	return &c
}

// Max sets the maximum number of items.
func (s *ArraySchema) Max(n int) *ArraySchema {
	c := *s
	c.max = n
	return &c
}

// Elem returns the element schema.
func (s *ArraySchema) Elem() Schema { return s.elem }

func (s *ArraySchema) parse(v any, path string) (any, []dErrors.Issue) {
	items, ok := asSlice(v)
	if !ok {
		return nil, issue(path, "must be an array")
	}
	if s.min >= 0 && len(items) < s.min {
		return nil, issue(path, fmt.Sprintf("must contain at least %d items", s.min))
	}
	if s.max >= 0 && len(items) > s.max {
		return nil, issue(path, fmt.Sprintf("must contain at most %d items", s.max))
	}
	out := make([]any, len(items))
	var issues []dErrors.Issue
	for i, item := range items {
		parsed, itemIssues := s.elem.parse(normalize(item), index(path, i))
		if len(itemIssues) > 0 {
			issues = append(issues, itemIssues...)
			continue
		}
		out[i] = parsed
	}
	if len(issues) > 0 {
		return nil, issues
	}
	return out, nil
}

func (s *ArraySchema) JSONSchema() map[string]any {
	out := map[string]any{"type": "array", "items": s.elem.JSONSchema()}
	if s.min >= 0 {
		out["minItems"] = s.min
	}
	if s.max >= 0 {
		out["maxItems"] = s.max
	}
	return out
}

func asSlice(v any) ([]any, bool) {
	if items, ok := v.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(v)
	if v == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	if rv.Kind() == reflect.Slice && rv.IsNil() {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}
