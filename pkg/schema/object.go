package schema

import (
	"fmt"
	"reflect"
	"sort"

	dErrors "carehub/pkg/domain-errors"
)

// Field is one named member of an object schema. Modifiers return copies.
type Field struct {
	name        string
	schema      Schema
	required    bool
	nullable    bool
	hasDefault  bool
	def         any
	serverOwned bool
	description string
}

// Required declares a field that must be present.
func Required(name string, s Schema) Field {
	return Field{name: name, schema: s, required: true}
}

// Optional declares a field that may be omitted.
func Optional(name string, s Schema) Field {
	return Field{name: name, schema: s}
}

// Nullable allows an explicit JSON null.
func (f Field) Nullable() Field {
	f.nullable = true
	return f
}

// Default injects v into the parsed result when the field is absent. The
// value is validated against the field schema at declaration time and panics
// if it does not conform.
func (f Field) Default(v any) Field {
	parsed, issues := f.schema.parse(normalize(v), f.name)
	if len(issues) > 0 {
		panic(fmt.Sprintf("schema: default for %q: %s", f.name, issues[0]))
	}
	f.hasDefault = true
	f.def = parsed
	return f
}

// ServerOwned marks a field assigned by the server; it is stripped from
// create and update inputs.
func (f Field) ServerOwned() Field {
	f.serverOwned = true
	return f
}

// Describe attaches a human-readable description used in JSON Schema export.
func (f Field) Describe(text string) Field {
	f.description = text
	return f
}

func (f Field) Name() string        { return f.name }
func (f Field) Schema() Schema      { return f.schema }
func (f Field) IsRequired() bool    { return f.required }
func (f Field) IsNullable() bool    { return f.nullable }
func (f Field) HasDefault() bool    { return f.hasDefault }
func (f Field) DefaultValue() any   { return cloneValue(f.def) }
func (f Field) IsServerOwned() bool { return f.serverOwned }

// mustBePresent reports whether input validation fails when the field is absent.
func (f Field) mustBePresent() bool {
	return f.required && !f.hasDefault
}

type unknownPolicy int

const (
	unknownStrip unknownPolicy = iota
	unknownStrict
	unknownPassthrough
)

// Refinement is a cross-field check run after every field parsed cleanly.
// Issue paths are relative to the object. Refinements must tolerate absent
// keys since derived schemas may strip or relax the fields they read.
type Refinement func(v map[string]any) []dErrors.Issue

// Object is an entity or nested object schema. It is immutable: derivation
// and composition methods return new objects.
type Object struct {
	name        string
	fields      []Field
	index       map[string]int
	unknown     unknownPolicy
	refinements []Refinement
}

// DefineEntity declares a named entity schema. Duplicate field names are a
// declaration error and panic.
func DefineEntity(name string, fields ...Field) *Object {
	return newObject(name, fields, unknownStrip, nil)
}

// Shape declares an anonymous object, typically nested inside an entity.
func Shape(fields ...Field) *Object {
	return newObject("", fields, unknownStrip, nil)
}

func newObject(name string, fields []Field, unknown unknownPolicy, refinements []Refinement) *Object {
	o := &Object{
		name:        name,
		fields:      append([]Field(nil), fields...),
		index:       make(map[string]int, len(fields)),
		unknown:     unknown,
		refinements: append([]Refinement(nil), refinements...),
	}
	for i, f := range o.fields {
		if f.name == "" {
			panic(fmt.Sprintf("schema: %s: field %d has no name", o.displayName(), i))
		}
		if f.schema == nil {
			panic(fmt.Sprintf("schema: %s.%s has no schema", o.displayName(), f.name))
		}
		if _, dup := o.index[f.name]; dup {
			panic(fmt.Sprintf("schema: %s declares field %q twice", o.displayName(), f.name))
		}
		o.index[f.name] = i
	}
	return o
}

func (o *Object) displayName() string {
	if o.name == "" {
		return "object"
	}
	return o.name
}

// Name returns the entity name, empty for anonymous shapes.
func (o *Object) Name() string { return o.name }

// Fields returns the fields in declaration order.
func (o *Object) Fields() []Field {
	return append([]Field(nil), o.fields...)
}

// Field looks up a field by name.
func (o *Object) Field(name string) (Field, bool) {
	i, ok := o.index[name]
	if !ok {
		return Field{}, false
	}
	return o.fields[i], true
}

// Has reports whether the object declares a field with this name.
func (o *Object) Has(name string) bool {
	_, ok := o.index[name]
	return ok
}

// RequiredFields lists the fields that input must carry.
func (o *Object) RequiredFields() []string {
	var out []string
	for _, f := range o.fields {
		if f.mustBePresent() {
			out = append(out, f.name)
		}
	}
	return out
}

// IsStrict reports whether unknown keys are rejected.
func (o *Object) IsStrict() bool { return o.unknown == unknownStrict }

// Validate parses input as this object.
func (o *Object) Validate(input any) (map[string]any, error) {
	out, err := Validate(o, input)
	if err != nil {
		return nil, err
	}
	return out.(map[string]any), nil
}

// ValidateJSON parses a raw JSON document as this object.
func (o *Object) ValidateJSON(raw []byte) (map[string]any, error) {
	v, err := DecodeJSON(raw)
	if err != nil {
		return nil, err
	}
	return o.Validate(v)
}

func (o *Object) parse(v any, path string) (any, []dErrors.Issue) {
	in, ok := asMap(v)
	if !ok {
		return nil, issue(path, "must be an object")
	}
	out := make(map[string]any, len(o.fields))
	var issues []dErrors.Issue
	for _, f := range o.fields {
		fieldPath := join(path, f.name)
		raw, present := in[f.name]
		switch {
		case !present:
			if f.hasDefault {
				out[f.name] = cloneValue(f.def)
			} else if f.required {
				issues = append(issues, dErrors.Issue{Path: fieldPath, Message: "is required"})
			}
		case raw == nil:
			if f.nullable {
				out[f.name] = nil
			} else {
				issues = append(issues, dErrors.Issue{Path: fieldPath, Message: "must not be null"})
			}
		default:
			parsed, fieldIssues := f.schema.parse(normalize(raw), fieldPath)
			if len(fieldIssues) > 0 {
				issues = append(issues, fieldIssues...)
				continue
			}
			out[f.name] = parsed
		}
	}

	if o.unknown != unknownStrip {
		var extra []string
		for key := range in {
			if !o.Has(key) {
				extra = append(extra, key)
			}
		}
		sort.Strings(extra)
		for _, key := range extra {
			if o.unknown == unknownStrict {
				issues = append(issues, dErrors.Issue{Path: join(path, key), Message: "unrecognized field"})
				continue
			}
			out[key] = in[key]
		}
	}

	if len(issues) > 0 {
		return nil, issues
	}
	for _, refine := range o.refinements {
		for _, is := range refine(out) {
			issues = append(issues, dErrors.Issue{Path: join(path, is.Path), Message: is.Message})
		}
	}
	if len(issues) > 0 {
		return nil, issues
	}
	return out, nil
}

func (o *Object) JSONSchema() map[string]any {
	props := make(map[string]any, len(o.fields))
	for _, f := range o.fields {
		prop := f.schema.JSONSchema()
		if f.nullable {
			prop = map[string]any{"anyOf": []any{prop, map[string]any{"type": "null"}}}
		}
		if f.serverOwned {
			prop["readOnly"] = true
		}
		if f.hasDefault {
			prop["default"] = f.def
		}
		if f.description != "" {
			prop["description"] = f.description
		}
		props[f.name] = prop
	}
	out := map[string]any{"type": "object", "properties": props}
	if o.name != "" {
		out["title"] = o.name
	}
	if req := o.RequiredFields(); len(req) > 0 {
		out["required"] = req
	}
	switch o.unknown {
	case unknownStrict:
		out["additionalProperties"] = false
	case unknownPassthrough:
		out["additionalProperties"] = true
	}
	return out
}

func asMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if v == nil || rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String || rv.IsNil() {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// cloneValue copies maps and slices so injected defaults are never shared
// between parsed results.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	}
	return v
}
