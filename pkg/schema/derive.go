package schema

import "fmt"

// Identity and audit fields are assigned by the server on every entity.
const (
	FieldID        = "id"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
)

func isServerAssigned(f Field) bool {
	switch f.name {
	case FieldID, FieldCreatedAt, FieldUpdatedAt:
		return true
	}
	return f.serverOwned
}

// CreateInput derives the create-request schema: identity, audit and
// server-owned fields are stripped along with any explicitly excluded names.
// Required fields stay required; defaulted fields may be omitted and receive
// their default in the parsed result.
func (o *Object) CreateInput(excluded ...string) *Object {
	skip := toSet(excluded)
	fields := make([]Field, 0, len(o.fields))
	for _, f := range o.fields {
		if isServerAssigned(f) {
			continue
		}
		if _, ok := skip[f.name]; ok {
			continue
		}
		fields = append(fields, f)
	}
	return newObject("Create"+o.name, fields, o.unknown, o.refinements)
}

// UpdateInput derives the partial-update schema: CreateInput with every field
// optional. Defaults are dropped so an omitted field is left untouched rather
// than reset.
func (o *Object) UpdateInput(excluded ...string) *Object {
	create := o.CreateInput(excluded...)
	fields := create.fields
	for i := range fields {
		fields[i].required = false
		fields[i].hasDefault = false
		fields[i].def = nil
	}
	return newObject("Update"+o.name, fields, o.unknown, o.refinements)
}

// Extend returns a copy with extra fields. A field with an existing name
// replaces the original in place.
func (o *Object) Extend(fields ...Field) *Object {
	out := append([]Field(nil), o.fields...)
	for _, f := range fields {
		if i, ok := o.index[f.name]; ok {
			out[i] = f
			continue
		}
		out = append(out, f)
	}
	return newObject(o.name, dedupe(out), o.unknown, o.refinements)
}

// Merge intersects two objects structurally. On a name clash the field from
// other wins. Refinements of both sides are kept.
func (o *Object) Merge(other *Object) *Object {
	merged := o.Extend(other.fields...)
	merged.refinements = append(merged.refinements, other.refinements...)
	return merged
}

// Pick keeps only the named fields. Unknown names panic.
func (o *Object) Pick(names ...string) *Object {
	fields := make([]Field, 0, len(names))
	for _, name := range names {
		f, ok := o.Field(name)
		if !ok {
			panic(fmt.Sprintf("schema: %s has no field %q", o.displayName(), name))
		}
		fields = append(fields, f)
	}
	return newObject(o.name, fields, o.unknown, nil)
}

// Omit drops the named fields.
func (o *Object) Omit(names ...string) *Object {
	skip := toSet(names)
	fields := make([]Field, 0, len(o.fields))
	for _, f := range o.fields {
		if _, ok := skip[f.name]; !ok {
			fields = append(fields, f)
		}
	}
	return newObject(o.name, fields, o.unknown, o.refinements)
}

// Partial marks every field optional while keeping defaults.
func (o *Object) Partial() *Object {
	fields := append([]Field(nil), o.fields...)
	for i := range fields {
		fields[i].required = false
	}
	return newObject(o.name, fields, o.unknown, o.refinements)
}

// Strict rejects keys the object does not declare.
func (o *Object) Strict() *Object {
	return newObject(o.name, o.fields, unknownStrict, o.refinements)
}

// Passthrough keeps undeclared keys in the parsed result unvalidated.
func (o *Object) Passthrough() *Object {
	return newObject(o.name, o.fields, unknownPassthrough, o.refinements)
}

// Refine adds a cross-field check.
func (o *Object) Refine(fn Refinement) *Object {
	return newObject(o.name, o.fields, o.unknown, append(append([]Refinement(nil), o.refinements...), fn))
}

// Named returns a copy carrying a different entity name.
func (o *Object) Named(name string) *Object {
	return newObject(name, o.fields, o.unknown, o.refinements)
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// dedupe keeps the last declaration of each name at the position of its
// first occurrence; Extend may be passed the same name twice.
func dedupe(fields []Field) []Field {
	pos := make(map[string]int, len(fields))
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		if i, ok := pos[f.name]; ok {
			out[i] = f
			continue
		}
		pos[f.name] = len(out)
		out = append(out, f)
	}
	return out
}
