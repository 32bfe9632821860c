// Package schema implements declarative parameter schemas for tools: field
// declarations with types, defaults and constraints, required sets, nested
// object / list-of-object fields and named cross-field rules, plus a
// validator that turns an untyped argument bag into a typed, read-only
// Params instance or a list of validation failures.
//
// Grounded on a JSON-Schema-like shape: JSONSchema() renders the declaration
// in the minimal map form model providers expect for function calling.
package schema

import (
	"fmt"
	"regexp"
)

// Kind enumerates the supported field types.
type Kind int

const (
	// KindString accepts string values.
	KindString Kind = iota
	// KindInt accepts integer values (whole-number float64 from JSON counts).
	KindInt
	// KindFloat accepts any numeric value.
	KindFloat
	// KindBool accepts boolean values.
	KindBool
	// KindObject accepts a map validated against a nested schema.
	KindObject
	// KindObjectList accepts a list of maps, each validated against a nested schema.
	KindObjectList
)

// String returns the JSON-schema type name for the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindFloat:
		return "number"
	case KindBool:
		return "boolean"
	case KindObject:
		return "object"
	case KindObjectList:
		return "array"
	default:
		return "unknown"
	}
}

// Field is one declared parameter. Construct via the typed helpers (String,
// Int, Float, Bool, Object, ObjectList); immutable afterwards.
type Field struct {
	name        string
	kind        Kind
	description string
	def         any
	hasDefault  bool
	min, max    *float64
	pattern     *regexp.Regexp
	nested      *Schema
}

// Name returns the field name.
func (f *Field) Name() string { return f.name }

// Kind returns the field's declared type.
func (f *Field) Kind() Kind { return f.kind }

// Option customizes a field declaration.
type Option func(*Field)

// WithDefault supplies a value used when the argument bag omits the field.
// A defaulted field satisfies Require.
func WithDefault(v any) Option {
	return func(f *Field) {
		f.def = v
		f.hasDefault = true
	}
}

// WithMin attaches a lower bound to a numeric field (inclusive).
func WithMin(min float64) Option {
	return func(f *Field) { f.min = &min }
}

// WithMax attaches an upper bound to a numeric field (inclusive).
func WithMax(max float64) Option {
	return func(f *Field) { f.max = &max }
}

// WithPattern attaches a regular expression constraint to a string field.
// The expression is compiled eagerly; an invalid expression panics at
// declaration time, before any validation runs.
func WithPattern(expr string) Option {
	re := regexp.MustCompile(expr)
	return func(f *Field) { f.pattern = re }
}

func newField(name string, kind Kind, description string, opts ...Option) *Field {
	f := &Field{name: name, kind: kind, description: description}
	for _, o := range opts {
		o(f)
	}
	return f
}

// String declares a string field.
func String(name, description string, opts ...Option) *Field {
	return newField(name, KindString, description, opts...)
}

// Int declares an integer field.
func Int(name, description string, opts ...Option) *Field {
	return newField(name, KindInt, description, opts...)
}

// Float declares a floating point field.
func Float(name, description string, opts ...Option) *Field {
	return newField(name, KindFloat, description, opts...)
}

// Bool declares a boolean field.
func Bool(name, description string, opts ...Option) *Field {
	return newField(name, KindBool, description, opts...)
}

// Object declares a nested object field validated against the given schema.
func Object(name, description string, nested *Schema, opts ...Option) *Field {
	f := newField(name, KindObject, description, opts...)
	f.nested = nested
	return f
}

// ObjectList declares a list-of-objects field; each element is validated
// against the given schema with indexed failure paths (items[1].price).
func ObjectList(name, description string, nested *Schema, opts ...Option) *Field {
	f := newField(name, KindObjectList, description, opts...)
	f.nested = nested
	return f
}

// Rule is a named cross-field predicate evaluated against the fully typed
// parameter set, after all per-field checks pass.
type Rule struct {
	Name  string
	Check func(p *Params) error
}

// Schema is a named, immutable set of field declarations with a required
// subset and custom rules. It is shared read-only across all validations of
// a tool and is safe for concurrent use.
type Schema struct {
	name     string
	fields   []*Field
	index    map[string]*Field
	required map[string]bool
	rules    []Rule
}

// New constructs a schema from ordered field declarations. Duplicate field
// names panic at declaration time.
func New(name string, fields ...*Field) *Schema {
	s := &Schema{
		name:     name,
		fields:   fields,
		index:    make(map[string]*Field, len(fields)),
		required: map[string]bool{},
	}
	for _, f := range fields {
		if _, dup := s.index[f.name]; dup {
			panic(fmt.Sprintf("schema %s: duplicate field %s", name, f.name))
		}
		s.index[f.name] = f
	}
	return s
}

// Require marks the named fields as required. Unknown names panic at
// declaration time.
func (s *Schema) Require(names ...string) *Schema {
	for _, n := range names {
		if _, ok := s.index[n]; !ok {
			panic(fmt.Sprintf("schema %s: required field %s not declared", s.name, n))
		}
		s.required[n] = true
	}
	return s
}

// Rule attaches a named cross-field predicate.
func (s *Schema) Rule(name string, check func(p *Params) error) *Schema {
	s.rules = append(s.rules, Rule{Name: name, Check: check})
	return s
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// Fields returns the ordered field declarations.
func (s *Schema) Fields() []*Field { return s.fields }

// Required reports whether the named field is required.
func (s *Schema) Required(name string) bool { return s.required[name] }

// JSONSchema renders the declaration as a minimal JSON-schema map suitable
// for model function-calling definitions.
func (s *Schema) JSONSchema() map[string]any {
	properties := make(map[string]any, len(s.fields))
	var required []string
	for _, f := range s.fields {
		prop := map[string]any{"type": f.kind.String()}
		if f.description != "" {
			prop["description"] = f.description
		}
		if f.min != nil {
			prop["minimum"] = *f.min
		}
		if f.max != nil {
			prop["maximum"] = *f.max
		}
		if f.pattern != nil {
			prop["pattern"] = f.pattern.String()
		}
		switch f.kind {
		case KindObject:
			if f.nested != nil {
				nested := f.nested.JSONSchema()
				prop["properties"] = nested["properties"]
				if req, ok := nested["required"]; ok {
					prop["required"] = req
				}
			}
		case KindObjectList:
			if f.nested != nil {
				prop["items"] = f.nested.JSONSchema()
			}
		}
		properties[f.name] = prop
		if s.required[f.name] {
			required = append(required, f.name)
		}
	}
	out := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}
