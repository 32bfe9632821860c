package schema

// Params is the typed, read-only view of a validated argument bag. Lookups
// return the zero value when the field is absent; Has distinguishes absence
// from zero.
type Params struct {
	schema *Schema
	values map[string]any
}

// Schema returns the schema this instance was validated against.
func (p *Params) Schema() *Schema { return p.schema }

// Has reports whether the field carries a value (supplied or defaulted).
func (p *Params) Has(name string) bool {
	_, ok := p.values[name]
	return ok
}

// String returns a string field's value.
func (p *Params) String(name string) string {
	v, _ := p.values[name].(string)
	return v
}

// Int returns an integer field's value.
func (p *Params) Int(name string) int64 {
	v, _ := p.values[name].(int64)
	return v
}

// Float returns a numeric field's value.
func (p *Params) Float(name string) float64 {
	v, _ := p.values[name].(float64)
	return v
}

// Bool returns a boolean field's value.
func (p *Params) Bool(name string) bool {
	v, _ := p.values[name].(bool)
	return v
}

// Object returns a nested object field as its own typed Params.
func (p *Params) Object(name string) *Params {
	v, _ := p.values[name].(*Params)
	return v
}

// ObjectList returns a list-of-objects field, each element typed.
func (p *Params) ObjectList(name string) []*Params {
	v, _ := p.values[name].([]*Params)
	return v
}

// Raw returns a shallow copy of the typed value map. Nested objects appear
// as *Params.
func (p *Params) Raw() map[string]any {
	out := make(map[string]any, len(p.values))
	for k, v := range p.values {
		out[k] = v
	}
	return out
}
