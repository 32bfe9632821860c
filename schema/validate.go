package schema

import "fmt"

// ValidationError describes one validation failure with the dotted/indexed
// path of the offending field.
type ValidationError struct {
	Field   string `json:"field"`
	Value   any    `json:"value,omitempty"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// Validate checks an untyped argument bag against the schema. It returns the
// typed parameter instance when every check passes, otherwise the list of
// failures. Validation never panics; handler panics are a tool-executor
// concern, not a schema one.
//
// Check order, per field declaration order:
//  1. type conversion (mismatch names the field and expected type)
//  2. requiredness (absence with no default)
//  3. numeric bounds and string patterns
//  4. nested object / list recursion with path attribution
//
// Named cross-field rules run last and only when all per-field checks
// passed, so their view of Params is fully typed.
func (s *Schema) Validate(args map[string]any) (*Params, []ValidationError) {
	return s.validate(args, "")
}

func (s *Schema) validate(args map[string]any, path string) (*Params, []ValidationError) {
	var failures []ValidationError
	values := make(map[string]any, len(s.fields))

	for _, f := range s.fields {
		fieldPath := joinPath(path, f.name)
		raw, present := args[f.name]
		if !present {
			if f.hasDefault {
				raw = f.def
				present = true
			} else if s.required[f.name] {
				failures = append(failures, ValidationError{
					Field:   fieldPath,
					Message: "required field is missing",
				})
				continue
			} else {
				continue
			}
		}

		typed, errs := s.convertField(f, raw, fieldPath)
		if len(errs) > 0 {
			failures = append(failures, errs...)
			continue
		}
		values[f.name] = typed
	}

	if len(failures) > 0 {
		return nil, failures
	}

	params := &Params{schema: s, values: values}

	for _, rule := range s.rules {
		if err := rule.Check(params); err != nil {
			failures = append(failures, ValidationError{
				Field:   joinPath(path, rule.Name),
				Message: err.Error(),
			})
		}
	}
	if len(failures) > 0 {
		return nil, failures
	}
	return params, nil
}

// convertField coerces one raw value into its declared type, applying bound
// and pattern constraints. Nested kinds recurse into the referenced schema.
func (s *Schema) convertField(f *Field, raw any, path string) (any, []ValidationError) {
	switch f.kind {
	case KindString:
		v, ok := raw.(string)
		if !ok {
			return nil, []ValidationError{typeMismatch(path, raw, f.kind)}
		}
		if f.pattern != nil && !f.pattern.MatchString(v) {
			return nil, []ValidationError{{
				Field:   path,
				Value:   v,
				Message: fmt.Sprintf("value does not match pattern %s", f.pattern.String()),
			}}
		}
		return v, nil

	case KindInt:
		v, ok := toInt(raw)
		if !ok {
			return nil, []ValidationError{typeMismatch(path, raw, f.kind)}
		}
		if err := checkBounds(f, float64(v), path); err != nil {
			return nil, []ValidationError{*err}
		}
		return v, nil

	case KindFloat:
		v, ok := toFloat(raw)
		if !ok {
			return nil, []ValidationError{typeMismatch(path, raw, f.kind)}
		}
		if err := checkBounds(f, v, path); err != nil {
			return nil, []ValidationError{*err}
		}
		return v, nil

	case KindBool:
		v, ok := raw.(bool)
		if !ok {
			return nil, []ValidationError{typeMismatch(path, raw, f.kind)}
		}
		return v, nil

	case KindObject:
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, []ValidationError{typeMismatch(path, raw, f.kind)}
		}
		nested, errs := f.nested.validate(m, path)
		if len(errs) > 0 {
			return nil, errs
		}
		return nested, nil

	case KindObjectList:
		list, ok := toAnySlice(raw)
		if !ok {
			return nil, []ValidationError{typeMismatch(path, raw, f.kind)}
		}
		var failures []ValidationError
		typed := make([]*Params, 0, len(list))
		for i, el := range list {
			elPath := fmt.Sprintf("%s[%d]", path, i)
			m, ok := el.(map[string]any)
			if !ok {
				failures = append(failures, typeMismatch(elPath, el, KindObject))
				continue
			}
			nested, errs := f.nested.validate(m, elPath)
			if len(errs) > 0 {
				failures = append(failures, errs...)
				continue
			}
			typed = append(typed, nested)
		}
		if len(failures) > 0 {
			return nil, failures
		}
		return typed, nil
	}
	return nil, []ValidationError{{Field: path, Message: "unsupported field kind"}}
}

func checkBounds(f *Field, v float64, path string) *ValidationError {
	if f.min != nil && v < *f.min {
		return &ValidationError{
			Field:   path,
			Value:   v,
			Message: fmt.Sprintf("value %v is below minimum %v", v, *f.min),
		}
	}
	if f.max != nil && v > *f.max {
		return &ValidationError{
			Field:   path,
			Value:   v,
			Message: fmt.Sprintf("value %v is above maximum %v", v, *f.max),
		}
	}
	return nil
}

func typeMismatch(path string, value any, expected Kind) ValidationError {
	return ValidationError{
		Field:   path,
		Value:   value,
		Message: fmt.Sprintf("expected type %s, got %T", expected, value),
	}
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// toInt accepts native integer types plus whole-number float64, which JSON
// unmarshaling produces for every number.
func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func toAnySlice(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []map[string]any:
		out := make([]any, len(l))
		for i, m := range l {
			out[i] = m
		}
		return out, true
	}
	return nil, false
}
