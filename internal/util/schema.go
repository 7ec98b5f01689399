package util

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// ValidationError reports the first argument or output field that does not
// match its JSON schema.
type ValidationError struct {
	Field   string `json:"field"`
	Value   any    `json:"value"`
	Message string `json:"message"`
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// CreateSchema derives an object schema from a struct value or pointer.
//
// Rules:
//   - the json tag names the property; "-" skips the field
//   - omitempty and pointer fields are optional, everything else is required
//   - the description tag becomes the property description
//   - nested structs and slices recurse, so array properties always carry
//     an "items" schema (strict providers reject arrays without one)
func CreateSchema(v any) map[string]any {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}
	return objectSchema(t)
}

func objectSchema(t reflect.Type) map[string]any {
	props := map[string]any{}
	var required []string

	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		name, optional, skip := jsonField(f)
		if skip {
			continue
		}

		prop := typeSchema(f.Type)
		if d := f.Tag.Get("description"); d != "" {
			prop["description"] = d
		}
		props[name] = prop

		if !optional && f.Type.Kind() != reflect.Ptr {
			required = append(required, name)
		}
	}

	schema := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func typeSchema(t reflect.Type) map[string]any {
	switch t.Kind() {
	case reflect.Ptr:
		return typeSchema(t.Elem())
	case reflect.String:
		return map[string]any{"type": "string"}
	case reflect.Bool:
		return map[string]any{"type": "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return map[string]any{"type": "integer"}
	case reflect.Float32, reflect.Float64:
		return map[string]any{"type": "number"}
	case reflect.Slice, reflect.Array:
		return map[string]any{"type": "array", "items": typeSchema(t.Elem())}
	case reflect.Struct:
		return objectSchema(t)
	case reflect.Map:
		return map[string]any{"type": "object"}
	default:
		return map[string]any{"type": "string"}
	}
}

// jsonField resolves the property name of f and whether it may be omitted.
func jsonField(f reflect.StructField) (name string, optional, skip bool) {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = f.Name
	}
	return name, slices.Contains(strings.Split(opts, ","), "omitempty"), false
}

// RequiredFields returns the "required" list of a schema regardless of whether
// it was built in Go ([]string) or decoded from JSON ([]any).
func RequiredFields(schema map[string]any) []string {
	switch req := schema["required"].(type) {
	case []string:
		return req
	case []any:
		out := make([]string, 0, len(req))
		for _, r := range req {
			if s, ok := r.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// ValidateParameters checks decoded JSON against an object schema: required
// properties must be present, declared properties must have the declared type
// and enum value, array items and nested objects are checked recursively.
// Undeclared properties are allowed. Only the first violation is reported.
func ValidateParameters(params map[string]any, schema map[string]any) error {
	return validateObject("", params, schema)
}

func validateObject(prefix string, obj map[string]any, schema map[string]any) error {
	for _, name := range RequiredFields(schema) {
		if _, ok := obj[name]; !ok {
			return &ValidationError{Field: prefix + name, Message: "required field is missing"}
		}
	}

	props, _ := schema["properties"].(map[string]any)
	for name, value := range obj {
		prop, ok := props[name].(map[string]any)
		if !ok {
			continue
		}
		if err := validateValue(prefix+name, value, prop); err != nil {
			return err
		}
	}
	return nil
}

func validateValue(field string, value any, prop map[string]any) error {
	if value == nil {
		return nil
	}

	want, _ := prop["type"].(string)
	if !matchesType(value, want) {
		return &ValidationError{Field: field, Value: value, Message: fmt.Sprintf("expected type %s, got %T", want, value)}
	}

	if enum, ok := prop["enum"].([]any); ok && len(enum) > 0 &&
		!slices.ContainsFunc(enum, func(e any) bool { return reflect.DeepEqual(e, value) }) {
		return &ValidationError{Field: field, Value: value, Message: fmt.Sprintf("value %v is not one of %v", value, enum)}
	}

	switch v := value.(type) {
	case []any:
		items, ok := prop["items"].(map[string]any)
		if !ok {
			return nil
		}
		for i, item := range v {
			if err := validateValue(fmt.Sprintf("%s[%d]", field, i), item, items); err != nil {
				return err
			}
		}
	case map[string]any:
		if _, ok := prop["properties"]; ok {
			return validateObject(field+".", v, prop)
		}
	}
	return nil
}

// matchesType reports whether a decoded JSON value fits a schema type.
// Integers arrive as float64 from encoding/json and are accepted when whole.
func matchesType(value any, want string) bool {
	switch want {
	case "string":
		_, ok := value.(string)
		return ok
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "integer":
		switch v := value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return true
		case float64:
			return v == float64(int64(v))
		}
		return false
	case "number":
		switch value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
			return true
		}
		return false
	case "array":
		_, ok := value.([]any)
		return ok
	case "object":
		_, ok := value.(map[string]any)
		return ok
	default:
		return true
	}
}
