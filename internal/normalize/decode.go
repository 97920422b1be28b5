package normalize

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FailureKind classifies why a field path failed strict decode.
type FailureKind string

const (
	// KindMissing means a required field is absent (or JSON null).
	KindMissing FailureKind = "missing"
	// KindWrongType means the field is present but holds the wrong JSON type.
	KindWrongType FailureKind = "wrong_type"
)

// FieldError is one structured decode failure: the dotted path of the
// offending field (wire names, e.g. "data.items[0].updated_timestamp") and
// what went wrong there. Repair triggers match on these tuples, never on
// error-message text.
type FieldError struct {
	Path string      `json:"path"`
	Kind FailureKind `json:"kind"`
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s (%s)", e.Path, e.Kind)
}

// DecodeError aggregates every field-path failure from one strict decode
// attempt.
type DecodeError struct {
	Fields []FieldError
}

func (e *DecodeError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return "strict decode failed: " + strings.Join(parts, "; ")
}

// Parse unmarshals a raw upstream body into the document form Normalize
// operates on. A body that is not a JSON object cannot match any canonical
// schema and is rejected here.
func Parse(raw []byte) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse upstream body: %w", err)
	}
	return doc, nil
}

// validateObject checks doc against the given object schema and returns every
// field-path failure. Unknown keys are ignored at every level.
func validateObject(doc map[string]any, fields []field, path string) []FieldError {
	var errs []FieldError
	for i := range fields {
		f := &fields[i]
		fieldPath := joinPath(path, f.wire)

		value, ok := doc[f.wire]
		if !ok || value == nil {
			if f.required {
				errs = append(errs, FieldError{Path: fieldPath, Kind: KindMissing})
			}
			continue
		}
		errs = append(errs, validateValue(value, f, fieldPath)...)
	}
	return errs
}

func validateValue(value any, f *field, path string) []FieldError {
	switch f.kind {
	case kindString:
		if _, ok := value.(string); !ok {
			return []FieldError{{Path: path, Kind: KindWrongType}}
		}
	case kindNumber:
		if !isNumber(value) {
			return []FieldError{{Path: path, Kind: KindWrongType}}
		}
	case kindObject:
		obj, ok := value.(map[string]any)
		if !ok {
			return []FieldError{{Path: path, Kind: KindWrongType}}
		}
		return validateObject(obj, f.fields, path)
	case kindArray:
		list, ok := value.([]any)
		if !ok {
			return []FieldError{{Path: path, Kind: KindWrongType}}
		}
		var errs []FieldError
		for i, el := range list {
			elPath := fmt.Sprintf("%s[%d]", path, i)
			obj, ok := el.(map[string]any)
			if !ok {
				errs = append(errs, FieldError{Path: elPath, Kind: KindWrongType})
				continue
			}
			errs = append(errs, validateObject(obj, f.elem, elPath)...)
		}
		return errs
	case kindRawObject:
		if _, ok := value.(map[string]any); !ok {
			return []FieldError{{Path: path, Kind: KindWrongType}}
		}
	case kindRawArray:
		if _, ok := value.([]any); !ok {
			return []FieldError{{Path: path, Kind: KindWrongType}}
		}
	}
	return nil
}

// isNumber accepts the types a JSON number can arrive as. encoding/json
// produces float64; int variants are tolerated for documents assembled in
// code.
func isNumber(v any) bool {
	switch v.(type) {
	case float64, float32, int, int32, int64, json.Number:
		return true
	}
	return false
}

// canonicalObject rebuilds a validated document using canonical field names.
// Unknown keys are dropped, never round-tripped. Must only be called after
// validateObject returned no failures.
func canonicalObject(doc map[string]any, fields []field) map[string]any {
	out := make(map[string]any, len(fields))
	for i := range fields {
		f := &fields[i]
		value, ok := doc[f.wire]
		if !ok || value == nil {
			continue
		}
		out[f.out()] = canonicalValue(value, f)
	}
	return out
}

func canonicalValue(value any, f *field) any {
	switch f.kind {
	case kindObject:
		return canonicalObject(value.(map[string]any), f.fields)
	case kindArray:
		list := value.([]any)
		out := make([]any, len(list))
		for i, el := range list {
			out[i] = canonicalObject(el.(map[string]any), f.elem)
		}
		return out
	default:
		return value
	}
}

// deepCopy clones a parsed JSON tree so repairs never mutate the caller's
// document.
func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, el := range t {
			out[k] = deepCopy(el)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, el := range t {
			out[i] = deepCopy(el)
		}
		return out
	default:
		return v
	}
}

func joinPath(base, name string) string {
	if base == "" {
		return name
	}
	return base + "." + name
}
