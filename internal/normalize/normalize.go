// Package normalize deterministically reshapes heterogeneous upstream weather
// payloads into the gateway's canonical schemas.
//
// A normalization is a strict schema decode with a bounded self-repair loop:
// decode, and on failure apply every not-yet-fired repair rule whose trigger
// matches the structured failure set, then decode again. Repairs encode
// exactly the known upstream discrepancies documented in internal/domain;
// anything else is a hard Failure carrying the original decode error and the
// repairs that were attempted.
//
// Every call is a pure function of its inputs: no I/O, no shared state, safe
// for concurrent use.
package normalize

import (
	"encoding/json"
	"fmt"
)

// Failure reports that a success-status body could not be made to conform to
// its target schema. The original strict-decode error and the ordered list of
// repairs attempted are retained for diagnostics, never swallowed.
type Failure struct {
	Schema           Schema
	Original         *DecodeError
	AttemptedRepairs []string
}

func (f *Failure) Error() string {
	if len(f.AttemptedRepairs) == 0 {
		return fmt.Sprintf("normalize %s: %v", f.Schema, f.Original)
	}
	return fmt.Sprintf("normalize %s: %v (after repairs %v)", f.Schema, f.Original, f.AttemptedRepairs)
}

// Normalize maps an already-parsed upstream document onto the canonical type
// for the given schema. It returns the decoded value and the names of the
// repair rules that fired, in order; an empty slice means the document was
// already canonical.
//
// On exhaustion the error is a *Failure. The input document is never mutated.
func Normalize[T any](schema Schema, doc map[string]any) (T, []string, error) {
	var zero T
	root, ok := schemas[schema]
	if !ok {
		return zero, nil, fmt.Errorf("unknown schema %q", schema)
	}

	work, _ := deepCopy(doc).(map[string]any)
	if work == nil {
		work = map[string]any{}
	}

	var (
		fired     []string
		firedSet  = map[string]bool{}
		firstErrs []FieldError
	)
	rules := rulesFor(schema)

	for {
		errs := validateObject(work, root, "")
		if len(errs) == 0 {
			v, err := decodeCanonical[T](work, root)
			if err != nil {
				return zero, fired, err
			}
			return v, fired, nil
		}
		if firstErrs == nil {
			firstErrs = errs
		}

		applied := false
		for _, r := range rules {
			if firedSet[r.name] || !r.trigger(dataSection(work), errs) {
				continue
			}
			r.apply(dataSection(work))
			firedSet[r.name] = true
			fired = append(fired, r.name)
			applied = true
		}
		if !applied {
			return zero, fired, &Failure{
				Schema:           schema,
				Original:         &DecodeError{Fields: firstErrs},
				AttemptedRepairs: fired,
			}
		}
	}
}

// NormalizeBytes parses a raw body and normalizes it in one step.
func NormalizeBytes[T any](schema Schema, raw []byte) (T, []string, error) {
	var zero T
	doc, err := Parse(raw)
	if err != nil {
		return zero, nil, err
	}
	return Normalize[T](schema, doc)
}

// dataSection returns the document's data object, the only substructure
// repairs are allowed to touch. Returns an empty map when absent so triggers
// simply fail to match.
func dataSection(doc map[string]any) map[string]any {
	if data, ok := doc["data"].(map[string]any); ok {
		return data
	}
	return map[string]any{}
}

// decodeCanonical renames wire fields to canonical names, drops unknown keys,
// and materializes the typed value. Validation has already passed, so a
// marshal round-trip here cannot fail on shape; any error is a schema-tree /
// struct mismatch, which is a programming error worth surfacing loudly.
func decodeCanonical[T any](doc map[string]any, root []field) (T, error) {
	var v T
	canonical := canonicalObject(doc, root)
	data, err := json.Marshal(canonical)
	if err != nil {
		return v, fmt.Errorf("marshal canonical document: %w", err)
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("decode canonical document: %w", err)
	}
	return v, nil
}
