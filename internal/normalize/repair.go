package normalize

import (
	"fmt"
	"strings"
)

// repairRule is one narrowly-scoped, trigger-conditioned transformation
// applied to the data section of a non-conforming document before another
// decode attempt. Triggers match structured field-path failures plus the
// exact document shape the known upstream discrepancy produces; nothing is
// corrected by guessing.
type repairRule struct {
	name    string
	schemas []Schema
	trigger func(data map[string]any, errs []FieldError) bool
	apply   func(data map[string]any)
}

func (r *repairRule) appliesTo(schema Schema) bool {
	for _, s := range r.schemas {
		if s == schema {
			return true
		}
	}
	return false
}

// repairRules is the full table, in application order. Each rule fires at
// most once per normalization.
var repairRules = []repairRule{
	{
		name:    "items_update_timestamp_alias",
		schemas: []Schema{TwoHourForecast},
		trigger: func(data map[string]any, errs []FieldError) bool {
			return missingUnder(errs, "items", "updated_timestamp") &&
				anyEntry(data, "items", hasAlias("update_timestamp", "updated_timestamp"))
		},
		apply: func(data map[string]any) {
			copyAlias(data, "items", "update_timestamp", "updated_timestamp")
		},
	},
	{
		name:    "records_updated_timestamp_alias",
		schemas: []Schema{TwentyFourHourForecast, FourDayForecast, Lightning, WBGT},
		trigger: func(data map[string]any, errs []FieldError) bool {
			return missingUnder(errs, "records", "updated_timestamp") &&
				anyEntry(data, "records", hasAlias("updatedTimestamp", "updated_timestamp"))
		},
		apply: func(data map[string]any) {
			copyAlias(data, "records", "updatedTimestamp", "updated_timestamp")
		},
	},
	{
		name:    "records_timestamp_misspelling",
		schemas: []Schema{TwentyFourHourForecast, FourDayForecast},
		trigger: func(data map[string]any, errs []FieldError) bool {
			return missingUnder(errs, "records", "timestamp") &&
				anyEntry(data, "records", hasAlias("tiemstamp", "timestamp"))
		},
		apply: func(data map[string]any) {
			copyAlias(data, "records", "tiemstamp", "timestamp")
		},
	},
	{
		name:    "stations_device_id_alias",
		schemas: []Schema{AirTemperature, WindDirection},
		trigger: func(data map[string]any, errs []FieldError) bool {
			return missingUnder(errs, "stations", "device_id") &&
				anyEntry(data, "stations", hasAlias("deviceId", "device_id"))
		},
		apply: func(data map[string]any) {
			copyAlias(data, "stations", "deviceId", "device_id")
		},
	},
	{
		name:    "area_metadata_default",
		schemas: []Schema{TwentyFourHourForecast},
		trigger: func(data map[string]any, errs []FieldError) bool {
			if !hasFailure(errs, "data.area_metadata", KindMissing) {
				return false
			}
			_, ok := data["records"].([]any)
			return ok
		},
		apply: func(data map[string]any) {
			data["area_metadata"] = []any{}
		},
	},
	{
		// Some responses batch readings as one envelope holding a nested
		// `data` list of per-station pairs plus a shared timestamp. Only the
		// first such envelope is flattened and any remaining original entries
		// are discarded: upstream has only ever been observed to send a
		// single batched envelope, and generalizing beyond confirmed samples
		// risks inventing data. See cmd/validate for checking new samples.
		name:    "readings_flatten",
		schemas: []Schema{AirTemperature, WindDirection},
		trigger: func(data map[string]any, errs []FieldError) bool {
			return anyFailureUnder(errs, "readings") &&
				anyEntry(data, "readings", isBatchedReading)
		},
		apply: func(data map[string]any) {
			readings, _ := data["readings"].([]any)
			for _, el := range readings {
				entry, ok := el.(map[string]any)
				if !ok || !isBatchedReading(entry) {
					continue
				}
				data["readings"] = flattenBatchedReading(entry)
				return
			}
		},
	},
	{
		name:    "readings_station_id_alias",
		schemas: []Schema{AirTemperature, WindDirection},
		trigger: func(data map[string]any, errs []FieldError) bool {
			return missingUnder(errs, "readings", "station_id") &&
				anyEntry(data, "readings", hasAlias("id", "station_id"))
		},
		apply: func(data map[string]any) {
			copyAlias(data, "readings", "id", "station_id")
		},
	},
}

// rulesFor returns the ordered subset of the table applicable to a schema.
func rulesFor(schema Schema) []*repairRule {
	var rules []*repairRule
	for i := range repairRules {
		if repairRules[i].appliesTo(schema) {
			rules = append(rules, &repairRules[i])
		}
	}
	return rules
}

// ── failure matching ──

// missingUnder reports whether any failure is a missing leaf under
// data.<list>[i].
func missingUnder(errs []FieldError, list, leaf string) bool {
	prefix := fmt.Sprintf("data.%s[", list)
	suffix := "." + leaf
	for _, e := range errs {
		if e.Kind == KindMissing && strings.HasPrefix(e.Path, prefix) && strings.HasSuffix(e.Path, suffix) {
			return true
		}
	}
	return false
}

// anyFailureUnder reports whether any failure sits under data.<list>[i].
func anyFailureUnder(errs []FieldError, list string) bool {
	prefix := fmt.Sprintf("data.%s[", list)
	for _, e := range errs {
		if strings.HasPrefix(e.Path, prefix) {
			return true
		}
	}
	return false
}

func hasFailure(errs []FieldError, path string, kind FailureKind) bool {
	for _, e := range errs {
		if e.Path == path && e.Kind == kind {
			return true
		}
	}
	return false
}

// ── document shape predicates and edits ──

// hasAlias reports whether an entry carries the legacy wire name while
// lacking the canonical one.
func hasAlias(from, to string) func(map[string]any) bool {
	return func(entry map[string]any) bool {
		_, hasFrom := entry[from]
		_, hasTo := entry[to]
		return hasFrom && !hasTo
	}
}

// isBatchedReading matches the nested-envelope reading shape: an entry whose
// `data` key holds a list of per-station pairs.
func isBatchedReading(entry map[string]any) bool {
	_, ok := entry["data"].([]any)
	return ok
}

// anyEntry reports whether any element of data[list] satisfies pred.
func anyEntry(data map[string]any, list string, pred func(map[string]any) bool) bool {
	entries, _ := data[list].([]any)
	for _, el := range entries {
		if entry, ok := el.(map[string]any); ok && pred(entry) {
			return true
		}
	}
	return false
}

// copyAlias copies the legacy field to the canonical name on every entry of
// data[list] that has the former and lacks the latter. Values are copied, not
// moved: the legacy key is unknown to the schema and dropped at
// canonicalization.
func copyAlias(data map[string]any, list, from, to string) {
	entries, _ := data[list].([]any)
	match := hasAlias(from, to)
	for _, el := range entries {
		entry, ok := el.(map[string]any)
		if !ok {
			continue
		}
		if match(entry) {
			entry[to] = entry[from]
		}
	}
}

// flattenBatchedReading expands one batched envelope into flat readings, each
// carrying the station id (stationId, falling back to id), the pair's value,
// and the envelope-level timestamp. Keys absent from a pair stay absent: the
// repair relocates data, it never invents it.
func flattenBatchedReading(entry map[string]any) []any {
	pairs, _ := entry["data"].([]any)
	timestamp, hasTimestamp := entry["timestamp"]

	flat := make([]any, 0, len(pairs))
	for _, el := range pairs {
		pair, ok := el.(map[string]any)
		if !ok {
			continue
		}
		reading := make(map[string]any, 3)
		if id, ok := pair["stationId"]; ok {
			reading["station_id"] = id
		} else if id, ok := pair["id"]; ok {
			reading["station_id"] = id
		}
		if v, ok := pair["value"]; ok {
			reading["value"] = v
		}
		if hasTimestamp {
			reading["timestamp"] = timestamp
		}
		flat = append(flat, reading)
	}
	return flat
}
