// Command genmock writes sample upstream weather documents to a directory:
// one canonical document per schema, plus one drifted variant per known
// upstream discrepancy. The drifted fixtures exercise every repair rule and
// feed manual testing of cmd/validate and the gateway's weather routes.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

type fixture struct {
	name   string // file name without extension
	schema string // target schema for cmd/validate
	doc    map[string]any
}

func main() {
	out := flag.String("out", "", "output directory for fixture files")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		log.Fatal("missing required flag: -out")
	}

	if err := run(*out); err != nil {
		log.Fatal(err)
	}
}

func run(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	for _, f := range fixtures() {
		path := filepath.Join(dir, f.name+".json")
		data, err := json.MarshalIndent(f.doc, "", "  ")
		if err != nil {
			return fmt.Errorf("encode %s: %w", f.name, err)
		}
		if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Printf("wrote %s (schema %s)\n", path, f.schema)
	}
	return nil
}

func fixtures() []fixture {
	return []fixture{
		{
			name:   "two_hour_canonical",
			schema: "two-hour-forecast",
			doc:    envelope(twoHourData(canonicalItem())),
		},
		{
			// updated_timestamp sent under its legacy name update_timestamp.
			name:   "two_hour_update_timestamp_alias",
			schema: "two-hour-forecast",
			doc: envelope(twoHourData(map[string]any{
				"update_timestamp": "2024-06-01T08:05:00+08:00",
				"timestamp":        "2024-06-01T08:00:00+08:00",
				"valid_period":     validPeriod(),
				"forecasts": []any{
					map[string]any{"area": "Bedok", "forecast": "Showers"},
				},
			})),
		},
		{
			name:   "twenty_four_hour_canonical",
			schema: "twenty-four-hour-forecast",
			doc: envelope(map[string]any{
				"area_metadata": []any{areaMetadata()},
				"records":       []any{twentyFourHourRecord("updated_timestamp")},
			}),
		},
		{
			// camelCase alias for updated_timestamp.
			name:   "twenty_four_hour_updated_timestamp_alias",
			schema: "twenty-four-hour-forecast",
			doc: envelope(map[string]any{
				"area_metadata": []any{areaMetadata()},
				"records":       []any{twentyFourHourRecord("updatedTimestamp")},
			}),
		},
		{
			// misspelled timestamp key, observed on the outlook endpoints.
			name:   "four_day_timestamp_misspelling",
			schema: "four-day-forecast",
			doc: envelope(map[string]any{
				"records": []any{map[string]any{
					"date":              "2024-06-01",
					"updated_timestamp": "2024-06-01T06:10:00+08:00",
					"tiemstamp":         "2024-06-01T06:00:00+08:00",
					"forecasts":         []any{},
				}},
			}),
		},
		{
			// area_metadata occasionally missing; defaulted to empty.
			name:   "twenty_four_hour_missing_area_metadata",
			schema: "twenty-four-hour-forecast",
			doc: envelope(map[string]any{
				"records": []any{twentyFourHourRecord("updated_timestamp")},
			}),
		},
		{
			name:   "air_temperature_canonical",
			schema: "air-temperature",
			doc: envelope(map[string]any{
				"stations": []any{station(true)},
				"readings": []any{map[string]any{
					"station_id": "S107",
					"value":      29.4,
					"timestamp":  "2024-06-01T08:00:00+08:00",
				}},
				"reading_type": "DBT 1M F",
				"reading_unit": "deg C",
			}),
		},
		{
			// deviceId alias plus batched readings with stationId keys.
			name:   "air_temperature_drifted",
			schema: "air-temperature",
			doc: envelope(map[string]any{
				"stations": []any{station(false)},
				"readings": []any{map[string]any{
					"timestamp": "2024-06-01T08:00:00+08:00",
					"data": []any{
						map[string]any{"stationId": "S107", "value": 29.4},
					},
				}},
				"reading_type": "DBT 1M F",
				"reading_unit": "deg C",
			}),
		},
		{
			name:   "lightning_canonical",
			schema: "lightning",
			doc: envelope(map[string]any{
				"records": []any{map[string]any{
					"datetime":          "2024-06-01T08:00:00+08:00",
					"item":              map[string]any{"isStationData": false, "type": "observation"},
					"updated_timestamp": "2024-06-01T08:05:00+08:00",
				}},
			}),
		},
		{
			name:   "wbgt_updated_timestamp_alias",
			schema: "wbgt",
			doc: envelope(map[string]any{
				"records": []any{map[string]any{
					"datetime":         "2024-06-01T08:00:00+08:00",
					"item":             map[string]any{"isStationData": true},
					"updatedTimestamp": "2024-06-01T08:05:00+08:00",
				}},
			}),
		},
	}
}

func envelope(data map[string]any) map[string]any {
	return map[string]any{"code": 0, "data": data}
}

func twoHourData(item map[string]any) map[string]any {
	return map[string]any{
		"area_metadata": []any{areaMetadata()},
		"items":         []any{item},
	}
}

func canonicalItem() map[string]any {
	return map[string]any{
		"updated_timestamp": "2024-06-01T08:05:00+08:00",
		"timestamp":         "2024-06-01T08:00:00+08:00",
		"valid_period":      validPeriod(),
		"forecasts": []any{
			map[string]any{"area": "Bedok", "forecast": "Showers"},
		},
	}
}

func validPeriod() map[string]any {
	return map[string]any{
		"start": "2024-06-01T08:00:00+08:00",
		"end":   "2024-06-01T10:00:00+08:00",
		"text":  "8 to 10 am",
	}
}

func areaMetadata() map[string]any {
	return map[string]any{
		"name": "Bedok",
		"label_location": map[string]any{
			"latitude":  1.321,
			"longitude": 103.924,
		},
	}
}

func twentyFourHourRecord(timestampKey string) map[string]any {
	return map[string]any{
		"date":       "2024-06-01",
		timestampKey: "2024-06-01T06:10:00+08:00",
		"timestamp":  "2024-06-01T06:00:00+08:00",
		"general": map[string]any{
			"forecast":         map[string]any{"code": "TL", "text": "Thundery Showers"},
			"relativeHumidity": map[string]any{"low": 60, "high": 95},
			"temperature":      map[string]any{"low": 25, "high": 33},
		},
		"periods": []any{},
	}
}

func station(canonical bool) map[string]any {
	s := map[string]any{
		"id":   "S107",
		"name": "East Coast Parkway",
		"location": map[string]any{
			"latitude":  1.3135,
			"longitude": 103.9625,
		},
	}
	if canonical {
		s["device_id"] = "S107"
	} else {
		s["deviceId"] = "S107"
	}
	return s
}
