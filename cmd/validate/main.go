// Command validate runs a raw upstream weather document through the
// normalizer and reports the outcome: the canonical form, the repair rules
// that fired, or the decode failures that made the document unrecoverable.
//
// Usage:
//
//	go run ./cmd/validate -schema two-hour-forecast response.json
//	curl -s https://api-open.data.gov.sg/v2/real-time/api/two-hr-forecast | \
//	  go run ./cmd/validate -schema two-hour-forecast
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/weather-gateway/internal/normalize"
)

func main() {
	schemaFlag := flag.String("schema", "", "target schema, one of: "+schemaList())
	flag.Parse()

	if *schemaFlag == "" {
		flag.Usage()
		os.Exit(2)
	}

	if code := run(normalize.Schema(*schemaFlag), flag.Arg(0)); code != 0 {
		os.Exit(code)
	}
}

func run(schema normalize.Schema, path string) int {
	raw, err := readInput(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read input: %v\n", err)
		return 1
	}

	doc, err := normalize.Parse(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse input: %v\n", err)
		return 1
	}

	canonical, repairs, err := normalize.Normalize[map[string]any](schema, doc)
	if err != nil {
		var failure *normalize.Failure
		if errors.As(err, &failure) {
			fmt.Printf("FAIL: document does not conform to %s\n", failure.Schema)
			for _, f := range failure.Original.Fields {
				fmt.Printf("  %s\n", f)
			}
			if len(failure.AttemptedRepairs) > 0 {
				fmt.Printf("repairs attempted: %v\n", failure.AttemptedRepairs)
			}
			return 1
		}
		fmt.Fprintf(os.Stderr, "normalize: %v\n", err)
		return 1
	}

	if len(repairs) == 0 {
		fmt.Println("OK: document is canonical")
	} else {
		fmt.Printf("OK: document repaired by %v\n", repairs)
	}

	out, err := json.MarshalIndent(canonical, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode canonical document: %v\n", err)
		return 1
	}
	fmt.Println(string(out))
	return 0
}

func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func schemaList() string {
	out := ""
	for i, s := range normalize.Schemas() {
		if i > 0 {
			out += ", "
		}
		out += string(s)
	}
	return out
}
