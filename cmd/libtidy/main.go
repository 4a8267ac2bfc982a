// Command libtidy builds tidy as a C shared library:
//
//	CGO_ENABLED=1 go build -buildmode=c-shared -o libtidy_go.so ./cmd/libtidy
//
// tidy_parse_string takes the document and a JSON object of tidy options
// and returns a TidyResult. Callers must free results with
// tidy_result_free.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cybergodev/tidy"
)

const (
	kindOK = iota
	kindConfiguration
	kindParse
)

// decodeOptions reads a JSON object into tidy options. Numbers become
// int64 when integral so that Integer options accept them.
func decodeOptions(raw string) (tidy.Options, error) {
	opts := tidy.Options{}
	if raw == "" {
		return opts, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("options must be a JSON object: %w", err)
	}
	for name, v := range m {
		switch x := v.(type) {
		case json.Number:
			if n, err := x.Int64(); err == nil {
				opts[name] = n
			} else if f, err := x.Float64(); err == nil {
				opts[name] = f
			} else {
				return nil, fmt.Errorf("option %q: %w", name, err)
			}
		case string, bool:
			opts[name] = x
		default:
			return nil, fmt.Errorf("option %q: unsupported value %T", name, v)
		}
	}
	return opts, nil
}

// parseString runs one tidy call and classifies the outcome.
func parseString(document, optionsJSON string) (string, string, int) {
	opts, err := decodeOptions(optionsJSON)
	if err != nil {
		return "", err.Error(), kindConfiguration
	}
	out, err := tidy.ParseString(document, opts)
	if err != nil {
		var te *tidy.Error
		if errors.As(err, &te) && te.Kind == tidy.ConfigurationError {
			return "", err.Error(), kindConfiguration
		}
		return "", err.Error(), kindParse
	}
	return out, "", kindOK
}

// main is required for c-shared build mode but is not called.
func main() {}
