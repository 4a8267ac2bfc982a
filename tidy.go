// Package tidy cleans and repairs HTML documents and reserializes them as
// HTML, XHTML or XML, driven by HTML Tidy's named options.
//
// The one-shot entry point is ParseString:
//
//	out, err := tidy.ParseString("<title>Foo</title><p>Foo!", tidy.Options{
//		"indent":       1,
//		"output-xhtml": true,
//	})
//
// Every call acquires its own engine handle and releases it before
// returning, so calls may run concurrently. A Processor adds input
// limits, a result cache, timeouts and batch processing on top.
package tidy

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/cybergodev/tidy/internal/config"
	"github.com/cybergodev/tidy/internal/diag"
	"github.com/cybergodev/tidy/internal/engine"
	"github.com/cybergodev/tidy/internal/logger"
)

// Options maps tidy option names to values. Values are Go integers,
// integral floats, bools or strings, depending on the option's type.
type Options map[string]any

// Diagnostic is one message reported while tidying.
type Diagnostic = diag.Diagnostic

// Severity of a Diagnostic.
type Severity = diag.Severity

const (
	SeverityInfo    = diag.Info
	SeverityWarning = diag.Warning
	SeverityError   = diag.Error
)

// Result is a tidied document together with what the engine reported.
type Result struct {
	Output         string
	Diagnostics    []Diagnostic
	Report         string
	Warnings       int
	Errors         int
	ProcessingTime time.Duration
}

// Version is the engine version written into the generator meta element.
const Version = engine.Version

// ParseString parses document with the given options, cleans and repairs
// it, and returns the serialized result. On failure the error is an
// *Error of kind ConfigurationError or ParseError and no output is
// returned.
func ParseString(document string, options Options) (string, error) {
	res, err := Tidy(document, options)
	if err != nil {
		return "", err
	}
	return res.Output, nil
}

// Tidy is ParseString returning the diagnostics as well.
func Tidy(document string, options Options) (*Result, error) {
	return run(engine.DefaultBackend, engine.Limits{MaxDepth: DefaultMaxDepth}, []byte(document), options)
}

// ParseBytes is ParseString for input in the encoding named by the
// input-encoding option. The output is in output-encoding.
func ParseBytes(data []byte, options Options) ([]byte, error) {
	res, err := run(engine.DefaultBackend, engine.Limits{MaxDepth: DefaultMaxDepth}, data, options)
	if err != nil {
		return nil, err
	}
	return []byte(res.Output), nil
}

// run drives one handle through its lifecycle. The handle is released on
// every path.
func run(backend string, limits engine.Limits, input []byte, options Options) (*Result, error) {
	start := time.Now()

	b, ok := engine.Lookup(backend)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, backend)
	}
	doc, err := b.NewDoc(limits)
	if err != nil {
		return nil, err
	}
	defer doc.Release()

	for _, name := range sortedNames(options) {
		if err := doc.SetOption(name, options[name]); err != nil {
			return nil, err
		}
	}
	if err := doc.ParseBytes(input); err != nil {
		return nil, err
	}
	if err := doc.CleanAndRepair(); err != nil {
		return nil, err
	}
	out, err := doc.Save()
	if err != nil {
		return nil, err
	}

	ds := doc.Diagnostics()
	warnings, errs := diag.Count(ds)
	res := &Result{
		Output:         out,
		Diagnostics:    ds,
		Report:         doc.Report(),
		Warnings:       warnings,
		Errors:         errs,
		ProcessingTime: time.Since(start),
	}
	logger.Debug("tidied document", "engine", backend, "bytes", len(input),
		"warnings", warnings, "errors", errs, "duration", res.ProcessingTime)
	return res, nil
}

// sortedNames fixes the order options are applied in, so the same
// invalid map always reports the same option.
func sortedNames(options Options) []string {
	names := make([]string, 0, len(options))
	for name := range options {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetLogger replaces the logger used by the package. Pass nil to silence it.
func SetLogger(l *slog.Logger) {
	logger.SetLogger(l)
}

// OptionInfo describes one entry of the option table.
type OptionInfo struct {
	Name    string
	Type    string // Boolean, Integer or String
	Default string
	Values  []string // allowed words for pick-list options
	Doc     string
}

// OptionNames returns every recognized option name, sorted.
func OptionNames() []string {
	return config.Names()
}

// LookupOption returns the table entry for name. Names are matched
// case-insensitively.
func LookupOption(name string) (OptionInfo, bool) {
	opt, ok := config.Lookup(name)
	if !ok {
		return OptionInfo{}, false
	}
	return optionInfo(opt), true
}

// Engines returns the names of the available tidying engines.
func Engines() []string {
	return engine.Names()
}

func optionInfo(opt config.Option) OptionInfo {
	return OptionInfo{
		Name:    opt.Name,
		Type:    opt.Type.String(),
		Default: opt.Default,
		Values:  append([]string(nil), opt.Pick...),
		Doc:     opt.Doc,
	}
}
