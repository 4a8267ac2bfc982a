// Package diag defines the diagnostics and error values shared by the
// option table, the engines and the public tidy package.
package diag

import (
	"errors"
	"fmt"
	"strings"
)

// Severity of a diagnostic message.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "Warning"
	case Error:
		return "Error"
	default:
		return "Info"
	}
}

// Diagnostic codes. The names follow the message keys used by HTML Tidy
// so that the mute option accepts the same words.
const (
	CodeMissingDoctype       = "MISSING_DOCTYPE"
	CodeUnknownElement       = "UNKNOWN_ELEMENT"
	CodeDiscardingUnexpected = "DISCARDING_UNEXPECTED"
	CodeMissingEndTag        = "MISSING_ENDTAG_FOR"
	CodeMissingAttribute     = "MISSING_ATTRIBUTE"
	CodeInsertingTag         = "INSERTING_TAG"
	CodeMissingTitle         = "MISSING_TITLE_ELEMENT"
	CodeTrimEmptyElement     = "TRIM_EMPTY_ELEMENT"
	CodeInvalidUTF8          = "INVALID_UTF8"
	CodeInvalidURI           = "ESCAPED_ILLEGAL_URI"
	CodeDoctypeGiven         = "STRING_DOCTYPE_GIVEN"
	CodeObsoleteElement      = "OBSOLETE_ELEMENT"
)

// Diagnostic is one message produced while parsing or repairing a document.
type Diagnostic struct {
	Line     int
	Column   int
	Severity Severity
	Code     string
	Message  string
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("line %d column %d - %s: %s", d.Line, d.Column, d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

// Count returns the number of warnings and errors in ds.
func Count(ds []Diagnostic) (warnings, errs int) {
	for _, d := range ds {
		switch d.Severity {
		case Warning:
			warnings++
		case Error:
			errs++
		}
	}
	return warnings, errs
}

// Report renders diagnostics the way tidy writes its error buffer.
// The summary line is left out when quiet is set.
func Report(ds []Diagnostic, quiet bool) string {
	var sb strings.Builder
	for _, d := range ds {
		sb.WriteString(d.String())
		sb.WriteByte('\n')
	}
	if quiet {
		return sb.String()
	}
	warnings, errs := Count(ds)
	if warnings == 0 && errs == 0 {
		sb.WriteString("No warnings or errors were found.\n")
		return sb.String()
	}
	fmt.Fprintf(&sb, "%d %s, %d %s were found!\n",
		warnings, plural(warnings, "warning", "warnings"),
		errs, plural(errs, "error", "errors"))
	if errs > 0 {
		sb.WriteString("This document has errors that must be fixed before\nusing HTML Tidy to generate a tidied up version.\n")
	}
	return sb.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// Kind classifies a tidy failure.
type Kind int

const (
	ConfigurationError Kind = iota + 1
	ParseError
)

func (k Kind) String() string {
	switch k {
	case ConfigurationError:
		return "configuration error"
	case ParseError:
		return "parse error"
	default:
		return "error"
	}
}

var (
	ErrConfiguration    = errors.New("tidy: configuration error")
	ErrUnknownOption    = errors.New("tidy: unknown option")
	ErrInvalidValue     = errors.New("tidy: invalid option value")
	ErrParse            = errors.New("tidy: parse error")
	ErrMaxDepthExceeded = errors.New("tidy: max depth exceeded")
	ErrReleased         = errors.New("tidy: document handle released")
)

// TidyError carries a failure reported by the tidying engine.
// Message holds the engine's diagnostic text.
type TidyError struct {
	Kind        Kind
	Option      string
	Message     string
	Diagnostics []Diagnostic
	Err         error
}

func (e *TidyError) Error() string {
	var sb strings.Builder
	sb.WriteString("tidy: ")
	sb.WriteString(e.Kind.String())
	if e.Option != "" {
		fmt.Fprintf(&sb, " for option %q", e.Option)
	}
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(strings.TrimRight(e.Message, "\n"))
	}
	return sb.String()
}

func (e *TidyError) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's kind.
func (e *TidyError) Is(target error) bool {
	switch target {
	case ErrConfiguration:
		return e.Kind == ConfigurationError
	case ErrParse:
		return e.Kind == ParseError
	}
	return false
}

// Configf returns a configuration error for option name.
func Configf(name string, cause error, format string, args ...any) *TidyError {
	return &TidyError{
		Kind:    ConfigurationError,
		Option:  name,
		Message: fmt.Sprintf(format, args...),
		Err:     cause,
	}
}

// Parsef returns a parse error carrying the given diagnostics.
func Parsef(cause error, ds []Diagnostic, format string, args ...any) *TidyError {
	return &TidyError{
		Kind:        ParseError,
		Message:     fmt.Sprintf(format, args...),
		Diagnostics: ds,
		Err:         cause,
	}
}
