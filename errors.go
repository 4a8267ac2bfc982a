package tidy

import (
	"errors"

	"github.com/cybergodev/tidy/internal/diag"
)

// Error definitions for the `cybergodev/tidy` package.
var (
	// ErrConfiguration matches every error raised while applying options.
	ErrConfiguration = diag.ErrConfiguration

	// ErrUnknownOption is returned when an option name is not in the option table.
	ErrUnknownOption = diag.ErrUnknownOption

	// ErrInvalidValue is returned when an option value has the wrong type or is out of range.
	ErrInvalidValue = diag.ErrInvalidValue

	// ErrParse matches every error raised while parsing, repairing or saving a document.
	ErrParse = diag.ErrParse

	// ErrMaxDepthExceeded is returned when document nesting exceeds MaxDepth,
	// or MaxNestingDepth for callers without a Processor.
	ErrMaxDepthExceeded = diag.ErrMaxDepthExceeded

	// ErrInputTooLarge is returned when input exceeds MaxInputSize.
	ErrInputTooLarge = errors.New("tidy: input size exceeds maximum")

	// ErrProcessorClosed is returned when operations are attempted on a closed processor.
	ErrProcessorClosed = errors.New("tidy: processor closed")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("tidy: invalid config")

	// ErrProcessingTimeout is returned when processing exceeds ProcessingTimeout.
	ErrProcessingTimeout = errors.New("tidy: processing timeout exceeded")

	// ErrUnknownEngine is returned when Config.Engine names no registered engine.
	ErrUnknownEngine = errors.New("tidy: unknown engine")
)

// Error is the failure reported by the tidying engine. Its Kind tells
// configuration errors from parse errors; Message holds the engine's
// diagnostic text.
type Error = diag.TidyError

// ErrorKind classifies an Error.
type ErrorKind = diag.Kind

const (
	ConfigurationError = diag.ConfigurationError
	ParseError         = diag.ParseError
)

// KindOf returns the kind of the first *Error in err's chain, or 0 when
// there is none.
func KindOf(err error) ErrorKind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return 0
}
