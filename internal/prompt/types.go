package prompt

import (
	"errors"
	"fmt"
)

// PromptType identifies the task a prompt asks the model to perform.
// Each type produces a distinct system persona and user message structure.
type PromptType string

const (
	// TypeDiagnose asks for the likely cause of the player's problem and
	// the fixes to try. It is the default mode of `ryulog explain`.
	TypeDiagnose PromptType = "diagnose"

	// TypeQuestion answers a specific question about the log.
	// Used by `ryulog explain --question`.
	TypeQuestion PromptType = "question"

	// TypeStructuredOutput implements a two-pass pattern for reliable JSON
	// from small models. On the first pass (FirstPassResponse == "") it
	// requests a free-form diagnosis. On the second pass it prefills the
	// assistant turn and appends a JSON extraction instruction.
	TypeStructuredOutput PromptType = "structured_output"
)

// BuildOptions holds the context required to build a prompt.
type BuildOptions struct {
	// Report is the rendered, redacted analysis report.
	// Required for all prompt types.
	Report string

	// Digest is the compressed log text produced by internal/preprocess.
	// Optional: included after the report when non-empty.
	Digest string

	// Question is the user's question.
	// Required for [TypeQuestion].
	Question string

	// File is the log file name.
	// Optional: included as context when non-empty.
	File string

	// FirstPassResponse is used only with [TypeStructuredOutput].
	// When empty, Build returns the first-pass messages. When set to the
	// model's first-pass reply, Build returns the second-pass messages.
	FirstPassResponse string
}

// ErrMissingField is returned by [Build] when a required field for the
// requested [PromptType] is absent from [BuildOptions].
var ErrMissingField = errors.New("prompt: missing required field")

// missingField wraps [ErrMissingField] with the specific field name.
func missingField(field string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, field)
}
