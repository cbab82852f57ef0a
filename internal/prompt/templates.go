package prompt

import (
	"fmt"
	"strings"

	"github.com/bimmerbailey/ryulog/internal/llm"
)

// Build constructs a []llm.Message slice ready to be sent to any llm.Provider.
//
// The returned slice always begins with a system message whose content is
// determined by pt, followed by one or more user/assistant messages that
// carry the report and task instruction.
//
// Returns ErrMissingField if Report is empty, or if Question is empty for
// TypeQuestion.
func Build(pt PromptType, opts BuildOptions) ([]llm.Message, error) {
	if strings.TrimSpace(opts.Report) == "" {
		return nil, missingField("Report")
	}

	switch pt {
	case TypeQuestion:
		return buildQuestion(opts)
	case TypeStructuredOutput:
		return buildStructuredOutput(opts)
	default:
		return []llm.Message{
			{Role: "system", Content: systemPrompt(TypeDiagnose)},
			{Role: "user", Content: diagnoseRequest(opts)},
		}, nil
	}
}

func diagnoseRequest(opts BuildOptions) string {
	var sb strings.Builder
	sb.WriteString("Explain what is wrong in the following Ryujinx log and how to fix it:\n\n")
	appendLogContext(&sb, opts)
	return sb.String()
}

// buildQuestion requires opts.Question to be non-empty.
func buildQuestion(opts BuildOptions) ([]llm.Message, error) {
	if strings.TrimSpace(opts.Question) == "" {
		return nil, missingField("Question")
	}

	var sb strings.Builder
	sb.WriteString("Question: ")
	sb.WriteString(opts.Question)
	sb.WriteString("\n\n")
	appendLogContext(&sb, opts)

	return []llm.Message{
		{Role: "system", Content: systemPrompt(TypeQuestion)},
		{Role: "user", Content: sb.String()},
	}, nil
}

// buildStructuredOutput implements the two-pass pattern.
//
// First pass (opts.FirstPassResponse == ""):
//
//	[system, user(diagnosis request)]
//
// Second pass (opts.FirstPassResponse != ""):
//
//	[system, user(diagnosis request), assistant(first pass text), user(JSON extraction)]
func buildStructuredOutput(opts BuildOptions) ([]llm.Message, error) {
	system := llm.Message{Role: "system", Content: systemPrompt(TypeStructuredOutput)}
	firstUser := llm.Message{Role: "user", Content: diagnoseRequest(opts)}

	if opts.FirstPassResponse == "" {
		return []llm.Message{system, firstUser}, nil
	}

	extractInstruction := "Now extract your diagnosis into the JSON schema specified in the system prompt. " +
		"Output ONLY the JSON object, with no markdown and no explanation."

	return []llm.Message{
		system,
		firstUser,
		{Role: "assistant", Content: opts.FirstPassResponse},
		{Role: "user", Content: extractInstruction},
	}, nil
}

// appendLogContext writes the file name, report and digest into sb.
func appendLogContext(sb *strings.Builder, opts BuildOptions) {
	if opts.File != "" {
		fmt.Fprintf(sb, "Log file: %s\n\n", opts.File)
	}

	sb.WriteString("Analysis Report:\n")
	sb.WriteString(strings.TrimRight(opts.Report, "\n"))
	sb.WriteString("\n\n")

	if opts.Digest != "" {
		sb.WriteString("Log Digest:\n")
		sb.WriteString(strings.TrimRight(opts.Digest, "\n"))
		sb.WriteString("\n")
	}
}
