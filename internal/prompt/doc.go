// Package prompt builds the chat messages behind `ryulog explain`.
//
// Callers render the analysis report, condense the log with
// internal/preprocess, and pass both to [Build] together with a
// [PromptType]:
//
//   - [TypeDiagnose]         explain the failure and suggest fixes
//   - [TypeQuestion]         answer a free-form question about the log
//   - [TypeStructuredOutput] two-pass pattern for reliable JSON from small models
//
// Basic usage:
//
//	messages, err := prompt.Build(prompt.TypeDiagnose, prompt.BuildOptions{
//	    Report: redactedReport,
//	    Digest: digest.Summary,
//	})
//	if err != nil {
//	    return err
//	}
//	// Pass messages to llm.Provider.ChatStream(ctx, messages, chatOpts)
//
// For [TypeStructuredOutput], send the first-pass messages, then call
// [Build] again with [BuildOptions.FirstPassResponse] set to the reply and
// send the returned slice to obtain JSON.
package prompt
