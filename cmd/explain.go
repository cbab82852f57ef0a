package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/bimmerbailey/ryulog/internal/analyzer"
	"github.com/bimmerbailey/ryulog/internal/blocklist"
	"github.com/bimmerbailey/ryulog/internal/config"
	"github.com/bimmerbailey/ryulog/internal/llm"
	"github.com/bimmerbailey/ryulog/internal/logfile"
	"github.com/bimmerbailey/ryulog/internal/output"
	"github.com/bimmerbailey/ryulog/internal/preprocess"
	"github.com/bimmerbailey/ryulog/internal/prompt"
)

const heartbeatTimeout = 5 * time.Second

var explainCmd = &cobra.Command{
	Use:   "explain [flags] <file>",
	Short: "Ask a local LLM to explain a Ryujinx log",
	Long: `Analyze a Ryujinx log, then send the report together with a compressed
digest of the log to a local Ollama model and stream its explanation.

User names, addresses and keys are replaced with stable placeholders before
anything is sent. Logs that are invalid or blocked are never sent.

With --format json the model is asked for a structured diagnosis.

Examples:
  ryulog explain Ryujinx_1.1.1217_2024-01-01_12-00-00.log
  ryulog explain -q "why does it crash after the intro?" game.log
  ryulog explain --format json game.log`,
	Args: cobra.ExactArgs(1),
	RunE: runExplain,
}

func init() {
	addChannelFlag(explainCmd)
	explainCmd.Flags().StringP("question", "q", "", "ask a specific question about the log")

	rootCmd.AddCommand(explainCmd)
}

// Explanation is the machine-readable result of explain --format json.
type Explanation struct {
	File      string          `json:"file"`
	Outcome   string          `json:"outcome"`
	Message   string          `json:"message,omitempty"`
	Diagnosis json.RawMessage `json:"diagnosis,omitempty"`
}

func runExplain(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}
	question, _ := cmd.Flags().GetString("question")

	logger := newLogger(cfg.Verbose)
	provider, err := llm.NewProvider(cfg, logger)
	if err != nil {
		return err
	}

	ex := &explainer{
		cfg:      cfg,
		provider: provider,
		logger:   logger,
		out:      cmd.OutOrStdout(),
		errOut:   cmd.ErrOrStderr(),
	}
	return ex.explain(commandContext(cmd), args[0], question)
}

type explainer struct {
	cfg      *config.Config
	provider llm.Provider
	logger   *slog.Logger
	out      io.Writer
	errOut   io.Writer
}

func (e *explainer) explain(ctx context.Context, file, question string) error {
	text, err := logfile.Read(file, e.cfg.Read.HeadBytes, e.cfg.Read.TailBytes)
	if err != nil && !errors.Is(err, logfile.ErrInvalidEncoding) {
		return fmt.Errorf("reading %s: %w", file, err)
	}

	var fr output.FileResult
	if err != nil {
		fr = output.DecodeFailure(file)
	} else {
		store, err := blocklist.Open(e.cfg.Blocklist.Path, e.logger)
		if err != nil {
			return err
		}
		defer store.Close()
		res := analyzer.New(
			analyzer.WithPRChannel(e.cfg.Channels.PRTesting),
			analyzer.WithLogger(e.logger),
		).Run(text, analyzer.BlocklistFunc(store.Checker(ctx)), e.cfg.ChannelAllowed())
		fr = output.NewFileResult(file, res)
	}

	jsonOut := output.ParseFormat(e.cfg.Format) == output.FormatJSON
	if fr.Report == nil {
		if jsonOut {
			return output.New(e.out, output.FormatJSON, output.ColorNever).WriteJSON(
				Explanation{File: fr.File, Outcome: fr.Outcome, Message: fr.Message})
		}
		return output.New(e.out, output.FormatText, output.ParseColorMode(e.cfg.Color)).WriteResults([]output.FileResult{fr})
	}

	opts, err := e.buildOptions(fr, text, question)
	if err != nil {
		return err
	}

	if err := e.checkProvider(ctx); err != nil {
		return err
	}

	if jsonOut {
		return e.explainJSON(ctx, fr, opts)
	}

	pt := prompt.TypeDiagnose
	if question != "" {
		pt = prompt.TypeQuestion
	}
	messages, err := prompt.Build(pt, opts)
	if err != nil {
		return err
	}
	_, err = e.stream(ctx, messages, true)
	return err
}

// buildOptions renders the report as plain text and redacts it together
// with the digest so both share placeholders.
func (e *explainer) buildOptions(fr output.FileResult, text, question string) (prompt.BuildOptions, error) {
	var report bytes.Buffer
	if err := output.New(&report, output.FormatText, output.ColorNever).WriteResults([]output.FileResult{fr}); err != nil {
		return prompt.BuildOptions{}, err
	}

	p := preprocess.New(
		preprocess.WithTokenLimit(e.cfg.LLM.TokenLimit),
		preprocess.WithRedaction(e.cfg.Redaction.Enabled),
		preprocess.WithRedactionPatterns(e.cfg.Redaction.Patterns),
	)
	digest := p.Process(text)
	e.logger.Debug("log digest built",
		"templates", digest.TotalTemplates,
		"redacted", digest.RedactedCount,
		"tokens", digest.TokenCount,
		"limit", digest.TokenLimit)

	return prompt.BuildOptions{
		Report:   p.Redact(report.String()),
		Digest:   digest.Summary,
		Question: question,
		File:     p.Redact(filepath.Base(fr.File)),
	}, nil
}

func (e *explainer) checkProvider(ctx context.Context) error {
	hctx, cancel := context.WithTimeout(ctx, heartbeatTimeout)
	defer cancel()
	if err := e.provider.Heartbeat(hctx); err != nil {
		if errors.Is(err, llm.ErrProviderUnavailable) {
			return fmt.Errorf("%w (is `ollama serve` running?)", err)
		}
		return err
	}

	model := e.cfg.LLM.Ollama.Model
	if model == "" {
		return nil
	}
	ok, err := e.provider.ModelAvailable(hctx, model)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s (run `ollama pull %s`)", llm.ErrModelNotFound, model, model)
	}
	return nil
}

// stream sends messages and returns the full reply. When echo is set the
// reply is written to out as it arrives. A spinner runs on errOut until
// the first chunk.
func (e *explainer) stream(ctx context.Context, messages []llm.Message, echo bool) (string, error) {
	spin := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(e.errOut))
	spin.Suffix = " Asking " + e.cfg.LLM.Ollama.Model + "..."
	spin.Start()
	var once sync.Once
	stopSpin := func() { once.Do(spin.Stop) }
	defer stopSpin()

	events, err := e.provider.ChatStream(ctx, messages, e.chatOptions())
	if err != nil {
		return "", err
	}

	var onChunk func(string)
	if echo {
		onChunk = func(chunk string) {
			stopSpin()
			fmt.Fprint(e.out, chunk)
		}
	}
	reply, err := llm.Collect(events, onChunk)
	if err != nil {
		return reply, err
	}
	if echo && !strings.HasSuffix(reply, "\n") {
		fmt.Fprintln(e.out)
	}
	return reply, nil
}

// explainJSON runs the two-pass structured diagnosis.
func (e *explainer) explainJSON(ctx context.Context, fr output.FileResult, opts prompt.BuildOptions) error {
	first, err := prompt.Build(prompt.TypeStructuredOutput, opts)
	if err != nil {
		return err
	}
	diagnosis, err := e.stream(ctx, first, false)
	if err != nil {
		return err
	}

	opts.FirstPassResponse = diagnosis
	second, err := prompt.Build(prompt.TypeStructuredOutput, opts)
	if err != nil {
		return err
	}
	reply, err := e.stream(ctx, second, false)
	if err != nil {
		return err
	}

	raw := extractJSON(reply)
	if !json.Valid(raw) {
		e.logger.Debug("model reply is not JSON", "reply", reply)
		return fmt.Errorf("model did not return valid JSON")
	}
	return output.New(e.out, output.FormatJSON, output.ColorNever).WriteJSON(
		Explanation{File: fr.File, Outcome: fr.Outcome, Diagnosis: raw})
}

func (e *explainer) chatOptions() *llm.ChatOptions {
	return &llm.ChatOptions{
		Model:       e.cfg.LLM.Ollama.Model,
		Temperature: e.cfg.LLM.Temperature,
		MaxTokens:   e.cfg.LLM.MaxTokens,
	}
}

// extractJSON trims markdown fences and any prose around the outermost
// JSON object.
func extractJSON(reply string) []byte {
	s := strings.TrimSpace(reply)
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return []byte(s)
	}
	return []byte(s[start : end+1])
}
