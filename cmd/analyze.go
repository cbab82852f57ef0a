package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bimmerbailey/ryulog/internal/analyzer"
	"github.com/bimmerbailey/ryulog/internal/blocklist"
	"github.com/bimmerbailey/ryulog/internal/config"
	"github.com/bimmerbailey/ryulog/internal/logfile"
	"github.com/bimmerbailey/ryulog/internal/output"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [flags] <file|dir|glob>...",
	Short: "Analyze Ryujinx log files",
	Long: `Analyze one or more Ryujinx log files and print a report for each:
system and emulator details, settings, the latest error, mods and advice.

A directory argument analyzes every .log and .txt file directly inside it.
Version advice (outdated, pull-request or custom builds) is only given when
--channel names one of the channels listed under channels.allowed.

Examples:
  ryulog analyze Ryujinx_1.1.1217_2024-01-01_12-00-00.log
  ryulog analyze --format json ~/.config/Ryujinx/Logs
  ryulog analyze --channel support --workers 8 "logs/*.log"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	addChannelFlag(analyzeCmd)
	analyzeCmd.Flags().Int("workers", config.DefaultWorkers, "number of files analyzed concurrently")

	rootCmd.AddCommand(analyzeCmd)
}

func addChannelFlag(cmd *cobra.Command) {
	cmd.Flags().String("channel", "", "channel the log was posted in (enables version advice when allowed)")
}

// applyFlags overlays command flags the user set explicitly onto cfg.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	if f := cmd.Flags().Lookup("channel"); f != nil && f.Changed {
		cfg.Channel = f.Value.String()
	}
	if f := cmd.Flags().Lookup("workers"); f != nil && f.Changed {
		n, err := cmd.Flags().GetInt("workers")
		if err != nil {
			return err
		}
		cfg.Workers = n
	}
	return cfg.Validate()
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	files, err := config.ExpandGlobs(args)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Verbose)
	store, err := blocklist.Open(cfg.Blocklist.Path, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := commandContext(cmd)
	session := newSession(ctx, cfg, store, logger)
	results, err := session.analyzeFiles(ctx, files)
	if err != nil {
		return err
	}

	writer := output.New(cmd.OutOrStdout(), output.ParseFormat(cfg.Format), output.ParseColorMode(cfg.Color))
	return writer.WriteResults(results)
}

// session bundles what every file analysis needs.
type session struct {
	cfg      *config.Config
	analyzer *analyzer.Analyzer
	blocked  analyzer.Blocklist
	logger   *slog.Logger
}

func newSession(ctx context.Context, cfg *config.Config, store *blocklist.Store, logger *slog.Logger) *session {
	return &session{
		cfg: cfg,
		analyzer: analyzer.New(
			analyzer.WithPRChannel(cfg.Channels.PRTesting),
			analyzer.WithLogger(logger),
		),
		blocked: analyzer.BlocklistFunc(store.Checker(ctx)),
		logger:  logger,
	}
}

// analyzeFiles analyzes files concurrently, bounded by cfg.Workers, and
// returns results in input order.
func (s *session) analyzeFiles(ctx context.Context, files []string) ([]output.FileResult, error) {
	results := make([]output.FileResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := s.analyzeFile(file)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// analyzeFile reads and analyzes one log. Undecodable files become a
// result, not an error, so the remaining files are still reported.
func (s *session) analyzeFile(file string) (output.FileResult, error) {
	text, err := logfile.Read(file, s.cfg.Read.HeadBytes, s.cfg.Read.TailBytes)
	if errors.Is(err, logfile.ErrInvalidEncoding) {
		s.logger.Warn("log file could not be decoded", "file", file)
		return output.DecodeFailure(file), nil
	}
	if err != nil {
		return output.FileResult{}, fmt.Errorf("reading %s: %w", file, err)
	}

	if _, isRyujinx := logfile.IsLogName(file); !isRyujinx {
		s.logger.Info("file name does not look like a Ryujinx log", "file", file)
	}

	res := s.analyzer.Run(text, s.blocked, s.cfg.ChannelAllowed())
	s.logger.Debug("analyzed log", "file", file, "outcome", res.Outcome.String())
	return output.NewFileResult(file, res), nil
}
