package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bimmerbailey/ryulog/internal/blocklist"
	"github.com/bimmerbailey/ryulog/internal/config"
	"github.com/bimmerbailey/ryulog/internal/output"
	"github.com/bimmerbailey/ryulog/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] <file|dir>",
	Short: "Re-analyze a log whenever Ryujinx writes to it",
	Long: `Follow a Ryujinx log file, or the newest log in a Logs directory, and
print a fresh report after each burst of writes.

Examples:
  ryulog watch ~/.config/Ryujinx/Logs
  ryulog watch --debounce 5s Ryujinx_1.1.1217_2024-01-01_12-00-00.log`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	addChannelFlag(watchCmd)
	watchCmd.Flags().String("debounce", "", "quiet period after the last write before re-analyzing (default from watch.debounce)")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	debounce, err := watchDebounce(cmd, cfg)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Verbose)
	store, err := blocklist.Open(cfg.Blocklist.Path, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := newSession(ctx, cfg, store, logger)
	writer := output.New(cmd.OutOrStdout(), output.ParseFormat(cfg.Format), output.ParseColorMode(cfg.Color))

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (Ctrl+C to stop)\n", args[0])

	w := watch.New(watch.Options{
		Path:     args[0],
		Debounce: debounce,
		Logger:   logger,
		OnChange: func(ctx context.Context, path string) error {
			res, err := s.analyzeFile(path)
			if err != nil {
				// A log can vanish between the event and the read.
				logger.Warn("re-analysis failed", "file", path, "error", err)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n--- %s ---\n", time.Now().Format(time.TimeOnly))
			return writer.WriteResults([]output.FileResult{res})
		},
	})
	return w.Run(ctx)
}

func watchDebounce(cmd *cobra.Command, cfg *config.Config) (time.Duration, error) {
	value := cfg.Watch.Debounce
	if f := cmd.Flags().Lookup("debounce"); f != nil && f.Changed {
		value = f.Value.String()
	}
	if value == "" {
		return watch.DefaultDebounce, nil
	}
	d, err := config.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid debounce: %w", err)
	}
	return d, nil
}
