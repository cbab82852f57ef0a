package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bimmerbailey/ryulog/internal/config"
	"github.com/bimmerbailey/ryulog/internal/preprocess"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "ryulog",
	Short: "Analyze Ryujinx emulator logs",
	Long: `ryulog reads Ryujinx log files and reports the system, emulator and
game details they contain, together with advice for common problems.

Examples:
  ryulog analyze Ryujinx_1.1.1217_2024-01-01_12-00-00.log
  ryulog analyze --channel support ~/.config/Ryujinx/Logs
  ryulog watch ~/.config/Ryujinx/Logs
  ryulog explain --question "why does it crash after the intro?" game.log
  ryulog block 0100000000010000 "homebrew launcher"`,
	SilenceUsage: true,
}

// Execute is called by main.main(). It runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.ryulog.yaml)")
	rootCmd.PersistentFlags().StringP("format", "f", config.DefaultFormat, "output format (text, table, json, yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().String("color", config.DefaultColor, "colorize output (auto, always, never)")

	_ = viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("color", rootCmd.PersistentFlags().Lookup("color"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error finding home directory:", err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".ryulog")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("RYULOG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

// setDefaults registers a default for every configuration key so that
// environment overrides work for nested keys too.
func setDefaults() {
	viper.SetDefault("format", config.DefaultFormat)
	viper.SetDefault("verbose", false)
	viper.SetDefault("color", config.DefaultColor)
	viper.SetDefault("channel", "")
	viper.SetDefault("workers", config.DefaultWorkers)

	viper.SetDefault("read.head_bytes", config.DefaultHeadBytes)
	viper.SetDefault("read.tail_bytes", config.DefaultTailBytes)

	viper.SetDefault("channels.allowed", []string{})
	viper.SetDefault("channels.pr_testing", config.DefaultPRChannel)

	viper.SetDefault("blocklist.path", config.DefaultBlocklistPath())
	viper.SetDefault("watch.debounce", config.DefaultDebounce)

	viper.SetDefault("llm.provider", "ollama")
	viper.SetDefault("llm.temperature", 0)
	viper.SetDefault("llm.max_tokens", 0)
	viper.SetDefault("llm.token_limit", 4000)
	viper.SetDefault("llm.ollama.host", "")
	viper.SetDefault("llm.ollama.model", "llama3.2")
	viper.SetDefault("llm.ollama.keep_alive", "")
	viper.SetDefault("llm.ollama.num_ctx", 0)

	viper.SetDefault("redaction.enabled", true)
	viper.SetDefault("redaction.patterns", preprocess.DefaultPatterns())
}

// loadConfig unmarshals and validates the merged configuration.
func loadConfig() (*config.Config, error) {
	cfg := &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger returns the stderr logger handed to internal packages.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelError
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// commandContext returns the command's context, or Background when the
// command was invoked directly.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
