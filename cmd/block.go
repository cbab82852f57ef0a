package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bimmerbailey/ryulog/internal/blocklist"
	"github.com/bimmerbailey/ryulog/internal/config"
	"github.com/bimmerbailey/ryulog/internal/output"
)

var blockCmd = &cobra.Command{
	Use:   "block <title-id> [note...]",
	Short: "Add a title ID to the blocklist",
	Long: `Add a 16-digit hexadecimal title ID to the blocklist. Logs of a blocked
game are answered with a blocked notice instead of a report.

Examples:
  ryulog block 0100000000010000
  ryulog block 0100000000010000 pirated release`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBlock,
}

var unblockCmd = &cobra.Command{
	Use:   "unblock <title-id>",
	Short: "Remove a title ID from the blocklist",
	Args:  cobra.ExactArgs(1),
	RunE:  runUnblock,
}

var blockedCmd = &cobra.Command{
	Use:   "blocked",
	Short: "List blocked title IDs",
	Args:  cobra.NoArgs,
	RunE:  runBlocked,
}

func init() {
	rootCmd.AddCommand(blockCmd, unblockCmd, blockedCmd)
}

// withBlocklist opens the configured blocklist for the duration of fn.
func withBlocklist(fn func(cfg *config.Config, store *blocklist.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := blocklist.Open(cfg.Blocklist.Path, newLogger(cfg.Verbose))
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(cfg, store)
}

func titleIDArg(arg string) (string, error) {
	tid, err := blocklist.NormalizeTitleID(arg)
	if errors.Is(err, blocklist.ErrInvalidTitleID) {
		return "", fmt.Errorf("%q is not a title ID: want 16 hexadecimal digits", arg)
	}
	return tid, err
}

func runBlock(cmd *cobra.Command, args []string) error {
	tid, err := titleIDArg(args[0])
	if err != nil {
		return err
	}
	return withBlocklist(func(_ *config.Config, store *blocklist.Store) error {
		added, err := store.Add(commandContext(cmd), tid, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		if added {
			fmt.Fprintf(cmd.OutOrStdout(), "Blocked %s\n", tid)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s is already blocked\n", tid)
		}
		return nil
	})
}

func runUnblock(cmd *cobra.Command, args []string) error {
	tid, err := titleIDArg(args[0])
	if err != nil {
		return err
	}
	return withBlocklist(func(_ *config.Config, store *blocklist.Store) error {
		removed, err := store.Remove(commandContext(cmd), tid)
		if err != nil {
			return err
		}
		if removed {
			fmt.Fprintf(cmd.OutOrStdout(), "Unblocked %s\n", tid)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s was not blocked\n", tid)
		}
		return nil
	})
}

func runBlocked(cmd *cobra.Command, _ []string) error {
	return withBlocklist(func(cfg *config.Config, store *blocklist.Store) error {
		entries, err := store.List(commandContext(cmd))
		if err != nil {
			return err
		}
		writer := output.New(cmd.OutOrStdout(), output.ParseFormat(cfg.Format), output.ParseColorMode(cfg.Color))
		return writer.WriteBlocklist(entries)
	})
}
