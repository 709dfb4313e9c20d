package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/relay/internal/config"
	"github.com/zjrosen/relay/internal/driver"
	"github.com/zjrosen/relay/internal/mux"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the relay config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a commented default config",
	Long: `Writes the default configuration, with comments, to path
(default: .relay/config.yaml). An existing file is kept unless --force is set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

var configPhasesCmd = &cobra.Command{
	Use:   "phases STATE:EVENTS...",
	Short: "Save the traffic phase sequence",
	Long: `Replaces traffic.phases in the config file in use (or
.relay/config.yaml) and leaves every other section untouched.

With --dry-run the change is printed as a line diff and nothing is written.

Example:
  relay config phases dormant:50 active:200 dormant:50`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConfigPhases,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configPhasesCmd)

	configInitCmd.Flags().Bool("force", false, "overwrite an existing file")
	configPhasesCmd.Flags().Bool("dry-run", false, "print the change without saving it")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := localConfigPath
	if len(args) == 1 {
		path = args[0]
	}
	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.WriteDefaultConfig(path); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}

func runConfigPhases(cmd *cobra.Command, args []string) error {
	phases, err := parsePhases(args)
	if err != nil {
		return err
	}
	path := viper.ConfigFileUsed()
	if path == "" {
		path = localConfigPath
	}
	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		current, updated, err := config.PatchTrafficPhases(path, phases)
		if err != nil {
			return err
		}
		diff := config.DiffLines(string(current), string(updated))
		if diff == "" {
			diff = "no changes\n"
		}
		_, _ = fmt.Fprint(cmd.OutOrStdout(), diff)
		return nil
	}
	if err := config.SaveTrafficPhases(path, phases); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "saved %d phases to %s\n", len(phases), path)
	return nil
}

var errPhaseSyntax = errors.New("phase must be STATE:EVENTS")

// parsePhases parses arguments like "active:100" into phases.
func parsePhases(args []string) ([]driver.Phase, error) {
	phases := make([]driver.Phase, 0, len(args))
	for _, arg := range args {
		stateText, countText, ok := strings.Cut(arg, ":")
		if !ok {
			return nil, fmt.Errorf("%q: %w", arg, errPhaseSyntax)
		}
		state, err := mux.ParseState(stateText)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", arg, err)
		}
		n, err := strconv.Atoi(countText)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", arg, errPhaseSyntax)
		}
		p := driver.Phase{State: state, Events: n}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("%q: %w", arg, err)
		}
		phases = append(phases, p)
	}
	return phases, nil
}
