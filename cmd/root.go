package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/relay/internal/config"
	"github.com/zjrosen/relay/internal/flags"
	"github.com/zjrosen/relay/internal/log"
	"github.com/zjrosen/relay/internal/styles"
)

func init() {
	// Query the terminal background before any Bubble Tea program starts so
	// the OSC 11 reply cannot land in the form's input fields.
	_ = lipgloss.HasDarkBackground()
}

const localConfigPath = ".relay/config.yaml"

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	logFile   string
	cfg       = config.Defaults()

	logCleanup = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "relay",
	Short: "Event routing demos: handler chain, multiplexer and mediator",
	Long: `relay drives three event routing components from the command line:

  chain    random input events through a chain of handlers
  traffic  named vehicle events through a multiplexer across ACTIVE/DORMANT phases
  form     a name/email form whose OK button is governed by a mediator`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) { logCleanup() },
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .relay/config.yaml, then ~/.config/relay/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write debug logs (also RELAY_DEBUG=1)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"debug log path (default: $RELAY_LOG or debug.log)")
	rootCmd.PersistentFlags().Uint64("seed", 0,
		"seed for the random sources (0 = seed from the clock)")

	_ = viper.BindPFlag("seed", rootCmd.PersistentFlags().Lookup("seed"))
}

func initConfig() {
	viper.SetEnvPrefix("RELAY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .relay/config.yaml (current directory)
		// 2. ~/.config/relay/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			viper.SetConfigFile(localConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "relay"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "relay: reading config: %v\n", err)
		}
	}

	cfg = config.Defaults()
	if err := viper.Unmarshal(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "relay: decoding config: %v\n", err)
	}
}

// setup enables logging and validates the loaded configuration.
func setup(cmd *cobra.Command, _ []string) error {
	cleanup, err := initLogging()
	if err != nil {
		return err
	}
	logCleanup = cleanup

	log.Info(log.CatConfig, "relay starting",
		"command", cmd.Name(),
		"version", version,
		"config", viper.ConfigFileUsed())

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	styles.ApplyTheme(cfg.Theme.Muted, cfg.Theme.Error, cfg.Theme.Success)
	return nil
}

func initLogging() (func(), error) {
	if os.Getenv("RELAY_DEBUG") == "" && !debugFlag {
		return func() {}, nil
	}
	path := logFile
	if path == "" {
		path = os.Getenv("RELAY_LOG")
	}
	if path == "" {
		path = "debug.log"
	}
	cleanup, err := log.Init(path)
	if err != nil {
		return nil, fmt.Errorf("initializing logging: %w", err)
	}
	return cleanup, nil
}

// featureFlags builds the flag registry from config, with command-line
// overrides for flags whose cobra flag was set explicitly.
func featureFlags(cmd *cobra.Command, overrides map[string]string) *flags.Registry {
	reg := flags.New(cfg.Flags)
	forced := make(map[string]bool)
	for cobraFlag, name := range overrides {
		if f := cmd.Flags().Lookup(cobraFlag); f != nil && f.Changed {
			v, _ := cmd.Flags().GetBool(cobraFlag)
			forced[name] = v
		}
	}
	if len(forced) == 0 {
		return reg
	}
	return reg.With(forced)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
