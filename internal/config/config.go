// Package config provides configuration types and defaults for relay.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zjrosen/relay/internal/chain"
	"github.com/zjrosen/relay/internal/driver"
	"github.com/zjrosen/relay/internal/event"
	"github.com/zjrosen/relay/internal/log"
	"github.com/zjrosen/relay/internal/tracing"
)

// Config holds all configuration options for relay.
type Config struct {
	// Seed makes every random source reproducible. Zero seeds from the clock.
	Seed    uint64          `mapstructure:"seed"`
	Chain   ChainConfig     `mapstructure:"chain"`
	Traffic TrafficConfig   `mapstructure:"traffic"`
	Tracing tracing.Config  `mapstructure:"tracing"`
	Theme   ThemeConfig     `mapstructure:"theme"`
	Flags   map[string]bool `mapstructure:"flags"`
}

// ChainConfig configures the handler chain demo.
type ChainConfig struct {
	// Weights maps input kinds (mouse, keypress, timer, terminate) to their
	// relative likelihood. Kinds are matched case-insensitively.
	Weights     map[string]int `mapstructure:"weights"`
	MaxEvents   int            `mapstructure:"max_events"` // 0 = run until TERMINATE
	// DebugTap adds a second run with the debug tap in front of the chain.
	DebugTap    bool           `mapstructure:"debug_tap"`
	DedupWindow time.Duration  `mapstructure:"dedup_window"`
}

// TrafficConfig configures the multiplexer demo.
type TrafficConfig struct {
	Weights        map[string]int `mapstructure:"weights"`
	MaxCount       int            `mapstructure:"max_count"`
	EventsPerPhase int            `mapstructure:"events_per_phase"`
	// Phases overrides the default dormant/active/dormant sequence.
	Phases []driver.Phase `mapstructure:"phases"`
}

// ThemeConfig overrides report and form colors. Empty values keep defaults.
type ThemeConfig struct {
	Muted   string `mapstructure:"muted"`
	Error   string `mapstructure:"error"`
	Success string `mapstructure:"success"`
}

// KindWeights converts the configured weights to event.Weights. An empty
// table yields the default weights.
func (c ChainConfig) KindWeights() (event.Weights, error) {
	if len(c.Weights) == 0 {
		return event.DefaultWeights(), nil
	}
	w := make(event.Weights, len(c.Weights))
	for name, n := range c.Weights {
		w[event.Kind(strings.ToUpper(name))] = n
	}
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("chain.weights: %w", err)
	}
	return w, nil
}

// PhaseList returns the configured phases, or the default sequence sized by
// EventsPerPhase.
func (t TrafficConfig) PhaseList() []driver.Phase {
	if len(t.Phases) > 0 {
		return t.Phases
	}
	return driver.DefaultPhases(t.EventsPerPhase)
}

// VehicleWeights returns the configured vehicle weights, or the defaults.
func (t TrafficConfig) VehicleWeights() map[string]int {
	if len(t.Weights) == 0 {
		return event.DefaultTrafficWeights()
	}
	return t.Weights
}

// ValidateChain checks chain configuration for errors.
func ValidateChain(c ChainConfig) error {
	if _, err := c.KindWeights(); err != nil {
		return err
	}
	if c.MaxEvents < 0 {
		return fmt.Errorf("chain.max_events must be >= 0, got %d", c.MaxEvents)
	}
	if c.DedupWindow < 0 {
		return fmt.Errorf("chain.dedup_window must be >= 0, got %s", c.DedupWindow)
	}
	return nil
}

// ValidateTraffic checks traffic configuration for errors.
func ValidateTraffic(t TrafficConfig) error {
	if _, err := event.NewTrafficSource(
		event.WithTrafficWeights(t.VehicleWeights()),
		event.WithMaxCount(t.MaxCount),
	); err != nil {
		return fmt.Errorf("traffic: %w", err)
	}
	if t.EventsPerPhase < 0 {
		return fmt.Errorf("traffic.events_per_phase must be >= 0, got %d", t.EventsPerPhase)
	}
	for i, p := range t.Phases {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("traffic.phases[%d]: %w", i, err)
		}
	}
	return nil
}

// Validate checks the whole configuration.
func (c Config) Validate() error {
	if err := ValidateChain(c.Chain); err != nil {
		return err
	}
	if err := ValidateTraffic(c.Traffic); err != nil {
		return err
	}
	return c.Tracing.Validate()
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Chain: ChainConfig{
			Weights: map[string]int{
				"mouse":     7,
				"keypress":  11,
				"timer":     5,
				"terminate": 1,
			},
			DebugTap:    true,
			DedupWindow: chain.DefaultDedupWindow,
		},
		Traffic: TrafficConfig{
			Weights:        event.DefaultTrafficWeights(),
			MaxCount:       event.DefaultMaxCount,
			EventsPerPhase: 100,
		},
		Tracing: tracing.DefaultConfig(),
		Flags: map[string]bool{
			"dedup":       false,
			"trace-chain": false,
			"trace-mux":   false,
		},
	}
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Relay Configuration

# Seed for every random source (0 = seed from the clock)
seed: 0

# Handler chain demo (relay chain)
chain:
  weights:            # relative likelihood of each input kind
    mouse: 7
    keypress: 11
    timer: 5
    terminate: 1
  max_events: 0       # stop after this many events (0 = run until TERMINATE)
  debug_tap: true     # rerun with "*DEBUG*: <event>" printed ahead of the handlers
  dedup_window: 250ms # window used by the dedup flag

# Multiplexer demo (relay traffic)
traffic:
  weights:
    cars: 11
    vans: 3
    trucks: 1
  max_count: 3          # vehicles per event are drawn from 1..max_count
  events_per_phase: 100
  # phases:             # overrides the dormant/active/dormant default
  #   - state: dormant
  #     events: 100
  #   - state: active
  #     events: 100

# OpenTelemetry tracing (needs flags.trace-chain or flags.trace-mux)
tracing:
  enabled: false
  exporter: stdout      # none, stdout or otlp
  otlp_endpoint: localhost:4317
  sample_rate: 1.0
  service_name: relay

# Colors for reports and the form
# theme:
#   muted: "#696969"
#   error: "#FF8787"
#   success: "#73F59F"

# Feature flags
flags:
  dedup: false          # drop repeated events inside chain.dedup_window
  trace-chain: false    # wrap the chain in tracing spans
  trace-mux: false      # record a span per multiplexer dispatch
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
