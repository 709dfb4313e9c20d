package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/relay/internal/chain"
	"github.com/zjrosen/relay/internal/config"
	"github.com/zjrosen/relay/internal/driver"
	"github.com/zjrosen/relay/internal/event"
	"github.com/zjrosen/relay/internal/flags"
	"github.com/zjrosen/relay/internal/mux"
	"github.com/zjrosen/relay/internal/styles"
	"github.com/zjrosen/relay/internal/tracing"
)

func noopProvider(t *testing.T) *tracing.Provider {
	t.Helper()
	p, err := tracing.NewProvider(tracing.Config{})
	require.NoError(t, err)
	return p
}

// chainConfig returns a config whose sources never emit TERMINATE, so each
// run pulls exactly n events.
func chainConfig(n int, weights map[string]int) config.Config {
	c := config.Defaults()
	c.Seed = 42
	c.Chain.Weights = weights
	c.Chain.MaxEvents = n
	return c
}

func countPrefix(out, prefix string) int {
	n := 0
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, prefix) {
			n++
		}
	}
	return n
}

func TestRunChainDemo_BothChains(t *testing.T) {
	var out bytes.Buffer
	c := chainConfig(10, map[string]int{"mouse": 1, "keypress": 1, "timer": 1, "terminate": 0})

	require.NoError(t, runChainDemo(context.Background(), &out, c, flags.New(nil), noopProvider(t)))

	text := out.String()
	require.Contains(t, text, "Handler Chain #1")
	require.Contains(t, text, "Handler Chain #2 (debugging)")
	require.Equal(t, 10, countPrefix(text, "*DEBUG*: "), "only the second chain has the tap")

	handled := countPrefix(text, "Press:   ") + countPrefix(text, "Click:   ") + countPrefix(text, "Timeout: ")
	require.Equal(t, 20, handled, "every event is handled in both runs")
}

func TestRunChainDemo_DebugTapOff(t *testing.T) {
	var out bytes.Buffer
	c := chainConfig(5, map[string]int{"timer": 1})
	c.Chain.DebugTap = false

	require.NoError(t, runChainDemo(context.Background(), &out, c, flags.New(nil), noopProvider(t)))

	text := out.String()
	require.NotContains(t, text, "Handler Chain #2")
	require.Equal(t, 5, countPrefix(text, "Timeout: "))
}

func TestRunChainDemo_TimerIDsContinueAcrossRuns(t *testing.T) {
	var out bytes.Buffer
	c := chainConfig(3, map[string]int{"timer": 1})

	require.NoError(t, runChainDemo(context.Background(), &out, c, flags.New(nil), noopProvider(t)))

	text := out.String()
	for _, want := range []string{"Timeout: Timer 0", "Timeout: Timer 2", "Timeout: Timer 3", "Timeout: Timer 5"} {
		require.Contains(t, text, want)
	}
}

func TestRunChainDemo_Dedup(t *testing.T) {
	var out bytes.Buffer
	c := chainConfig(300, map[string]int{"keypress": 1})
	c.Chain.DebugTap = false

	reg := flags.New(map[string]bool{flags.FlagDedup: true})
	require.NoError(t, runChainDemo(context.Background(), &out, c, reg, noopProvider(t)))

	// 300 draws from 104 distinct keypresses must repeat inside the window.
	require.Less(t, countPrefix(out.String(), "Press:   "), 300)
}

func TestRunChainDemo_DebugTapSeesDedupedEvents(t *testing.T) {
	var out bytes.Buffer
	c := chainConfig(200, map[string]int{"keypress": 1})

	reg := flags.New(map[string]bool{flags.FlagDedup: true})
	require.NoError(t, runChainDemo(context.Background(), &out, c, reg, noopProvider(t)))

	_, second, ok := strings.Cut(out.String(), "Handler Chain #2")
	require.True(t, ok)
	require.Equal(t, 200, countPrefix(second, "*DEBUG*: "), "the tap sees every event pulled")
	require.Less(t, countPrefix(second, "Press:   "), 200, "repeats are still suppressed behind the tap")
}

func TestBuildEventChain_DebugHeadSeesEverything(t *testing.T) {
	var out bytes.Buffer
	c := config.Defaults().Chain
	reg := flags.New(map[string]bool{flags.FlagDedup: true})

	debugged := buildEventChain(&out, c, reg, noopProvider(t)).Prepend(chain.DebugTap(&out))
	for range 3 {
		debugged.Process(context.Background(), event.Keypress(false, false, 'a'))
	}

	require.Equal(t, 3, countPrefix(out.String(), "*DEBUG*: "))
	require.Equal(t, 1, countPrefix(out.String(), "Press:   "))
}

func TestRunChainDemo_TracingFlag(t *testing.T) {
	var out bytes.Buffer
	c := chainConfig(3, map[string]int{"mouse": 1})

	reg := flags.New(map[string]bool{flags.FlagTraceChain: true})
	require.NoError(t, runChainDemo(context.Background(), &out, c, reg, noopProvider(t)))
	require.Equal(t, 6, countPrefix(out.String(), "Click:   "))
}

func TestRunChainDemo_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := runChainDemo(ctx, &out, chainConfig(0, nil), flags.New(nil), noopProvider(t))
	require.ErrorIs(t, err, context.Canceled)
	require.NotContains(t, out.String(), "Handler Chain #2")
}

func TestWireTraffic(t *testing.T) {
	m := mux.New()
	w, err := wireTraffic(m, []string{"cars", "vans", "trucks", "bikes"})
	require.NoError(t, err)

	require.Len(t, m.Subscribers("cars"), 2)
	require.Len(t, m.Subscribers("vans"), 2)
	require.Len(t, m.Subscribers("trucks"), 2)
	require.Equal(t, []mux.Subscriber{w.total}, m.Subscribers("bikes"))
}

func TestRunTrafficDemo(t *testing.T) {
	var out bytes.Buffer
	c := config.Defaults()
	c.Seed = 7
	c.Traffic.EventsPerPhase = 20

	require.NoError(t, runTrafficDemo(context.Background(), &out, c, flags.New(nil), noopProvider(t)))

	text := out.String()
	for _, want := range []string{"Traffic run", "phase 1", "phase 3", "DORMANT", "ACTIVE", "vans+trucks", "total"} {
		require.Contains(t, text, want)
	}
}

func TestRunTrafficDemo_TraceFlag(t *testing.T) {
	var out bytes.Buffer
	c := config.Defaults()
	c.Seed = 7
	c.Traffic.EventsPerPhase = 5

	reg := flags.New(map[string]bool{flags.FlagTraceMux: true})
	require.NoError(t, runTrafficDemo(context.Background(), &out, c, reg, noopProvider(t)))
	require.Contains(t, out.String(), "total")
}

func TestRunFormScript(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runFormScript(&out))

	text := out.String()
	require.Contains(t, text, `start                  Text("") Text("") Button("OK") disabled Button("Cancel") enabled`)
	require.Contains(t, text, `Button("OK") enabled`)
	require.Contains(t, text, `OK clicked: name="Fred" email="fred@bloggers.com"`)
	require.Contains(t, text, "OK ignored (disabled)")
	require.Equal(t, 1, strings.Count(text, "OK clicked"))
	require.True(t, strings.HasSuffix(text, "Cancel clicked\n"))
}

func TestParsePhases(t *testing.T) {
	phases, err := parsePhases([]string{"dormant:5", "ACTIVE:10"})
	require.NoError(t, err)
	require.Equal(t, []driver.Phase{{State: mux.Dormant, Events: 5}, {State: mux.Active, Events: 10}}, phases)

	for _, bad := range []string{"active", "paused:1", "active:x", "active:-2"} {
		_, err := parsePhases([]string{bad})
		require.Error(t, err, bad)
	}
}

func TestRunConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay", "config.yaml")
	var out bytes.Buffer
	configInitCmd.SetOut(&out)
	t.Cleanup(func() { configInitCmd.SetOut(nil) })

	require.NoError(t, runConfigInit(configInitCmd, []string{path}))
	require.Contains(t, out.String(), "wrote "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, config.DefaultConfigTemplate(), string(data))

	require.ErrorContains(t, runConfigInit(configInitCmd, []string{path}), "already exists")
}

func TestFeatureFlags_CommandLineOverrides(t *testing.T) {
	orig := cfg
	t.Cleanup(func() { cfg = orig })
	cfg = config.Defaults()
	cfg.Flags[flags.FlagTraceChain] = true

	c := &cobra.Command{Use: "test"}
	c.Flags().Bool("dedup", false, "")
	c.Flags().Bool("trace", false, "")
	require.NoError(t, c.Flags().Set("dedup", "true"))

	reg := featureFlags(c, map[string]string{"dedup": flags.FlagDedup, "trace": flags.FlagTraceChain})
	require.True(t, reg.Enabled(flags.FlagDedup), "explicit flag wins")
	require.True(t, reg.Enabled(flags.FlagTraceChain), "unset flag keeps config value")
}

func TestReloadTheme(t *testing.T) {
	origCfg, origMuted := cfg, styles.TextMutedColor
	t.Cleanup(func() {
		cfg = origCfg
		styles.TextMutedColor = origMuted
		viper.SetConfigFile("")
	})

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("theme:\n  muted: \"#123456\"\n"), 0o600))
	viper.SetConfigFile(path)

	require.NoError(t, reloadTheme())
	require.Equal(t, "#123456", cfg.Theme.Muted)
	require.Equal(t, lipgloss.AdaptiveColor{Light: "#123456", Dark: "#123456"}, styles.TextMutedColor)

	require.NoError(t, os.WriteFile(path, []byte("traffic:\n  max_count: 0\n"), 0o600))
	require.Error(t, reloadTheme(), "invalid config is rejected")
	require.Equal(t, "#123456", cfg.Theme.Muted, "previous config kept")
}

func TestRunConfigPhases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: 7\n"), 0o600))
	viper.SetConfigFile(path)

	var out bytes.Buffer
	configPhasesCmd.SetOut(&out)
	t.Cleanup(func() {
		configPhasesCmd.SetOut(nil)
		_ = configPhasesCmd.Flags().Set("dry-run", "false")
		viper.SetConfigFile("")
	})

	require.NoError(t, configPhasesCmd.Flags().Set("dry-run", "true"))
	require.NoError(t, runConfigPhases(configPhasesCmd, []string{"active:5"}))
	require.Contains(t, out.String(), "  seed: 7\n")
	require.Contains(t, out.String(), "+ traffic:\n")
	require.Contains(t, out.String(), "state: ACTIVE")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "seed: 7\n", string(data), "dry run leaves the file alone")

	out.Reset()
	require.NoError(t, configPhasesCmd.Flags().Set("dry-run", "false"))
	require.NoError(t, runConfigPhases(configPhasesCmd, []string{"active:5", "dormant:2"}))
	require.Contains(t, out.String(), "saved 2 phases to "+path)

	c := config.Defaults()
	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	require.NoError(t, v.Unmarshal(&c))
	require.Equal(t, []driver.Phase{{State: mux.Active, Events: 5}, {State: mux.Dormant, Events: 2}}, c.Traffic.Phases)
}
