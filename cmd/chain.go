package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/relay/internal/cachemanager"
	"github.com/zjrosen/relay/internal/chain"
	"github.com/zjrosen/relay/internal/config"
	"github.com/zjrosen/relay/internal/driver"
	"github.com/zjrosen/relay/internal/event"
	"github.com/zjrosen/relay/internal/flags"
	"github.com/zjrosen/relay/internal/log"
	"github.com/zjrosen/relay/internal/tracing"
)

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Run random input events through a handler chain",
	Long: `Runs random MOUSE, KEYPRESS and TIMER events through a chain of
handlers (keypress, then mouse, then timer) until a TERMINATE event arrives.
With debug_tap set, the run is repeated with a debug tap in front that prints
every event before the handlers see it.

Example:
  relay chain --seed 42
  relay chain --events 20 --debug-tap=false
  relay chain --dedup --trace`,
	RunE: runChainCmd,
}

func init() {
	rootCmd.AddCommand(chainCmd)

	chainCmd.Flags().Int("events", 0, "stop each run after this many events (0 = until TERMINATE)")
	chainCmd.Flags().Bool("debug-tap", true, "repeat the run with the debug tap in front")
	chainCmd.Flags().Bool("dedup", false, "drop repeated events inside chain.dedup_window")
	chainCmd.Flags().Bool("trace", false, "wrap the chain in tracing spans")

	_ = viper.BindPFlag("chain.max_events", chainCmd.Flags().Lookup("events"))
	_ = viper.BindPFlag("chain.debug_tap", chainCmd.Flags().Lookup("debug-tap"))
}

func runChainCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := featureFlags(cmd, map[string]string{
		"dedup": flags.FlagDedup,
		"trace": flags.FlagTraceChain,
	})

	provider, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("creating tracing provider: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			log.ErrorErr(log.CatTrace, "tracing shutdown failed", err)
		}
	}()

	return runChainDemo(ctx, cmd.OutOrStdout(), cfg, reg, provider)
}

type chainRun struct {
	title string
	chain *chain.Chain[event.Event]
}

// runChainDemo runs chain #1 and, when configured, chain #2: the same chain
// with the debug tap as its head, so the tap sees every event. Both runs draw
// from one source so timer ids never repeat.
func runChainDemo(ctx context.Context, out io.Writer, c config.Config, reg *flags.Registry, provider *tracing.Provider) error {
	weights, err := c.Chain.KindWeights()
	if err != nil {
		return err
	}
	opts := []event.SourceOption{event.WithWeights(weights)}
	if c.Seed != 0 {
		opts = append(opts, event.WithSeed(c.Seed))
	}
	src, err := event.NewSource(opts...)
	if err != nil {
		return fmt.Errorf("creating event source: %w", err)
	}

	base := buildEventChain(out, c.Chain, reg, provider)
	runs := []chainRun{{title: "Handler Chain #1", chain: base}}
	if c.Chain.DebugTap {
		runs = append(runs, chainRun{title: "Handler Chain #2 (debugging)", chain: base.Prepend(chain.DebugTap(out))})
	}

	for _, run := range runs {
		_, _ = fmt.Fprintln(out, run.title)
		report, err := driver.RunChain(ctx, src, run.chain, driver.ChainOptions{MaxEvents: c.Chain.MaxEvents})
		_, _ = fmt.Fprintln(out, driver.RenderChainReport(report))
		if err != nil {
			return err
		}
	}
	return nil
}

// buildEventChain assembles the demo chain: optional tracing, the logging
// link, optional dedup, then the keypress, mouse and timer handlers.
func buildEventChain(out io.Writer, c config.ChainConfig, reg *flags.Registry, provider *tracing.Provider) *chain.Chain[event.Event] {
	var links []chain.Link[event.Event]
	if reg.Enabled(flags.FlagTraceChain) && provider != nil {
		links = append(links, chain.EventTracing(provider.Tracer()))
	}
	links = append(links, chain.Logging[event.Event](log.CatChain))
	if reg.Enabled(flags.FlagDedup) {
		cache := cachemanager.NewInMemoryCacheManager[time.Time]("chain-dedup", c.DedupWindow, cachemanager.DefaultCleanupInterval)
		links = append(links, chain.Dedup(cache, c.DedupWindow, event.Event.String))
	}
	links = append(links,
		chain.OnKind(event.KindKeypress, func(_ context.Context, e event.Event) {
			_, _ = fmt.Fprintf(out, "Press:   %s\n", e)
		}),
		chain.OnKind(event.KindMouse, func(_ context.Context, e event.Event) {
			_, _ = fmt.Fprintf(out, "Click:   %s\n", e)
		}),
		chain.OnKind(event.KindTimer, func(_ context.Context, e event.Event) {
			_, _ = fmt.Fprintf(out, "Timeout: %s\n", e)
		}),
	)
	return chain.New(links...)
}
