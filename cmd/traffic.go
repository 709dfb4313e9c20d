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

	"github.com/zjrosen/relay/internal/config"
	"github.com/zjrosen/relay/internal/counter"
	"github.com/zjrosen/relay/internal/driver"
	"github.com/zjrosen/relay/internal/event"
	"github.com/zjrosen/relay/internal/flags"
	"github.com/zjrosen/relay/internal/log"
	"github.com/zjrosen/relay/internal/mux"
	"github.com/zjrosen/relay/internal/pubsub"
	"github.com/zjrosen/relay/internal/tracing"
)

var trafficCmd = &cobra.Command{
	Use:   "traffic",
	Short: "Count vehicle events through a multiplexer",
	Long: `Feeds random vehicle events (cars, vans, trucks) to a multiplexer with
three counters subscribed: one for cars, one for vans and trucks, and an
anonymous total. The multiplexer runs through phases (dormant, active,
dormant by default); events arriving while dormant are dropped.

Example:
  relay traffic --events 50 --seed 7
  relay traffic --trace`,
	RunE: runTrafficCmd,
}

func init() {
	rootCmd.AddCommand(trafficCmd)

	trafficCmd.Flags().Int("events", 100, "events per phase")
	trafficCmd.Flags().Bool("trace", false, "record a tracing span per dispatch")
	_ = viper.BindPFlag("traffic.events_per_phase", trafficCmd.Flags().Lookup("events"))
}

func runTrafficCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := featureFlags(cmd, map[string]string{"trace": flags.FlagTraceMux})

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

	return runTrafficDemo(ctx, cmd.OutOrStdout(), cfg, reg, provider)
}

// trafficWiring is the demo's multiplexer with its counters subscribed.
type trafficWiring struct {
	mux        *mux.Multiplexer
	cars       *counter.Counter
	commercial *counter.Counter
	total      *counter.Counter
}

// wireTraffic connects the car counter to cars, the commercial counter to
// vans and trucks, and the total counter to every configured vehicle.
func wireTraffic(m *mux.Multiplexer, vehicles []string) (*trafficWiring, error) {
	w := &trafficWiring{mux: m}
	var err error
	if w.cars, err = counter.New(event.Cars); err != nil {
		return nil, err
	}
	if w.commercial, err = counter.New(event.Vans, event.Trucks); err != nil {
		return nil, err
	}
	if w.total, err = counter.New(); err != nil {
		return nil, err
	}

	subs := map[string][]mux.Subscriber{
		event.Cars:   {w.cars},
		event.Vans:   {w.commercial},
		event.Trucks: {w.commercial},
	}
	for _, v := range vehicles {
		for _, s := range append(subs[v], w.total) {
			if err := m.Connect(v, s); err != nil {
				return nil, fmt.Errorf("connecting %s: %w", v, err)
			}
		}
	}
	return w, nil
}

func runTrafficDemo(ctx context.Context, out io.Writer, c config.Config, reg *flags.Registry, provider *tracing.Provider) error {
	weights := c.Traffic.VehicleWeights()
	opts := []event.TrafficOption{
		event.WithTrafficWeights(weights),
		event.WithMaxCount(c.Traffic.MaxCount),
	}
	if c.Seed != 0 {
		opts = append(opts, event.WithTrafficSeed(c.Seed))
	}
	src, err := event.NewTrafficSource(opts...)
	if err != nil {
		return fmt.Errorf("creating traffic source: %w", err)
	}

	notices := pubsub.NewBroker[mux.Notice]()
	defer notices.Close()
	noticeCtx, cancelNotices := context.WithCancel(ctx)
	defer cancelNotices()
	go logNotices(notices.Subscribe(noticeCtx))

	vehicles := make([]string, 0, len(weights))
	for name := range weights {
		vehicles = append(vehicles, name)
	}
	// Wired while ACTIVE; a DORMANT multiplexer ignores Connect.
	muxOpts := []mux.Option{mux.WithNotices(notices)}
	if reg.Enabled(flags.FlagTraceMux) && provider != nil {
		muxOpts = append(muxOpts, mux.WithTracer(provider.Tracer()))
	}
	m := mux.New(muxOpts...)
	w, err := wireTraffic(m, vehicles)
	if err != nil {
		return err
	}

	report, err := driver.RunTraffic(ctx, src, m, c.Traffic.PhaseList(),
		driver.WithWatch("cars", w.cars),
		driver.WithWatch("vans+trucks", w.commercial),
		driver.WithWatch("total", w.total),
	)
	_, _ = fmt.Fprintln(out, driver.RenderTrafficReport(report))
	return err
}

func logNotices(ch <-chan pubsub.Event[mux.Notice]) {
	for ev := range ch {
		switch ev.Type {
		case pubsub.StateChangedEvent:
			log.Debug(log.CatMux, "notice: state changed", "state", ev.Payload.State)
		case pubsub.DroppedEvent:
			log.Debug(log.CatMux, "notice: event dropped", "channel", ev.Payload.Channel, "event", ev.Payload.Event.String())
		}
	}
}
