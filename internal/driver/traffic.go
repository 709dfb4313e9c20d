package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zjrosen/relay/internal/counter"
	"github.com/zjrosen/relay/internal/event"
	"github.com/zjrosen/relay/internal/log"
	"github.com/zjrosen/relay/internal/mux"
)

// ErrInvalidPhase is returned when a phase has an unknown state or a
// negative event count.
var ErrInvalidPhase = errors.New("driver: invalid phase")

// Phase is one stretch of a traffic run: the multiplexer is put into State
// and Events events are dispatched.
type Phase struct {
	State  mux.State `mapstructure:"state" yaml:"state"`
	Events int       `mapstructure:"events" yaml:"events"`
}

// Validate checks the phase state and event count.
func (p Phase) Validate() error {
	_, err := p.normalize()
	return err
}

// normalize returns p with its state in canonical upper case.
func (p Phase) normalize() (Phase, error) {
	state, err := mux.ParseState(string(p.State))
	if err != nil {
		return p, fmt.Errorf("%w: %w", ErrInvalidPhase, err)
	}
	if p.Events < 0 {
		return p, fmt.Errorf("%w: events must be >= 0, got %d", ErrInvalidPhase, p.Events)
	}
	p.State = state
	return p, nil
}

// DefaultPhases returns the dormant/active/dormant sequence with n events in
// each phase.
func DefaultPhases(n int) []Phase {
	return []Phase{
		{State: mux.Dormant, Events: n},
		{State: mux.Active, Events: n},
		{State: mux.Dormant, Events: n},
	}
}

// CounterView is a counter's state at the end of a phase.
type CounterView struct {
	Label string
	Text  string
	Total int
}

// PhaseReport summarizes one phase.
type PhaseReport struct {
	State      mux.State
	Events     int
	Dropped    int
	Deliveries int
	Failures   int
	Counters   []CounterView
}

// TrafficReport summarizes a traffic run.
type TrafficReport struct {
	RunID   string
	Phases  []PhaseReport
	Stats   mux.Stats
	Elapsed time.Duration
}

type watch struct {
	label   string
	counter *counter.Counter
}

type trafficConfig struct {
	watches []watch
	hook    func(phase int, e event.Event, err error)
}

// TrafficOption configures RunTraffic.
type TrafficOption func(*trafficConfig)

// WithWatch snapshots c under label at the end of every phase.
func WithWatch(label string, c *counter.Counter) TrafficOption {
	return func(cfg *trafficConfig) {
		if c != nil {
			cfg.watches = append(cfg.watches, watch{label: label, counter: c})
		}
	}
}

// WithDispatchHook calls fn after every dispatch with the phase index, the
// event and the dispatch error.
func WithDispatchHook(fn func(phase int, e event.Event, err error)) TrafficOption {
	return func(cfg *trafficConfig) {
		cfg.hook = fn
	}
}

// RunTraffic runs the phases in order against m. Subscriber failures are
// logged and counted in the report but do not stop the run. All phases are
// validated before any event is dispatched. Cancellation returns the partial
// report together with ctx.Err().
func RunTraffic(ctx context.Context, src EventSource, m *mux.Multiplexer, phases []Phase, opts ...TrafficOption) (report TrafficReport, err error) {
	var cfg trafficConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	report.RunID = uuid.New().String()
	normalized := make([]Phase, len(phases))
	for i, p := range phases {
		np, perr := p.normalize()
		if perr != nil {
			return report, fmt.Errorf("phase %d: %w", i, perr)
		}
		normalized[i] = np
	}

	start := time.Now()
	defer func() {
		report.Stats = m.Stats()
		report.Elapsed = time.Since(start)
	}()

	log.Info(log.CatDriver, "traffic run started", "run", report.RunID, "phases", len(phases))

	for i, p := range normalized {
		m.SetState(p.State)
		before := m.Stats()
		pr := PhaseReport{State: p.State}

		for range p.Events {
			if cerr := ctx.Err(); cerr != nil {
				report.Phases = append(report.Phases, finishPhase(pr, before, m, cfg.watches))
				return report, cerr
			}

			e := src.Next()
			pr.Events++
			dispatchErr := m.Dispatch(ctx, e)
			if dispatchErr != nil {
				var derr *mux.DeliveryError
				if !errors.As(dispatchErr, &derr) {
					report.Phases = append(report.Phases, finishPhase(pr, before, m, cfg.watches))
					return report, dispatchErr
				}
				log.ErrorErr(log.CatDriver, "subscriber failed", dispatchErr, "run", report.RunID, "phase", i)
			}
			if cfg.hook != nil {
				cfg.hook(i, e, dispatchErr)
			}
		}

		pr = finishPhase(pr, before, m, cfg.watches)
		report.Phases = append(report.Phases, pr)
		log.Info(log.CatDriver, "phase finished",
			"run", report.RunID,
			"phase", i,
			"state", p.State,
			"events", pr.Events,
			"dropped", pr.Dropped,
			"failures", pr.Failures)
	}
	return report, nil
}

func finishPhase(pr PhaseReport, before mux.Stats, m *mux.Multiplexer, watches []watch) PhaseReport {
	after := m.Stats()
	pr.Dropped = int(after.Dropped - before.Dropped)
	pr.Deliveries = int(after.Deliveries - before.Deliveries)
	pr.Failures = int(after.Failures - before.Failures)
	for _, w := range watches {
		pr.Counters = append(pr.Counters, CounterView{
			Label: w.label,
			Text:  w.counter.String(),
			Total: w.counter.Total(),
		})
	}
	return pr
}
