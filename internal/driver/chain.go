package driver

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/zjrosen/relay/internal/chain"
	"github.com/zjrosen/relay/internal/event"
	"github.com/zjrosen/relay/internal/log"
)

// EventSource produces events on demand.
type EventSource interface {
	Next() event.Event
}

// StopReason records why a chain run ended.
type StopReason string

const (
	StopTerminate StopReason = "terminate"
	StopLimit     StopReason = "limit"
	StopCancelled StopReason = "cancelled"
)

// ChainOptions configures RunChain.
type ChainOptions struct {
	// MaxEvents caps the number of events pulled, including the terminating
	// one. Zero means no cap.
	MaxEvents int
	// OnEvent is called after each forwarded event with the chain's verdict.
	OnEvent func(e event.Event, handled bool)
}

// ChainReport summarizes a chain run.
type ChainReport struct {
	RunID string
	// Events is the number of events pulled from the source.
	Events int
	// ByKind counts pulled events per kind, TERMINATE included.
	ByKind    map[event.Kind]int
	Handled   int
	Unhandled int
	Stop      StopReason
	Elapsed   time.Duration
}

// RunChain pulls events from src and hands each to h until a TERMINATE event
// is pulled, ctx is cancelled or opts.MaxEvents is reached. The TERMINATE
// event is counted but never forwarded. Cancellation returns the partial
// report together with ctx.Err().
func RunChain(ctx context.Context, src EventSource, h chain.Handler[event.Event], opts ChainOptions) (ChainReport, error) {
	report := ChainReport{
		RunID:  uuid.New().String(),
		ByKind: make(map[event.Kind]int),
	}
	start := time.Now()

	log.Info(log.CatDriver, "chain run started", "run", report.RunID, "max_events", opts.MaxEvents)

	finish := func(reason StopReason) {
		report.Stop = reason
		report.Elapsed = time.Since(start)
		log.Info(log.CatDriver, "chain run finished",
			"run", report.RunID,
			"reason", reason,
			"events", report.Events,
			"handled", report.Handled,
			"unhandled", report.Unhandled)
	}

	for {
		if err := ctx.Err(); err != nil {
			finish(StopCancelled)
			return report, err
		}
		if opts.MaxEvents > 0 && report.Events >= opts.MaxEvents {
			finish(StopLimit)
			return report, nil
		}

		e := src.Next()
		report.Events++
		report.ByKind[e.Kind()]++

		if e.Kind() == event.KindTerminate {
			finish(StopTerminate)
			return report, nil
		}

		handled := h != nil && h.Handle(ctx, e)
		if handled {
			report.Handled++
		} else {
			report.Unhandled++
			log.Debug(log.CatDriver, "event unhandled", "run", report.RunID, "event", e.String())
		}
		if opts.OnEvent != nil {
			opts.OnEvent(e, handled)
		}
	}
}
