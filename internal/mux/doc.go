// Package mux implements a state-gated publish/subscribe multiplexer.
//
// Subscribers attach to named channels. While the multiplexer is ACTIVE a
// dispatched event is delivered to every subscriber of its channel in
// registration order. While DORMANT events are dropped, not queued, and the
// subscriber table is frozen: Connect and Disconnect are silent no-ops.
//
//	m := mux.New()
//	cars, _ := counter.New("cars")
//	_ = m.Connect("cars", cars)
//	_ = m.Dispatch(ctx, event.MustNamed("cars"))
//
// One event's fan-out completes before the next dispatch starts, even when
// several goroutines dispatch. Subscribers may connect or disconnect from
// inside Receive; the change applies to the next dispatch. Subscribers must
// not call Dispatch from inside Receive.
package mux
