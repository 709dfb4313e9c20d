// Package event defines the immutable events routed by relay and the sources
// that generate them.
//
// There are two families of events. Input events (MOUSE, KEYPRESS, TIMER and
// the TERMINATE sentinel) flow through handler chains; named events carry an
// identifier and a count and are multicast by the multiplexer to every
// subscriber of the channel with that name.
//
// Sources are explicit values. A Source owns its TIMER id counter, so two
// sources never share ids and tests can build independent ones.
package event
