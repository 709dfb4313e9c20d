// Package driver runs event sources through the routing components.
//
// RunChain pulls input events through a handler chain until a TERMINATE
// event arrives. RunTraffic feeds named events to a multiplexer across a
// sequence of ACTIVE/DORMANT phases. Both return a report tagged with a run
// id that also appears in every log line of the run.
package driver
