// Package flags provides feature flags for optional routing behavior.
// A Registry is read-only once built; unknown flags read as disabled.
package flags

import (
	"maps"
	"slices"

	"github.com/zjrosen/relay/internal/log"
)

const (
	// FlagDedup drops repeated events inside chain.dedup_window.
	FlagDedup = "dedup"

	// FlagTraceChain wraps chain traversal in OpenTelemetry spans.
	FlagTraceChain = "trace-chain"

	// FlagTraceMux records a span per multiplexer dispatch.
	FlagTraceMux = "trace-mux"
)

// Known lists every flag relay reads.
var Known = []string{FlagDedup, FlagTraceChain, FlagTraceMux}

// Registry holds feature flag state loaded from configuration.
type Registry struct {
	flags map[string]bool
}

// New creates a Registry from a config map. The map is copied.
// A nil map yields a registry with every flag disabled.
func New(flags map[string]bool) *Registry {
	r := &Registry{flags: make(map[string]bool, len(flags))}
	maps.Copy(r.flags, flags)
	log.Debug(log.CatConfig, "Feature flags initialized", "count", len(r.flags), "flags", r.flags)
	for _, name := range r.Unknown() {
		log.Warn(log.CatConfig, "Unknown feature flag in config", "flag", name)
	}
	return r
}

// With returns a copy of r with the given flags forced on or off.
// The receiver is unchanged.
func (r *Registry) With(overrides map[string]bool) *Registry {
	merged := r.All()
	maps.Copy(merged, overrides)
	return &Registry{flags: merged}
}

// Enabled reports whether the named flag is on.
// Unknown flags and a nil registry read as false.
func (r *Registry) Enabled(name string) bool {
	if r == nil {
		return false
	}
	value, exists := r.flags[name]
	if !exists {
		log.Debug(log.CatConfig, "Unknown flag accessed", "flag", name, "result", false)
		return false
	}
	return value
}

// All returns a copy of all flags.
func (r *Registry) All() map[string]bool {
	if r == nil {
		return make(map[string]bool)
	}
	return maps.Clone(r.flags)
}

// Unknown returns configured flag names relay does not read, sorted.
func (r *Registry) Unknown() []string {
	if r == nil {
		return nil
	}
	var out []string
	for name := range r.flags {
		if !slices.Contains(Known, name) {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}
