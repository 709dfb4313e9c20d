package tracing

// Span attribute keys used by relay spans.
const (
	AttrEventKind    = "event.kind"
	AttrEventText    = "event.text"
	AttrEventChannel = "event.channel"
	AttrHandled      = "chain.handled"
	AttrMuxState     = "mux.state"
	AttrSubscribers  = "mux.subscribers"
)

// Span name prefixes for consistent naming.
const (
	SpanPrefixChain = "chain.process."
	SpanPrefixMux   = "mux.dispatch."
)

// Event names recorded on spans.
const (
	EventDropped = "event.dropped"
)
