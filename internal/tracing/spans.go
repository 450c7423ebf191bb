package tracing

// Span attribute keys.
const (
	AttrCommandID     = "command.id"
	AttrCommandType   = "command.type"
	AttrCommandSource = "command.source"

	AttrShortcutID = "shortcut.id"
	AttrLaunchID   = "launch.id"

	AttrRPCMethod = "rpc.method"
)

// Span name prefixes.
const (
	SpanPrefixCommand = "command.process."
	SpanPrefixRPC     = "rpc."
	SpanPrefixOrch    = "orchestrator."
)
