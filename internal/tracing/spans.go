package tracing

// Span attribute keys.
const (
	AttrSubjectName  = "subject.name"
	AttrSubjectValue = "subject.value"
	AttrObserverType = "observer.type"
	AttrCommand      = "cli.command"
)

// Span names.
const (
	SpanPrefixUpdate = "observer.update."
	SpanPrefixCLI    = "cli."
)
