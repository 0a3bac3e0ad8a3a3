package domain

// ExecutionContext carries the invocation flags of an entry point.
type ExecutionContext struct {
	Target    string
	Force     bool
	FilesOnly bool

	// Confirm blocks until the operator acknowledged the message. Nil means
	// non interactive: preconditions fail immediately.
	Confirm func(message string)
}

func (ctx ExecutionContext) IsInteractive() bool {
	return ctx.Confirm != nil
}
