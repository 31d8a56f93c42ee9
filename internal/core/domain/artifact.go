package domain

// CompilationContext is the caller-supplied configuration passed unmodified to every
// definition compile. The cache never interprets its contents.
type CompilationContext map[string]any

// CompiledArtifact is the result of compiling one function definition for one instant.
type CompiledArtifact struct {
	// DefinitionID is the identifier of the definition the artifact was compiled from.
	DefinitionID string
	// Window is the interval of instants for which the artifact is usable.
	Window ValidityWindow
	// Invoker is the opaque invocation handle. It is nil when the function cannot
	// be invoked on this node, which is not an error.
	Invoker any
}

// Invocable reports whether the artifact carries an invocation handle.
func (a CompiledArtifact) Invocable() bool {
	return a.Invoker != nil
}
