package domain

import "go.trai.ch/zerr"

var (
	// ErrDefinitionCompileFailed is recorded when a single definition fails to compile.
	// It never aborts a compilation batch; the definition is omitted from the result.
	ErrDefinitionCompileFailed = zerr.New("definition compilation failed")

	// ErrCompilationInterrupted is returned when the caller's context is cancelled while
	// compile tasks are still outstanding.
	ErrCompilationInterrupted = zerr.New("compilation interrupted")

	// ErrInvalidValidityWindow is returned when a window's earliest bound is after its latest bound.
	ErrInvalidValidityWindow = zerr.New("validity window earliest bound is after latest bound")

	// ErrInvalidInstant is returned when a resolve is requested for the zero instant.
	ErrInvalidInstant = zerr.New("invalid compilation instant")

	// ErrInvalidCacheSize is returned when the cache bound is configured below one entry.
	ErrInvalidCacheSize = zerr.New("cache size must be at least 1")

	// ErrUnknownRepository is returned when a named repository does not exist in the catalog.
	ErrUnknownRepository = zerr.New("unknown repository")

	// ErrDuplicateDefinition is returned when a repository declares the same definition id twice.
	ErrDuplicateDefinition = zerr.New("duplicate definition id")

	// ErrMissingDefinitionID is returned when a declared definition has no identifier.
	ErrMissingDefinitionID = zerr.New("definition id is required")

	// ErrDefinitionNotValidAt is returned when a definition cannot be compiled for the requested instant.
	ErrDefinitionNotValidAt = zerr.New("definition is not valid at the requested instant")

	// ErrDefinitionRefused is returned by definitions declared to fail compilation.
	ErrDefinitionRefused = zerr.New("definition refused to compile")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigNotFound is returned when no config file can be found.
	ErrConfigNotFound = zerr.New("could not find " + ConfigFileName)

	// ErrNoInstantsSpecified is returned when resolve is invoked without any instant.
	ErrNoInstantsSpecified = zerr.New("no instants specified")

	// ErrUnknownExporter is returned when a telemetry exporter name is not recognised.
	ErrUnknownExporter = zerr.New("unknown telemetry exporter")

	// ErrResolveFailed is returned when the resolve command fails as a whole.
	ErrResolveFailed = zerr.New("resolve failed")
)
