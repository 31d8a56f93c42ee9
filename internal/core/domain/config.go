package domain

import "time"

const (
	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "fnrepo.yaml"

	// DefaultCacheSize is the number of compilation results kept before FIFO eviction.
	DefaultCacheSize = 16
)

// Config is the loaded project configuration.
type Config struct {
	// Path is the file the configuration was read from.
	Path         string
	Cache        CacheSettings
	Log          LogSettings
	Repositories map[string][]DefinitionSpec
}

// CacheSettings configures the compilation cache.
type CacheSettings struct {
	// Size is the eviction bound.
	Size int
	// Parallelism bounds the compile worker pool. Zero means one worker per CPU.
	Parallelism int
	// SingleFlight coalesces concurrent resolves of the same key.
	SingleFlight bool
}

// LogSettings configures the logger.
type LogSettings struct {
	JSON bool
}

// DefinitionSpec is a declared function definition.
type DefinitionSpec struct {
	ID   string
	Name string
	// Window is the absolute validity of the definition. A compile outside it fails.
	Window ValidityWindow
	// Horizon, when positive, makes each compiled artifact valid from the compile
	// instant until instant+Horizon, clipped to Window.
	Horizon time.Duration
	// Unavailable definitions compile without an invocation handle.
	Unavailable bool
	// Fail makes every compile of the definition return an error.
	Fail bool
}
