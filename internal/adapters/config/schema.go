package config

import "time"

// Configfile represents the structure of the fnrepo.yaml configuration file.
type Configfile struct {
	Version      string                    `yaml:"version"`
	Cache        CacheDTO                  `yaml:"cache"`
	Log          LogDTO                    `yaml:"log"`
	Repositories map[string]*RepositoryDTO `yaml:"repositories"`
}

// CacheDTO configures the compilation cache.
type CacheDTO struct {
	Size         int  `yaml:"size"`
	Parallelism  int  `yaml:"parallelism"`
	SingleFlight bool `yaml:"singleFlight"`
}

// LogDTO configures logging.
type LogDTO struct {
	JSON bool `yaml:"json"`
}

// RepositoryDTO declares the definitions of one repository.
type RepositoryDTO struct {
	Definitions []DefinitionDTO `yaml:"definitions"`
}

// DefinitionDTO represents a function definition in the configuration.
type DefinitionDTO struct {
	ID          string        `yaml:"id"`
	Name        string        `yaml:"name"`
	Earliest    *time.Time    `yaml:"earliest"`
	Latest      *time.Time    `yaml:"latest"`
	Horizon     time.Duration `yaml:"horizon"`
	Unavailable bool          `yaml:"unavailable"`
	Fail        bool          `yaml:"fail"`
}
