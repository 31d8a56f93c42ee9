package ports

import "go.trai.ch/fnrepo/internal/core/domain"

// ConfigLoader defines the interface for loading the project configuration.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load finds the configuration starting at cwd and walking up, then parses it.
	Load(cwd string) (*domain.Config, error)
	// LoadFile parses the configuration file at path.
	LoadFile(path string) (*domain.Config, error)
}
