package ports

import (
	"context"
	"iter"
)

// ConfigWatcher reports changes to a configuration file.
//
//go:generate go run go.uber.org/mock/mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks
type ConfigWatcher interface {
	// Start begins watching the file at path until ctx ends or Stop is called.
	Start(ctx context.Context, path string) error
	// Stop stops the watcher and releases all resources.
	Stop() error
	// Changes yields the path once per coalesced burst of changes.
	// It ends when the watcher stops.
	Changes() iter.Seq[string]
}
