// Package config provides the configuration loader for fnrepo.
package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"go.trai.ch/fnrepo/internal/core/domain"
	"go.trai.ch/fnrepo/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// SupportedVersion is the configuration schema version this loader understands.
const SupportedVersion = "1"

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load finds fnrepo.yaml in cwd or the nearest parent directory and parses it.
func (l *Loader) Load(cwd string) (*domain.Config, error) {
	path, err := findConfiguration(cwd)
	if err != nil {
		return nil, err
	}
	return l.LoadFile(path)
}

// LoadFile parses the configuration file at path.
func (l *Loader) LoadFile(path string) (*domain.Config, error) {
	var file Configfile
	if err := readAndUnmarshalYAML(path, &file); err != nil {
		return nil, err
	}

	if file.Version != "" && file.Version != SupportedVersion {
		l.Logger.Warn(fmt.Sprintf("%s declares version %q, expected %q", path, file.Version, SupportedVersion))
	}
	if len(file.Repositories) == 0 {
		l.Logger.Warn(fmt.Sprintf("no repositories declared in %s", path))
	}

	cfg, err := toDomain(&file)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	cfg.Path = path
	return cfg, nil
}

func findConfiguration(cwd string) (string, error) {
	currentDir := cwd
	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}

	return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "cannot load configuration"), "cwd", cwd)
}

func toDomain(file *Configfile) (*domain.Config, error) {
	if file.Cache.Size < 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidCacheSize, "invalid cache settings"), "size", file.Cache.Size)
	}

	cfg := &domain.Config{
		Cache: domain.CacheSettings{
			Size:         file.Cache.Size,
			Parallelism:  file.Cache.Parallelism,
			SingleFlight: file.Cache.SingleFlight,
		},
		Log:          domain.LogSettings{JSON: file.Log.JSON},
		Repositories: make(map[string][]domain.DefinitionSpec, len(file.Repositories)),
	}
	if cfg.Cache.Size == 0 {
		cfg.Cache.Size = domain.DefaultCacheSize
	}

	// Sorted so the first reported error is deterministic.
	for _, name := range slices.Sorted(maps.Keys(file.Repositories)) {
		specs, err := toSpecs(file.Repositories[name])
		if err != nil {
			return nil, zerr.With(err, "repository", name)
		}
		cfg.Repositories[name] = specs
	}
	return cfg, nil
}

func toSpecs(repo *RepositoryDTO) ([]domain.DefinitionSpec, error) {
	if repo == nil {
		return nil, nil
	}

	seen := make(map[string]bool, len(repo.Definitions))
	specs := make([]domain.DefinitionSpec, 0, len(repo.Definitions))
	for i, dto := range repo.Definitions {
		if dto.ID == "" {
			return nil, zerr.With(zerr.Wrap(domain.ErrMissingDefinitionID, "invalid definition"), "index", i)
		}
		if seen[dto.ID] {
			return nil, zerr.With(zerr.Wrap(domain.ErrDuplicateDefinition, "invalid definition"), "definition", dto.ID)
		}
		seen[dto.ID] = true

		window, err := domain.NewValidityWindow(deref(dto.Earliest), deref(dto.Latest))
		if err != nil {
			return nil, zerr.With(err, "definition", dto.ID)
		}

		specs = append(specs, domain.DefinitionSpec{
			ID:          dto.ID,
			Name:        dto.Name,
			Window:      window,
			Horizon:     dto.Horizon,
			Unavailable: dto.Unavailable,
			Fail:        dto.Fail,
		})
	}
	return specs, nil
}

func deref(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is validated by caller
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.With(errors.Join(domain.ErrConfigReadFailed, err), "path", configPath)
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.With(errors.Join(domain.ErrConfigParseFailed, parseErr), "path", configPath)
	}

	return nil
}
