// Package catalog provides named definition repositories that share one revision counter.
package catalog

import (
	"maps"
	"slices"
	"sync"

	"go.trai.ch/fnrepo/internal/core/domain"
	"go.trai.ch/fnrepo/internal/core/ports"
	"go.trai.ch/zerr"
)

// Catalog holds every repository. Any change to any repository bumps the
// shared revision, which invalidates caches built over all of them.
type Catalog struct {
	mu       sync.RWMutex
	revision int64
	repos    map[string]*Repository
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{repos: make(map[string]*Repository)}
}

// FromConfig builds a catalog holding the repositories declared in cfg.
func FromConfig(cfg *domain.Config) (*Catalog, error) {
	c := New()
	if err := c.Sync(cfg); err != nil {
		return nil, err
	}
	return c, nil
}

// Sync replaces the catalog contents with the repositories declared in cfg
// under a single revision bump. Repositories no longer declared are emptied
// rather than removed so handles to them stay usable. On error nothing changes.
func (c *Catalog) Sync(cfg *domain.Config) error {
	next := make(map[string][]ports.FunctionDefinition, len(cfg.Repositories))
	for _, name := range slices.Sorted(maps.Keys(cfg.Repositories)) {
		specs := cfg.Repositories[name]
		defs := make([]ports.FunctionDefinition, 0, len(specs))
		for _, spec := range specs {
			def, err := NewStaticDefinition(spec)
			if err != nil {
				return zerr.With(err, "repository", name)
			}
			defs = append(defs, def)
		}
		if err := validate(name, defs); err != nil {
			return err
		}
		next[name] = defs
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for name, repo := range c.repos {
		if _, ok := next[name]; !ok {
			repo.defs = nil
		}
	}
	for name, defs := range next {
		repo, ok := c.repos[name]
		if !ok {
			repo = &Repository{catalog: c, id: domain.NewRegistryID(name)}
			c.repos[name] = repo
		}
		repo.defs = defs
	}
	c.revision++
	return nil
}

// Repository returns the named repository.
func (c *Catalog) Repository(name string) (*Repository, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	repo, ok := c.repos[name]
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownRepository, "cannot open repository"), "repository", name)
	}
	return repo, nil
}

// Put adds definitions to the named repository, creating it if needed. A
// definition whose id already exists replaces it.
func (c *Catalog) Put(name string, defs ...ports.FunctionDefinition) error {
	if err := validate(name, defs); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	repo, ok := c.repos[name]
	if !ok {
		repo = &Repository{catalog: c, id: domain.NewRegistryID(name)}
		c.repos[name] = repo
	}
	for _, def := range defs {
		if i := slices.IndexFunc(repo.defs, func(d ports.FunctionDefinition) bool { return d.ID() == def.ID() }); i >= 0 {
			repo.defs[i] = def
			continue
		}
		repo.defs = append(repo.defs, def)
	}
	c.revision++
	return nil
}

// Remove deletes a definition and reports whether it existed.
func (c *Catalog) Remove(name, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	repo, ok := c.repos[name]
	if !ok {
		return false
	}
	i := slices.IndexFunc(repo.defs, func(d ports.FunctionDefinition) bool { return d.ID() == id })
	if i < 0 {
		return false
	}
	repo.defs = slices.Delete(repo.defs, i, i+1)
	c.revision++
	return true
}

// Revision returns the current catalog revision.
func (c *Catalog) Revision() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.revision
}

// Names returns the repository names, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.repos))
}

func validate(name string, defs []ports.FunctionDefinition) error {
	seen := make(map[string]bool, len(defs))
	for _, def := range defs {
		id := def.ID()
		if id == "" {
			return zerr.With(zerr.Wrap(domain.ErrMissingDefinitionID, "cannot add definition"), "repository", name)
		}
		if seen[id] {
			return zerr.With(zerr.With(zerr.Wrap(domain.ErrDuplicateDefinition, "cannot add definition"), "repository", name), "definition", id)
		}
		seen[id] = true
	}
	return nil
}

// Repository is one named set of definitions inside a Catalog.
type Repository struct {
	catalog *Catalog
	id      domain.RegistryID
	defs    []ports.FunctionDefinition
}

// Identity returns the registry identity of the repository.
func (r *Repository) Identity() domain.RegistryID {
	return r.id
}

// AllDefinitions returns a copy of the current definitions.
func (r *Repository) AllDefinitions() []ports.FunctionDefinition {
	r.catalog.mu.RLock()
	defer r.catalog.mu.RUnlock()
	return slices.Clone(r.defs)
}

// RevisionID returns the catalog-wide revision.
func (r *Repository) RevisionID() int64 {
	return r.catalog.Revision()
}
