// Package app implements the application layer for fnrepo.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"go.trai.ch/fnrepo/internal/adapters/catalog"
	"go.trai.ch/fnrepo/internal/adapters/pool"
	"go.trai.ch/fnrepo/internal/adapters/telemetry"
	"go.trai.ch/fnrepo/internal/adapters/watcher"
	"go.trai.ch/fnrepo/internal/build"
	"go.trai.ch/fnrepo/internal/core/domain"
	"go.trai.ch/fnrepo/internal/core/ports"
	"go.trai.ch/fnrepo/internal/engine/compiler"
	"go.trai.ch/fnrepo/internal/engine/lazy"
	"go.trai.ch/fnrepo/internal/engine/repocache"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	logger       ports.Logger
	newWatcher   WatcherFactory
	out          io.Writer
	errOut       io.Writer
}

// WatcherFactory creates the watcher used by Watch.
type WatcherFactory func(log ports.Logger) (ports.ConfigWatcher, error)

// New creates a new App instance.
func New(loader ports.ConfigLoader, log ports.Logger) *App {
	return &App{
		configLoader: loader,
		logger:       log,
		newWatcher:   newFileWatcher,
		out:          os.Stdout,
		errOut:       os.Stderr,
	}
}

func newFileWatcher(log ports.Logger) (ports.ConfigWatcher, error) {
	return watcher.New(watcher.DefaultWindow, log)
}

// WithOutput sets where result tables are written.
func (a *App) WithOutput(w io.Writer) *App {
	a.out = w
	return a
}

// WithWatcherFactory replaces how Watch creates its configuration watcher.
func (a *App) WithWatcherFactory(f WatcherFactory) *App {
	a.newWatcher = f
	return a
}

// WithErrOutput sets where telemetry exporters write.
func (a *App) WithErrOutput(w io.Writer) *App {
	a.errOut = w
	return a
}

// SetJSONLogging switches the logger to JSON output when it supports it.
func (a *App) SetJSONLogging(enable bool) {
	if l, ok := a.logger.(interface{ SetJSON(bool) }); ok {
		l.SetJSON(enable)
	}
}

// CommonOptions are shared by every command.
type CommonOptions struct {
	// ConfigPath overrides discovery of fnrepo.yaml.
	ConfigPath string
	// Telemetry selects the exporter name.
	Telemetry string
	// Context is passed to every compile.
	Context domain.CompilationContext
}

// ResolveOptions configuration for the Resolve method.
type ResolveOptions struct {
	CommonOptions
	// Repositories to resolve. Empty means all declared repositories.
	Repositories []string
	Instants     []time.Time
}

// Resolve compiles the selected repositories at every requested instant through
// one shared cache and prints each result.
func (a *App) Resolve(ctx context.Context, opts ResolveOptions) error {
	if len(opts.Instants) == 0 {
		return domain.ErrNoInstantsSpecified
	}

	cfg, cat, err := a.load(opts.ConfigPath)
	if err != nil {
		return err
	}

	repos, err := selectRepositories(cat, opts.Repositories)
	if err != nil {
		return err
	}

	providers, err := a.setupTelemetry(opts.Telemetry)
	if err != nil {
		return err
	}
	defer a.shutdownTelemetry(ctx, providers)

	return a.resolveRound(ctx, a.newCache(cfg, providers), repos, opts)
}

// Watch resolves like Resolve, then reloads the configuration file whenever it
// changes and resolves again through the same cache. The reload bumps the
// catalog revision, so cached results built from the old definitions are
// dropped. A configuration that fails to load keeps the previous catalog.
// Watch returns when ctx ends.
func (a *App) Watch(ctx context.Context, opts ResolveOptions) error {
	if len(opts.Instants) == 0 {
		return domain.ErrNoInstantsSpecified
	}

	cfg, cat, err := a.load(opts.ConfigPath)
	if err != nil {
		return err
	}
	if _, err := selectRepositories(cat, opts.Repositories); err != nil {
		return err
	}

	providers, err := a.setupTelemetry(opts.Telemetry)
	if err != nil {
		return err
	}
	defer a.shutdownTelemetry(ctx, providers)

	w, err := a.newWatcher(a.logger)
	if err != nil {
		return err
	}
	if err := w.Start(ctx, cfg.Path); err != nil {
		return err
	}
	defer func() {
		if err := w.Stop(); err != nil {
			a.logger.Warn(fmt.Sprintf("stopping watcher: %v", err))
		}
	}()

	cache := a.newCache(cfg, providers)
	round := func() error {
		repos, err := selectRepositories(cat, opts.Repositories)
		if err != nil {
			return err
		}
		return a.resolveRound(ctx, cache, repos, opts)
	}
	if err := round(); err != nil {
		return err
	}

	for path := range w.Changes() {
		next, err := a.configLoader.LoadFile(path)
		if err != nil {
			a.logger.Warn(fmt.Sprintf("keeping previous definitions: %v", err))
			continue
		}
		if err := cat.Sync(next); err != nil {
			a.logger.Warn(fmt.Sprintf("keeping previous definitions: %v", err))
			continue
		}
		a.logger.Info(fmt.Sprintf("reloaded %s at revision %d", path, cat.Revision()))

		_, _ = fmt.Fprintln(a.out)
		if err := round(); err != nil {
			if ctx.Err() != nil {
				break
			}
			a.logger.Error(err)
		}
	}
	return nil
}

func selectRepositories(cat *catalog.Catalog, names []string) ([]*catalog.Repository, error) {
	if len(names) == 0 {
		names = cat.Names()
	}
	repos := make([]*catalog.Repository, 0, len(names))
	for _, name := range names {
		repo, err := cat.Repository(name)
		if err != nil {
			return nil, err
		}
		repos = append(repos, repo)
	}
	return repos, nil
}

func (a *App) resolveRound(ctx context.Context, cache *repocache.Cache, repos []*catalog.Repository, opts ResolveOptions) error {
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "REPOSITORY\tINSTANT\tDEFINITION\tINVOCABLE\tWINDOW")
	var summaries []string
	for _, repo := range repos {
		for _, at := range opts.Instants {
			result, err := cache.Resolve(ctx, repo, opts.Context, at)
			if err != nil {
				_ = tw.Flush()
				return zerr.With(errors.Join(domain.ErrResolveFailed, err), "instant", at.Format(time.RFC3339))
			}
			writeResult(tw, repo.Identity().String(), result)
			summaries = append(summaries, summarize(repo.Identity().String(), result))
		}
	}
	if err := tw.Flush(); err != nil {
		return zerr.Wrap(err, "failed to write results")
	}

	_, _ = fmt.Fprintln(a.out)
	for _, s := range summaries {
		_, _ = fmt.Fprintln(a.out, s)
	}
	_, _ = fmt.Fprintln(a.out, formatStats(cache.Stats()))
	return nil
}

// LookupOptions configuration for the Lookup method.
type LookupOptions struct {
	CommonOptions
	// Repository to look in. It may be empty when exactly one is declared.
	Repository string
	At         time.Time
	IDs        []string
}

// Lookup compiles only the requested definitions of one repository at one instant.
func (a *App) Lookup(ctx context.Context, opts LookupOptions) error {
	if opts.At.IsZero() {
		return domain.ErrNoInstantsSpecified
	}

	_, cat, err := a.load(opts.ConfigPath)
	if err != nil {
		return err
	}

	name := opts.Repository
	if name == "" {
		names := cat.Names()
		if len(names) != 1 {
			return zerr.With(
				zerr.Wrap(domain.ErrUnknownRepository, "a repository must be named when several are declared"),
				"declared", len(names),
			)
		}
		name = names[0]
	}
	repo, err := cat.Repository(name)
	if err != nil {
		return err
	}

	providers, err := a.setupTelemetry(opts.Telemetry)
	if err != nil {
		return err
	}
	defer a.shutdownTelemetry(ctx, providers)

	lr := lazy.New(repo, opts.Context, opts.At, a.logger, providers.Metrics)

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "DEFINITION\tSTATUS\tINVOCABLE\tWINDOW")
	for _, id := range opts.IDs {
		artifact, ok := lr.Lookup(ctx, id)
		if !ok {
			_, _ = fmt.Fprintf(tw, "%s\tmissing\t-\t-\n", id)
			continue
		}
		_, _ = fmt.Fprintf(tw, "%s\tcompiled\t%s\t%s\n", id, yesNo(artifact.Invocable()), artifact.Window)
	}
	if err := tw.Flush(); err != nil {
		return zerr.Wrap(err, "failed to write results")
	}

	if err := ctx.Err(); err != nil {
		return zerr.Wrap(errors.Join(domain.ErrCompilationInterrupted, err), "lookup abandoned")
	}

	compiled := lr.Compiled()
	_, _ = fmt.Fprintf(a.out, "\ncompiled %d of %d requested definitions in %s at %s\n",
		compiled.Len(), len(opts.IDs), name, opts.At.UTC().Format(time.RFC3339))
	return nil
}

func (a *App) load(path string) (*domain.Config, *catalog.Catalog, error) {
	var (
		cfg *domain.Config
		err error
	)
	if path != "" {
		cfg, err = a.configLoader.LoadFile(path)
	} else {
		cfg, err = a.configLoader.Load(".")
	}
	if err != nil {
		return nil, nil, zerr.Wrap(err, "failed to load configuration")
	}
	if cfg.Log.JSON {
		a.SetJSONLogging(true)
	}

	cat, err := catalog.FromConfig(cfg)
	if err != nil {
		return nil, nil, zerr.Wrap(err, "failed to build catalog")
	}
	return cfg, cat, nil
}

func (a *App) setupTelemetry(name string) (*telemetry.Providers, error) {
	exporter, err := telemetry.ParseExporter(name)
	if err != nil {
		return nil, err
	}
	return telemetry.Setup(telemetry.Settings{
		Exporter: exporter,
		Writer:   a.errOut,
		Logger:   a.logger,
		Version:  build.Version,
	})
}

func (a *App) shutdownTelemetry(ctx context.Context, providers *telemetry.Providers) {
	if err := providers.Shutdown(context.WithoutCancel(ctx)); err != nil {
		a.logger.Warn(fmt.Sprintf("telemetry shutdown: %v", err))
	}
}

func (a *App) newCache(cfg *domain.Config, providers *telemetry.Providers) *repocache.Cache {
	workers := pool.New(cfg.Cache.Parallelism)
	comp := compiler.New(workers, a.logger, providers.Tracer, providers.Metrics)

	opts := []repocache.Option{repocache.WithCacheSize(cfg.Cache.Size)}
	if cfg.Cache.SingleFlight {
		opts = append(opts, repocache.WithSingleFlight())
	}
	return repocache.NewCache(comp, a.logger, providers.Tracer, providers.Metrics, opts...)
}

func writeResult(w io.Writer, repo string, result *domain.CompilationResult) {
	at := result.Instant().UTC().Format(time.RFC3339)
	ids := result.IDs()
	if len(ids) == 0 {
		_, _ = fmt.Fprintf(w, "%s\t%s\t-\t-\t-\n", repo, at)
		return
	}
	for _, id := range ids {
		artifact, _ := result.Lookup(id)
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", repo, at, id, yesNo(artifact.Invocable()), artifact.Window)
	}
}

func summarize(repo string, result *domain.CompilationResult) string {
	earliest, latest := "-inf", "+inf"
	if t, ok := result.EarliestInvocationTime(); ok {
		earliest = t.UTC().Format(time.RFC3339)
	}
	if t, ok := result.LatestInvocationTime(); ok {
		latest = t.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("%s@%s: %d artifacts, valid [%s, %s]",
		repo, result.Instant().UTC().Format(time.RFC3339), result.Len(), earliest, latest)
}

func formatStats(s domain.Stats) string {
	return fmt.Sprintf(
		"cache: %d/%d entries, %d hits, %d misses, %d salvaged, %d compiled, %d failed, %d evicted, %d invalidations",
		s.Entries, s.Size, s.Hits, s.Misses, s.Salvaged, s.Compiled, s.Failures, s.Evictions, s.Invalidations,
	)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
