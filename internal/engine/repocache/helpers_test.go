package repocache_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.trai.ch/fnrepo/internal/core/domain"
	"go.trai.ch/fnrepo/internal/core/ports"
	"go.trai.ch/fnrepo/internal/core/ports/mocks"
	"go.trai.ch/fnrepo/internal/engine/compiler"
	"go.trai.ch/fnrepo/internal/engine/repocache"
	"go.uber.org/mock/gomock"
)

func ts(d int) time.Time {
	return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
}

// goPool starts one goroutine per task.
type goPool struct{}

func (goPool) Go(task func()) { go task() }

// countingDef counts Compile calls and builds artifacts through window.
type countingDef struct {
	id     string
	calls  atomic.Int64
	window func(at time.Time) domain.ValidityWindow
	err    error
	block  <-chan struct{}
}

func (d *countingDef) ID() string        { return d.id }
func (d *countingDef) ShortName() string { return d.id }
func (d *countingDef) Compile(
	_ context.Context,
	_ domain.CompilationContext,
	at time.Time,
) (domain.CompiledArtifact, error) {
	d.calls.Add(1)
	if d.block != nil {
		<-d.block
	}
	if d.err != nil {
		return domain.CompiledArtifact{}, d.err
	}
	a := domain.CompiledArtifact{DefinitionID: d.id, Invoker: d.id + "@" + at.Format(time.DateOnly)}
	if d.window != nil {
		a.Window = d.window(at)
	}
	return a, nil
}

func openDef(id string) *countingDef {
	return &countingDef{id: id}
}

func windowDef(id string, w domain.ValidityWindow) *countingDef {
	return &countingDef{id: id, window: func(time.Time) domain.ValidityWindow { return w }}
}

// revision is shared by every fakeRegistry created from it, like a catalog.
type revision struct {
	n atomic.Int64
}

func (r *revision) bump() { r.n.Add(1) }

type fakeRegistry struct {
	id  domain.RegistryID
	rev *revision

	mu   sync.Mutex
	defs []ports.FunctionDefinition
}

func newRegistry(name string, rev *revision, defs ...ports.FunctionDefinition) *fakeRegistry {
	return &fakeRegistry{id: domain.NewRegistryID(name), rev: rev, defs: defs}
}

func (r *fakeRegistry) Identity() domain.RegistryID { return r.id }
func (r *fakeRegistry) RevisionID() int64           { return r.rev.n.Load() }
func (r *fakeRegistry) AllDefinitions() []ports.FunctionDefinition {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.defs
}

type cacheTestMocks struct {
	logger  *mocks.MockLogger
	metrics *mocks.MockMetrics
}

func setupCacheTest(t *testing.T, opts ...repocache.Option) (*repocache.Cache, cacheTestMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m, tracer := newPermissiveMocks(ctrl)
	comp := compiler.New(goPool{}, m.logger, tracer, m.metrics)
	return repocache.NewCache(comp, m.logger, tracer, m.metrics, opts...), m
}

// newPermissiveMocks returns collaborators that accept any call.
func newPermissiveMocks(ctrl *gomock.Controller) (cacheTestMocks, *mocks.MockTracer) {
	m := cacheTestMocks{
		logger:  mocks.NewMockLogger(ctrl),
		metrics: mocks.NewMockMetrics(ctrl),
	}
	tracer := mocks.NewMockTracer(ctrl)

	mockSpan := mocks.NewMockSpan(ctrl)
	mockSpan.EXPECT().End().AnyTimes()
	mockSpan.EXPECT().RecordError(gomock.Any()).AnyTimes()
	mockSpan.EXPECT().SetAttribute(gomock.Any(), gomock.Any()).AnyTimes()

	tracer.EXPECT().Start(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
			return ctx, mockSpan
		},
	).AnyTimes()
	tracer.EXPECT().EmitPlan(gomock.Any(), gomock.Any()).AnyTimes()

	m.logger.EXPECT().Info(gomock.Any()).AnyTimes()
	m.logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	m.logger.EXPECT().Error(gomock.Any()).AnyTimes()

	m.metrics.EXPECT().RecordHit(gomock.Any(), gomock.Any()).AnyTimes()
	m.metrics.EXPECT().RecordMiss(gomock.Any(), gomock.Any()).AnyTimes()
	m.metrics.EXPECT().RecordSalvaged(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	m.metrics.EXPECT().RecordCompile(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	m.metrics.EXPECT().RecordEviction(gomock.Any(), gomock.Any()).AnyTimes()
	m.metrics.EXPECT().RecordInvalidation(gomock.Any()).AnyTimes()

	return m, tracer
}
