package progrock_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vito/progrock"
	fnprogrock "go.trai.ch/fnrepo/internal/adapters/telemetry/progrock"
	"go.trai.ch/fnrepo/internal/core/ports"
)

type captureWriter struct {
	mu      sync.Mutex
	updates []*progrock.StatusUpdate
	closed  bool
}

func (w *captureWriter) WriteStatus(u *progrock.StatusUpdate) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.updates = append(w.updates, u)
	return nil
}

func (w *captureWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *captureWriter) vertexNames() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var names []string
	for _, u := range w.updates {
		for _, v := range u.GetVertexes() {
			names = append(names, v.GetName())
		}
	}
	return names
}

func TestNew(t *testing.T) {
	recorder := fnprogrock.New()
	assert.NotNil(t, recorder)
	assert.NoError(t, recorder.Close())
}

func TestRecorder_StartRecordsVertex(t *testing.T) {
	w := &captureWriter{}
	rec := fnprogrock.NewRecorder(w)

	_, span := rec.Start(context.Background(), "compile fx.spot", ports.WithAttribute("definition.id", "fx.spot"))
	span.SetAttribute("instant", "2024-01-01")
	span.End()

	assert.Contains(t, w.vertexNames(), "compile fx.spot")
	require.NoError(t, rec.Close())
	assert.True(t, w.closed)
}

func TestRecorder_FailedSpan(t *testing.T) {
	w := &captureWriter{}
	rec := fnprogrock.NewRecorder(w)

	_, span := rec.Start(context.Background(), "compile broken")
	span.RecordError(errors.New("boom"))
	span.End()

	var failed bool
	for _, u := range w.updates {
		for _, v := range u.GetVertexes() {
			if v.GetName() == "compile broken" && v.GetError() == "boom" {
				failed = true
			}
		}
	}
	assert.True(t, failed, "expected the vertex to carry the recorded error")
}

func TestRecorder_EmitPlan(t *testing.T) {
	w := &captureWriter{}
	rec := fnprogrock.NewRecorder(w)

	rec.EmitPlan(context.Background(), []string{"a", "b"})

	assert.Contains(t, w.vertexNames(), "plan: 2 definitions")
}
