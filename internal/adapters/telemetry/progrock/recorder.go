// Package progrock records spans as vertices on a progrock tape.
package progrock

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.trai.ch/fnrepo/internal/core/ports"
)

var _ ports.Tracer = (*Recorder)(nil)

// Recorder implements ports.Tracer using the progrock library.
type Recorder struct {
	w   progrock.Writer
	rec *progrock.Recorder
	seq atomic.Uint64
}

// New creates a new Recorder with a default tape.
func New() *Recorder {
	return NewRecorder(progrock.NewTape())
}

// NewRecorder creates a new Recorder with the given writer.
func NewRecorder(w progrock.Writer) *Recorder {
	return &Recorder{
		w:   w,
		rec: progrock.NewRecorder(w),
	}
}

// Start records a new vertex. Spans with the same name get distinct vertices.
func (r *Recorder) Start(ctx context.Context, name string, opts ...ports.SpanOption) (context.Context, ports.Span) {
	cfg := &ports.SpanConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	v := &Vertex{vertex: r.rec.Vertex(r.digest(name), name)}
	for k, val := range cfg.Attributes {
		v.SetAttribute(k, val)
	}
	return ctx, v
}

// EmitPlan records the planned definitions as a completed vertex.
func (r *Recorder) EmitPlan(_ context.Context, definitionIDs []string) {
	v := r.rec.Vertex(r.digest("plan"), fmt.Sprintf("plan: %d definitions", len(definitionIDs)))
	_, _ = fmt.Fprintln(v.Stdout(), strings.Join(definitionIDs, "\n"))
	v.Done(nil)
}

// Close flushes and closes the recording session.
func (r *Recorder) Close() error {
	if c, ok := r.w.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

func (r *Recorder) digest(name string) digest.Digest {
	return digest.FromString(fmt.Sprintf("%s#%d", name, r.seq.Add(1)))
}
