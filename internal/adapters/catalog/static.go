package catalog

import (
	"context"
	"time"

	"go.trai.ch/fnrepo/internal/core/domain"
	"go.trai.ch/zerr"
)

// Invocation is the handle carried by artifacts of static definitions.
type Invocation struct {
	DefinitionID string
	CompiledAt   time.Time
}

// String renders the handle as id@instant.
func (i Invocation) String() string {
	return i.DefinitionID + "@" + i.CompiledAt.UTC().Format(time.RFC3339)
}

// StaticDefinition is a function definition declared in configuration.
type StaticDefinition struct {
	spec domain.DefinitionSpec
}

// NewStaticDefinition validates spec and wraps it as a definition.
func NewStaticDefinition(spec domain.DefinitionSpec) (*StaticDefinition, error) {
	if spec.ID == "" {
		return nil, zerr.With(zerr.Wrap(domain.ErrMissingDefinitionID, "cannot declare definition"), "name", spec.Name)
	}
	if _, err := domain.NewValidityWindow(spec.Window.Earliest, spec.Window.Latest); err != nil {
		return nil, zerr.With(err, "definition", spec.ID)
	}
	return &StaticDefinition{spec: spec}, nil
}

// ID returns the definition identifier.
func (d *StaticDefinition) ID() string {
	return d.spec.ID
}

// ShortName returns the declared name, or the id when none is set.
func (d *StaticDefinition) ShortName() string {
	if d.spec.Name != "" {
		return d.spec.Name
	}
	return d.spec.ID
}

// Compile builds the artifact for at.
//
// The artifact window is the declared window, narrowed to [at, at+horizon] when a
// horizon is set. Unavailable definitions compile to an artifact without a handle.
func (d *StaticDefinition) Compile(
	ctx context.Context,
	_ domain.CompilationContext,
	at time.Time,
) (domain.CompiledArtifact, error) {
	if err := ctx.Err(); err != nil {
		return domain.CompiledArtifact{}, err
	}

	if !d.spec.Window.Covers(at) {
		err := zerr.With(zerr.Wrap(domain.ErrDefinitionNotValidAt, "cannot compile "+d.spec.ID), "window", d.spec.Window.String())
		return domain.CompiledArtifact{}, zerr.With(err, "instant", at.UTC().Format(time.RFC3339))
	}
	if d.spec.Fail {
		return domain.CompiledArtifact{}, zerr.With(zerr.Wrap(domain.ErrDefinitionRefused, "cannot compile "+d.spec.ID), "definition", d.spec.ID)
	}

	window := d.spec.Window
	if d.spec.Horizon > 0 {
		window = window.Intersect(domain.ValidityWindow{Earliest: at, Latest: at.Add(d.spec.Horizon)})
	}

	artifact := domain.CompiledArtifact{DefinitionID: d.spec.ID, Window: window}
	if !d.spec.Unavailable {
		artifact.Invoker = Invocation{DefinitionID: d.spec.ID, CompiledAt: at}
	}
	return artifact, nil
}
