package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/fnrepo/internal/adapters/catalog"
	"go.trai.ch/fnrepo/internal/core/domain"
)

func day(d int) time.Time {
	return time.Date(2024, time.February, d, 0, 0, 0, 0, time.UTC)
}

func TestNewStaticDefinition_Validation(t *testing.T) {
	_, err := catalog.NewStaticDefinition(domain.DefinitionSpec{Name: "nameless"})
	require.ErrorIs(t, err, domain.ErrMissingDefinitionID)

	_, err = catalog.NewStaticDefinition(domain.DefinitionSpec{
		ID:     "inverted",
		Window: domain.ValidityWindow{Earliest: day(5), Latest: day(1)},
	})
	require.ErrorIs(t, err, domain.ErrInvalidValidityWindow)
}

func TestStaticDefinition_ShortName(t *testing.T) {
	named, err := catalog.NewStaticDefinition(domain.DefinitionSpec{ID: "fx.spot", Name: "FX spot"})
	require.NoError(t, err)
	assert.Equal(t, "FX spot", named.ShortName())

	bare, err := catalog.NewStaticDefinition(domain.DefinitionSpec{ID: "fx.spot"})
	require.NoError(t, err)
	assert.Equal(t, "fx.spot", bare.ShortName())
}

func TestStaticDefinition_Compile(t *testing.T) {
	def, err := catalog.NewStaticDefinition(domain.DefinitionSpec{
		ID:     "fx.spot",
		Window: domain.ValidityWindow{Earliest: day(1), Latest: day(20)},
	})
	require.NoError(t, err)

	a, err := def.Compile(context.Background(), nil, day(3))
	require.NoError(t, err)
	assert.Equal(t, "fx.spot", a.DefinitionID)
	assert.Equal(t, domain.ValidityWindow{Earliest: day(1), Latest: day(20)}, a.Window)
	require.True(t, a.Invocable())
	assert.Equal(t, "fx.spot@2024-02-03T00:00:00Z", a.Invoker.(catalog.Invocation).String())
}

func TestStaticDefinition_CompileOutsideWindow(t *testing.T) {
	def, err := catalog.NewStaticDefinition(domain.DefinitionSpec{
		ID:     "fx.spot",
		Window: domain.ValidityWindow{Latest: day(2)},
	})
	require.NoError(t, err)

	_, err = def.Compile(context.Background(), nil, day(3))
	require.ErrorIs(t, err, domain.ErrDefinitionNotValidAt)
}

func TestStaticDefinition_Horizon(t *testing.T) {
	def, err := catalog.NewStaticDefinition(domain.DefinitionSpec{
		ID:      "curve",
		Window:  domain.ValidityWindow{Latest: day(10)},
		Horizon: 72 * time.Hour,
	})
	require.NoError(t, err)

	a, err := def.Compile(context.Background(), nil, day(2))
	require.NoError(t, err)
	assert.Equal(t, domain.ValidityWindow{Earliest: day(2), Latest: day(5)}, a.Window)

	clipped, err := def.Compile(context.Background(), nil, day(9))
	require.NoError(t, err)
	assert.Equal(t, domain.ValidityWindow{Earliest: day(9), Latest: day(10)}, clipped.Window)
}

func TestStaticDefinition_UnavailableAndFail(t *testing.T) {
	unavailable, err := catalog.NewStaticDefinition(domain.DefinitionSpec{ID: "gpu.pricer", Unavailable: true})
	require.NoError(t, err)
	a, err := unavailable.Compile(context.Background(), nil, day(1))
	require.NoError(t, err)
	assert.False(t, a.Invocable())

	failing, err := catalog.NewStaticDefinition(domain.DefinitionSpec{ID: "broken", Fail: true})
	require.NoError(t, err)
	_, err = failing.Compile(context.Background(), nil, day(1))
	require.ErrorIs(t, err, domain.ErrDefinitionRefused)
}

func TestStaticDefinition_CancelledContext(t *testing.T) {
	def, err := catalog.NewStaticDefinition(domain.DefinitionSpec{ID: "a"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = def.Compile(ctx, nil, day(1))
	require.ErrorIs(t, err, context.Canceled)
}
