package protocol

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/argus-ai/argus/internal/errors"
)

func noopHandler(ctx context.Context, sc *StepContext) (any, error) {
	return "ok", nil
}

func singleStepDef(id string, triggers ...string) *Definition {
	return &Definition{
		ID:       id,
		Name:     id,
		Triggers: triggers,
		Steps: []Step{
			{ID: "only", Name: "only", Handler: noopHandler},
		},
	}
}

func TestRegistryRegisterAndGet(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.Register(singleStepDef("alpha")))
	require.NoError(t, reg.Register(singleStepDef("beta")))

	def, err := reg.Get("alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", def.ID)

	_, err = reg.Get("gamma")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnknownProtocol, apperrors.CodeOf(err))
}

func TestRegistryListKeepsRegistrationOrder(t *testing.T) {
	reg := NewRegistry()
	for _, id := range []string{"zeta", "alpha", "mu"} {
		require.NoError(t, reg.Register(singleStepDef(id)))
	}

	var got []string
	for _, def := range reg.List() {
		got = append(got, def.ID)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mu"}, got)
}

func TestRegistryRejectsDuplicateID(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(singleStepDef("alpha")))

	err := reg.Register(singleStepDef("alpha"))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidProtocolDefinition, apperrors.CodeOf(err))
	assert.Len(t, reg.List(), 1)
}

func TestRegistryRejectsDependencyCycle(t *testing.T) {
	reg := NewRegistry()

	// a <-> b can only be expressed as a forward reference, which is
	// exactly what validation rejects.
	def := &Definition{
		ID: "cyclic",
		Steps: []Step{
			{ID: "a", DependsOn: []string{"b"}, Handler: noopHandler},
			{ID: "b", DependsOn: []string{"a"}, Handler: noopHandler},
		},
	}
	err := reg.Register(def)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidProtocolDefinition, apperrors.CodeOf(err))

	_, err = reg.Get("cyclic")
	assert.Error(t, err, "rejected definition must not be registered")
}

func TestRegistryRejectsDanglingDependency(t *testing.T) {
	reg := NewRegistry()

	def := &Definition{
		ID: "dangling",
		Steps: []Step{
			{ID: "a", Handler: noopHandler},
			{ID: "b", DependsOn: []string{"ghost"}, Handler: noopHandler},
		},
	}
	err := reg.Register(def)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidProtocolDefinition, apperrors.CodeOf(err))
}

func TestRegistryRejectsMissingHandlerAndEmptySteps(t *testing.T) {
	reg := NewRegistry()

	err := reg.Register(&Definition{ID: "empty"})
	require.Error(t, err)

	err = reg.Register(&Definition{
		ID:    "nohandler",
		Steps: []Step{{ID: "a"}},
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidProtocolDefinition, apperrors.CodeOf(err))
}

func TestRegistryFindByTrigger(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(singleStepDef("briefing", "morning briefing")))
	require.NoError(t, reg.Register(singleStepDef("checkup", "project checkup", "health")))

	found := reg.FindByTrigger("Run the MORNING BRIEFING please")
	require.Len(t, found, 1)
	assert.Equal(t, "briefing", found[0].ID)

	found = reg.FindByTrigger("how is the project health today")
	require.Len(t, found, 1)
	assert.Equal(t, "checkup", found[0].ID)

	assert.Empty(t, reg.FindByTrigger("unrelated text"))
}
