package protocol

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	apperrors "github.com/argus-ai/argus/internal/errors"
)

func chainDef(failAt string) *Definition {
	handler := func(id string) HandlerFunc {
		return func(ctx context.Context, sc *StepContext) (any, error) {
			if id == failAt {
				return nil, errors.New("boom")
			}
			return "result-" + id, nil
		}
	}
	return &Definition{
		ID: "chain",
		Steps: []Step{
			{ID: "a", Handler: handler("a")},
			{ID: "b", DependsOn: []string{"a"}, Handler: handler("b")},
			{ID: "c", DependsOn: []string{"b"}, Handler: handler("c")},
		},
	}
}

func TestExecutorCompletesChain(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(chainDef("")))
	exec := NewExecutor(reg)

	id, err := exec.Start(context.Background(), "chain", false)
	require.NoError(t, err)

	view, err := exec.Status(id)
	require.NoError(t, err)
	assert.Equal(t, string(StatusCompleted), view.Status)
	require.Len(t, view.StepResults, 3)
	assert.Equal(t, "result-a", view.StepResults[0].Result)
	assert.Equal(t, "c", view.StepResults[2].StepID)
	require.NotNil(t, view.CompletedAt)
}

func TestExecutorStopsAtFailingStep(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(chainDef("b")))
	exec := NewExecutor(reg)

	id, err := exec.Start(context.Background(), "chain", false)
	require.NoError(t, err)

	view, err := exec.Status(id)
	require.NoError(t, err)
	assert.Equal(t, string(StatusFailed), view.Status)
	assert.Equal(t, 1, view.CurrentStep, "failure recorded at b's index")
	require.Len(t, view.StepResults, 1, "only a's result accumulated")
	assert.Equal(t, "a", view.StepResults[0].StepID)
	assert.Contains(t, view.LastError, "step b")
	assert.Contains(t, view.LastError, "boom")
}

func TestExecutorUnknownProtocol(t *testing.T) {
	exec := NewExecutor(NewRegistry())

	_, err := exec.Start(context.Background(), "ghost", false)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnknownProtocol, apperrors.CodeOf(err))
}

func TestExecutorDependencyNotSatisfied(t *testing.T) {
	// The registry rejects forward references, so exercise the runtime
	// guard directly with a hand-built definition.
	def := &Definition{
		ID: "broken",
		Steps: []Step{
			{ID: "a", DependsOn: []string{"never"}, Handler: noopHandler},
		},
	}

	exec := NewExecutor(NewRegistry())
	record := &Execution{
		ID:         "manual",
		ProtocolID: def.ID,
		Status:     StatusPending,
		StartedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	exec.mu.Lock()
	exec.executions[record.ID] = record
	exec.mu.Unlock()

	exec.run(context.Background(), def, record.ID)

	view, err := exec.Status(record.ID)
	require.NoError(t, err)
	assert.Equal(t, string(StatusFailed), view.Status)
	assert.Contains(t, view.LastError, "DEPENDENCY_NOT_SATISFIED")
	assert.Empty(t, view.StepResults)
}

func TestExecutorStepTimeout(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&Definition{
		ID: "slow",
		Steps: []Step{
			{
				ID:      "stall",
				Timeout: 30 * time.Millisecond,
				Handler: func(ctx context.Context, sc *StepContext) (any, error) {
					select {
					case <-ctx.Done():
						return nil, ctx.Err()
					case <-time.After(2 * time.Second):
						return "late", nil
					}
				},
			},
		},
	}))
	exec := NewExecutor(reg)

	id, err := exec.Start(context.Background(), "slow", false)
	require.NoError(t, err)

	view, err := exec.Status(id)
	require.NoError(t, err)
	assert.Equal(t, string(StatusFailed), view.Status)
	assert.Contains(t, view.LastError, "timed out")
}

func TestExecutorBackgroundCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	started := make(chan struct{})
	reg := NewRegistry()
	require.NoError(t, reg.Register(&Definition{
		ID: "longrun",
		Steps: []Step{
			{
				ID:      "wait",
				Timeout: 10 * time.Second,
				Handler: func(ctx context.Context, sc *StepContext) (any, error) {
					close(started)
					<-ctx.Done()
					return nil, ctx.Err()
				},
			},
		},
	}))
	exec := NewExecutor(reg)

	id, err := exec.Start(context.Background(), "longrun", true)
	require.NoError(t, err)

	<-started
	require.NoError(t, exec.Cancel(id))
	exec.Wait()

	view, err := exec.Status(id)
	require.NoError(t, err)
	assert.Equal(t, string(StatusCancelled), view.Status)
	require.NotNil(t, view.CompletedAt)

	// A terminal execution cannot be cancelled again.
	err = exec.Cancel(id)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeExecutionTerminal, apperrors.CodeOf(err))
}

func TestExecutorPauseResume(t *testing.T) {
	defer goleak.VerifyNone(t)

	firstDone := make(chan struct{})
	resumeGate := make(chan struct{})
	reg := NewRegistry()
	require.NoError(t, reg.Register(&Definition{
		ID: "pausable",
		Steps: []Step{
			{
				ID: "first",
				Handler: func(ctx context.Context, sc *StepContext) (any, error) {
					close(firstDone)
					<-resumeGate
					return "first", nil
				},
			},
			{
				ID:        "second",
				DependsOn: []string{"first"},
				Handler:   noopHandler,
			},
		},
	}))
	exec := NewExecutor(reg)

	id, err := exec.Start(context.Background(), "pausable", true)
	require.NoError(t, err)

	<-firstDone
	require.NoError(t, exec.Pause(id))
	close(resumeGate)

	// Paused between steps: second must not run yet.
	time.Sleep(150 * time.Millisecond)
	view, err := exec.Status(id)
	require.NoError(t, err)
	assert.Equal(t, string(StatusPaused), view.Status)
	assert.Len(t, view.StepResults, 1)

	require.NoError(t, exec.Resume(id))
	exec.Wait()

	view, err = exec.Status(id)
	require.NoError(t, err)
	assert.Equal(t, string(StatusCompleted), view.Status)
	assert.Len(t, view.StepResults, 2)
}

func TestExecutorStatusUnknownExecution(t *testing.T) {
	exec := NewExecutor(NewRegistry())

	_, err := exec.Status("missing")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeExecutionNotFound, apperrors.CodeOf(err))
}

func TestExecutorStepPanicBecomesFailure(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&Definition{
		ID: "panics",
		Steps: []Step{
			{
				ID: "explode",
				Handler: func(ctx context.Context, sc *StepContext) (any, error) {
					panic("kaboom")
				},
			},
		},
	}))
	exec := NewExecutor(reg)

	id, err := exec.Start(context.Background(), "panics", false)
	require.NoError(t, err)

	view, err := exec.Status(id)
	require.NoError(t, err)
	assert.Equal(t, string(StatusFailed), view.Status)
	assert.Contains(t, view.LastError, "kaboom")
}
