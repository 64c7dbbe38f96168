package protocol

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/argus-ai/argus/internal/errors"
	"github.com/argus-ai/argus/pkg/models"
)

// defaultStepTimeout applies when a step declares none.
const defaultStepTimeout = 30 * time.Second

// defaultRetention is how long finished executions stay queryable in memory.
const defaultRetention = 24 * time.Hour

// Executor runs protocol definitions and owns every Execution record.
// It is the single writer to an execution's status and step fields while
// the run is in flight; callers only ever see snapshot copies.
type Executor struct {
	mu         sync.Mutex
	registry   *Registry
	executions map[string]*Execution
	logger     *zap.Logger
	archive    *Archive
	retention  time.Duration

	// wg tracks detached background runs so owners can drain on shutdown.
	wg sync.WaitGroup
}

// ExecutorOption configures the executor.
type ExecutorOption func(*Executor)

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) ExecutorOption {
	return func(e *Executor) { e.logger = logger }
}

// WithArchive persists terminal executions to the assistant database.
func WithArchive(archive *Archive) ExecutorOption {
	return func(e *Executor) { e.archive = archive }
}

// WithRetention sets how long finished executions are kept before purge.
func WithRetention(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		if d > 0 {
			e.retention = d
		}
	}
}

// NewExecutor creates an executor over the given registry.
func NewExecutor(registry *Registry, opts ...ExecutorOption) *Executor {
	e := &Executor{
		registry:   registry,
		executions: make(map[string]*Execution),
		logger:     zap.NewNop(),
		retention:  defaultRetention,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start begins a protocol run and returns its execution ID.
//
// background=false blocks the caller until the execution reaches a terminal
// state. background=true detaches the run onto its own goroutine and returns
// immediately; the returned ID can be polled via Status.
func (e *Executor) Start(ctx context.Context, protocolID string, background bool) (string, error) {
	def, err := e.registry.Get(protocolID)
	if err != nil {
		return "", err
	}

	e.purgeExpired()

	exec := &Execution{
		ID:         uuid.New().String(),
		ProtocolID: def.ID,
		Status:     StatusPending,
		StartedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	e.mu.Lock()
	e.executions[exec.ID] = exec
	e.mu.Unlock()

	if background {
		// Detached runs must not die with the caller's request context.
		runCtx, cancel := context.WithCancel(context.Background())
		e.setCancel(exec.ID, cancel)

		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			defer cancel()
			e.run(runCtx, def, exec.ID)
		}()
		return exec.ID, nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	e.setCancel(exec.ID, cancel)
	defer cancel()

	e.run(runCtx, def, exec.ID)
	return exec.ID, nil
}

// run drives one execution through the state machine.
func (e *Executor) run(ctx context.Context, def *Definition, execID string) {
	logger := e.logger.With(zap.String("protocol", def.ID), zap.String("execution", execID))

	if !e.transition(execID, StatusPending, StatusRunning) {
		return // cancelled before the first step
	}
	logger.Info("protocol started", zap.Int("steps", len(def.Steps)))

	for i, step := range def.Steps {
		if !e.awaitRunnable(ctx, execID) {
			logger.Info("protocol cancelled", zap.String("step", step.ID))
			return
		}

		e.setCurrentStep(execID, i)

		if missing := e.unmetDependencies(execID, step); missing != "" {
			err := apperrors.Newf(apperrors.CodeDependencyNotSatisfied, apperrors.CategoryPermanent,
				"step %q requires %s before it can run", step.ID, missing)
			e.fail(execID, step.ID, err)
			logger.Warn("dependency violation", zap.String("step", step.ID), zap.Error(err))
			return
		}

		result, err := e.runStep(ctx, execID, def, step)
		if err != nil {
			if ctx.Err() != nil && e.status(execID) == StatusCancelled {
				logger.Info("protocol cancelled mid-step", zap.String("step", step.ID))
				return
			}
			e.fail(execID, step.ID, err)
			logger.Warn("step failed", zap.String("step", step.ID), zap.Error(err))
			return
		}

		e.appendResult(execID, StepResult{
			StepID:      step.ID,
			Result:      result,
			Success:     true,
			CompletedAt: time.Now(),
		})
		logger.Debug("step completed", zap.String("step", step.ID))
	}

	e.complete(execID)
	logger.Info("protocol completed")
}

// runStep executes one handler with the step's timeout. A timed-out step is
// treated identically to a failed one.
func (e *Executor) runStep(ctx context.Context, execID string, def *Definition, step Step) (any, error) {
	timeout := step.Timeout
	if timeout <= 0 {
		timeout = defaultStepTimeout
	}

	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sc := &StepContext{
		ExecutionID: execID,
		ProtocolID:  def.ID,
		StepID:      step.ID,
		Results:     e.resultValues(execID),
		Retries:     step.Retries,
	}

	type outcome struct {
		result any
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: apperrors.Newf(apperrors.CodeToolExecutionFailed,
					apperrors.CategoryPermanent, "step %q panicked: %v", step.ID, r)}
			}
		}()
		result, err := step.Handler(stepCtx, sc)
		done <- outcome{result: result, err: err}
	}()

	select {
	case out := <-done:
		return out.result, out.err
	case <-stepCtx.Done():
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperrors.Newf(apperrors.CodeStepTimeout, apperrors.CategoryTemporary,
			"step %q timed out after %s", step.ID, timeout)
	}
}

// awaitRunnable blocks while the execution is paused. It returns false when
// the execution was cancelled or the context ended.
func (e *Executor) awaitRunnable(ctx context.Context, execID string) bool {
	for {
		if ctx.Err() != nil {
			return false
		}
		switch e.status(execID) {
		case StatusCancelled:
			return false
		case StatusPaused:
			select {
			case <-ctx.Done():
				return false
			case <-time.After(50 * time.Millisecond):
			}
		default:
			return true
		}
	}
}

// Cancel transitions a non-terminal execution to Cancelled and requests
// cooperative cancellation of any in-flight background task. Cancellation is
// best-effort: a running step is observed at its next suspension point, not
// forcibly killed.
func (e *Executor) Cancel(id string) error {
	e.mu.Lock()
	exec, ok := e.executions[id]
	if !ok {
		e.mu.Unlock()
		return apperrors.Newf(apperrors.CodeExecutionNotFound, apperrors.CategoryUser, "unknown execution %q", id)
	}
	if exec.Status.Terminal() {
		e.mu.Unlock()
		return apperrors.Newf(apperrors.CodeExecutionTerminal, apperrors.CategoryUser,
			"execution %q already %s", id, exec.Status)
	}

	exec.Status = StatusCancelled
	now := time.Now()
	exec.UpdatedAt = now
	exec.CompletedAt = &now
	cancel := exec.cancel
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	e.archiveTerminal(id)
	return nil
}

// Pause suspends a running execution before its next step.
func (e *Executor) Pause(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	exec, ok := e.executions[id]
	if !ok {
		return apperrors.Newf(apperrors.CodeExecutionNotFound, apperrors.CategoryUser, "unknown execution %q", id)
	}
	if exec.Status != StatusRunning {
		return apperrors.Newf(apperrors.CodeExecutionTerminal, apperrors.CategoryUser,
			"execution %q is %s, not running", id, exec.Status)
	}
	exec.Status = StatusPaused
	exec.paused = true
	exec.UpdatedAt = time.Now()
	return nil
}

// Resume returns a paused execution to Running.
func (e *Executor) Resume(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	exec, ok := e.executions[id]
	if !ok {
		return apperrors.Newf(apperrors.CodeExecutionNotFound, apperrors.CategoryUser, "unknown execution %q", id)
	}
	if exec.Status != StatusPaused {
		return apperrors.Newf(apperrors.CodeExecutionTerminal, apperrors.CategoryUser,
			"execution %q is %s, not paused", id, exec.Status)
	}
	exec.Status = StatusRunning
	exec.paused = false
	exec.UpdatedAt = time.Now()
	return nil
}

// Status returns a snapshot of one execution.
func (e *Executor) Status(id string) (*models.ProtocolStatusView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	exec, ok := e.executions[id]
	if !ok {
		return nil, apperrors.Newf(apperrors.CodeExecutionNotFound, apperrors.CategoryUser, "unknown execution %q", id)
	}
	return snapshot(exec), nil
}

// Executions returns snapshots of all retained executions.
func (e *Executor) Executions() []*models.ProtocolStatusView {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]*models.ProtocolStatusView, 0, len(e.executions))
	for _, exec := range e.executions {
		out = append(out, snapshot(exec))
	}
	return out
}

// Wait blocks until all detached background runs have finished.
func (e *Executor) Wait() {
	e.wg.Wait()
}

// ============================================================
// internal state transitions
// ============================================================

func (e *Executor) setCancel(id string, cancel context.CancelFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if exec, ok := e.executions[id]; ok {
		exec.cancel = cancel
	}
}

func (e *Executor) status(id string) Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	if exec, ok := e.executions[id]; ok {
		return exec.Status
	}
	return StatusCancelled
}

func (e *Executor) transition(id string, from, to Status) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	exec, ok := e.executions[id]
	if !ok || exec.Status != from {
		return false
	}
	exec.Status = to
	exec.UpdatedAt = time.Now()
	return true
}

func (e *Executor) setCurrentStep(id string, index int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if exec, ok := e.executions[id]; ok {
		exec.CurrentStep = index
		exec.UpdatedAt = time.Now()
	}
}

// unmetDependencies returns a description of missing prerequisites, or ""
// when the step may run.
func (e *Executor) unmetDependencies(id string, step Step) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	exec, ok := e.executions[id]
	if !ok {
		return "execution record"
	}

	completed := make(map[string]bool, len(exec.StepResults))
	for _, res := range exec.StepResults {
		completed[res.StepID] = true
	}

	var missing []string
	for _, dep := range step.DependsOn {
		if !completed[dep] {
			missing = append(missing, fmt.Sprintf("%q", dep))
		}
	}
	if len(missing) == 0 {
		return ""
	}
	return fmt.Sprintf("completed step(s) %v", missing)
}

func (e *Executor) resultValues(id string) map[string]any {
	e.mu.Lock()
	defer e.mu.Unlock()

	exec, ok := e.executions[id]
	if !ok {
		return nil
	}
	values := make(map[string]any, len(exec.StepResults))
	for _, res := range exec.StepResults {
		values[res.StepID] = res.Result
	}
	return values
}

func (e *Executor) appendResult(id string, res StepResult) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if exec, ok := e.executions[id]; ok {
		exec.StepResults = append(exec.StepResults, res)
		exec.UpdatedAt = time.Now()
	}
}

func (e *Executor) fail(id, stepID string, err error) {
	e.mu.Lock()
	exec, ok := e.executions[id]
	if !ok || exec.Status.Terminal() {
		e.mu.Unlock()
		return
	}
	exec.Status = StatusFailed
	exec.LastError = fmt.Sprintf("step %s: %v", stepID, err)
	now := time.Now()
	exec.UpdatedAt = now
	exec.CompletedAt = &now
	e.mu.Unlock()

	e.archiveTerminal(id)
}

func (e *Executor) complete(id string) {
	e.mu.Lock()
	exec, ok := e.executions[id]
	if !ok || exec.Status.Terminal() {
		e.mu.Unlock()
		return
	}
	exec.Status = StatusCompleted
	exec.CurrentStep = len(exec.StepResults)
	now := time.Now()
	exec.UpdatedAt = now
	exec.CompletedAt = &now
	e.mu.Unlock()

	e.archiveTerminal(id)
}

// archiveTerminal persists a finished execution. Archive failures are logged,
// never propagated: the in-memory record stays authoritative.
func (e *Executor) archiveTerminal(id string) {
	if e.archive == nil {
		return
	}
	view, err := e.Status(id)
	if err != nil {
		return
	}
	if err := e.archive.Save(context.Background(), view); err != nil {
		e.logger.Warn("archive execution", zap.String("execution", id), zap.Error(err))
	}
}

// purgeExpired drops terminal executions older than the retention window.
func (e *Executor) purgeExpired() {
	cutoff := time.Now().Add(-e.retention)

	e.mu.Lock()
	defer e.mu.Unlock()

	for id, exec := range e.executions {
		if exec.Status.Terminal() && exec.CompletedAt != nil && exec.CompletedAt.Before(cutoff) {
			delete(e.executions, id)
		}
	}
}

func snapshot(exec *Execution) *models.ProtocolStatusView {
	view := &models.ProtocolStatusView{
		ExecutionID: exec.ID,
		ProtocolID:  exec.ProtocolID,
		Status:      string(exec.Status),
		CurrentStep: exec.CurrentStep,
		StartedAt:   exec.StartedAt,
		UpdatedAt:   exec.UpdatedAt,
		LastError:   exec.LastError,
	}
	if exec.CompletedAt != nil {
		completed := *exec.CompletedAt
		view.CompletedAt = &completed
	}
	view.StepResults = make([]models.StepResultView, 0, len(exec.StepResults))
	for _, res := range exec.StepResults {
		view.StepResults = append(view.StepResults, models.StepResultView{
			StepID:      res.StepID,
			Result:      res.Result,
			Error:       res.Error,
			Success:     res.Success,
			CompletedAt: res.CompletedAt,
		})
	}
	return view
}
