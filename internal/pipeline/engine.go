package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vk/mediagrid/internal/artifact"
	"github.com/vk/mediagrid/internal/bounded"
	"github.com/vk/mediagrid/internal/ctxlog"
)

// Generator produces a new artifact from a named generator.
type Generator interface {
	Generate(ctx context.Context, name string, params map[string]any) (*artifact.Artifact, error)
}

// Transformer applies a named operation to an artifact.
type Transformer interface {
	Transform(ctx context.Context, in *artifact.Artifact, op string, params map[string]any) (*artifact.Artifact, error)
}

// Saver writes an artifact to a destination. An empty provider lets the
// implementation route by destination.
type Saver interface {
	Save(ctx context.Context, in *artifact.Artifact, destination, provider string) (*artifact.SaveResult, error)
}

// Collaborators is everything the engine calls out to.
type Collaborators interface {
	Generator
	Transformer
	Saver
}

// Result records the outcome of one executed step.
type Result struct {
	// Index is the step's position in Pipeline.Steps.
	Index int
	Kind  StepKind
	Label string
	// Out is the variable the value was bound to; empty for a save without
	// an output name.
	Out      string
	Value    artifact.Value
	Duration time.Duration
}

// Engine executes pipelines against a set of collaborators. It holds no
// per-run state, so one Engine can run many pipelines concurrently.
type Engine struct {
	collab   Collaborators
	observer Observer
	newRunID func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver attaches an observer that receives run events.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// New creates an Engine that dispatches steps to c.
func New(c Collaborators, opts ...Option) *Engine {
	e := &Engine{
		collab:   c,
		observer: nopObserver{},
		newRunID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Plan builds the dependency graph of p and returns its waves without
// executing anything.
func (e *Engine) Plan(p *Pipeline) ([]Wave, error) {
	return ComputeWaves(BuildGraph(p.Steps))
}

// Run executes p and returns the result log in wave execution order; steps of
// the same wave appear in declaration order.
//
// Scheduling errors are returned before any collaborator is called. If a step
// fails, no further wave is started and the results of all fully completed
// waves are returned alongside a *StepError.
func (e *Engine) Run(ctx context.Context, p *Pipeline) ([]Result, error) {
	runID := e.newRunID()
	ctx, logger := ctxlog.With(ctx, "run_id", runID)

	waves, err := e.Plan(p)
	if err != nil {
		logger.Error("Pipeline rejected before execution.", "error", err)
		return nil, err
	}

	started := time.Now()
	logger.Info("Pipeline run starting.", "steps", len(p.Steps), "waves", len(waves), "concurrency", p.Concurrency)
	e.emit(ctx, Event{Type: EventRunStarted, RunID: runID, WaveCount: len(waves), StepCount: len(p.Steps)})

	vars := NewVarTable()
	results := make([]Result, 0, len(p.Steps))

	for i, wave := range waves {
		if err := ctx.Err(); err != nil {
			return e.finish(ctx, runID, started, results, err)
		}

		waveCtx, waveLogger := ctxlog.With(ctx, "wave", i)
		waveLogger.Debug("Starting wave.", "size", len(wave))
		e.emit(ctx, Event{Type: EventWaveStarted, RunID: runID, Wave: i, WaveCount: len(waves), StepCount: len(wave)})

		tasks := make([]bounded.Task[Result], len(wave))
		for j, node := range wave {
			tasks[j] = e.dispatchTask(runID, i, node, vars, p.StepTimeout)
		}

		waveResults, err := bounded.Run(waveCtx, tasks, p.Concurrency)
		if err != nil {
			return e.finish(ctx, runID, started, results, err)
		}

		// Bind only after the whole wave is done so that no step can observe a
		// sibling's output.
		for _, res := range waveResults {
			if res.Out == "" {
				continue
			}
			if err := vars.Set(res.Out, res.Value); err != nil {
				return e.finish(ctx, runID, started, results, err)
			}
		}
		results = append(results, waveResults...)
		waveLogger.Debug("Wave completed.", "bound_variables", vars.Len())
	}

	return e.finish(ctx, runID, started, results, nil)
}

func (e *Engine) finish(ctx context.Context, runID string, started time.Time, results []Result, err error) ([]Result, error) {
	logger := ctxlog.FromContext(ctx)
	elapsed := time.Since(started)
	e.emit(ctx, Event{Type: EventRunFinished, RunID: runID, StepCount: len(results), Duration: elapsed, Err: err})
	if err != nil {
		logger.Error("Pipeline run failed.", "completed_steps", len(results), "duration", elapsed, "error", err)
		return results, err
	}
	logger.Info("Pipeline run finished.", "completed_steps", len(results), "duration", elapsed)
	return results, nil
}

// dispatchTask returns the bounded task that executes node.
func (e *Engine) dispatchTask(runID string, wave int, node *StepNode, vars *VarTable, timeout time.Duration) bounded.Task[Result] {
	return func(ctx context.Context) (Result, error) {
		ctx, logger := ctxlog.With(ctx, "step", node.ID())
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		ev := Event{RunID: runID, Wave: wave, Step: node.Index, Kind: node.Step.Kind(), Label: node.Step.Label()}
		logger.Debug("Dispatching step.")
		start := time.Now()

		value, out, err := e.dispatch(ctx, node.Step, vars)
		ev.Duration = time.Since(start)
		if err != nil {
			stepErr := &StepError{Index: node.Index, Kind: node.Step.Kind(), Label: node.Step.Label(), Err: err}
			logger.Error("Step failed.", "duration", ev.Duration, "error", err)
			ev.Type, ev.Err = EventStepFailed, stepErr
			e.emit(ctx, ev)
			return Result{}, stepErr
		}

		logger.Debug("Step finished.", "duration", ev.Duration, "out", out, "value", value.Describe())
		ev.Type, ev.Out, ev.Summary = EventStepFinished, out, value.Describe()
		e.emit(ctx, ev)

		return Result{
			Index:    node.Index,
			Kind:     node.Step.Kind(),
			Label:    node.Step.Label(),
			Out:      out,
			Value:    value,
			Duration: ev.Duration,
		}, nil
	}
}

// dispatch resolves a step's input and calls the matching collaborator. It
// returns the produced value and the variable it should be bound to.
func (e *Engine) dispatch(ctx context.Context, step Step, vars *VarTable) (artifact.Value, string, error) {
	switch s := step.(type) {
	case GenerateStep:
		a, err := e.collab.Generate(ctx, s.Generator, s.Params)
		if err != nil {
			return nil, "", err
		}
		return a, s.Out, nil

	case TransformStep:
		in, err := vars.Artifact(s.In)
		if err != nil {
			return nil, "", err
		}
		a, err := e.collab.Transform(ctx, in, s.Op, s.Params)
		if err != nil {
			return nil, "", err
		}
		return a, s.Out, nil

	case SaveStep:
		in, err := vars.Artifact(s.In)
		if err != nil {
			return nil, "", err
		}
		res, err := e.collab.Save(ctx, in, s.Destination, s.Provider)
		if err != nil {
			return nil, "", err
		}
		return res, s.Out, nil

	default:
		return nil, "", fmt.Errorf("unknown step type %T", step)
	}
}

func (e *Engine) emit(ctx context.Context, ev Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	e.observer.OnEvent(ctx, ev)
}
