package harness

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mackim-3768/Aegis-AI-DAS/internal/catalog"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/engine"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/payload"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/reconcile"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/scenario"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/state"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/testutil"
)

// Harness holds what every run shares. Each run still gets its own store
// and clock.
type Harness struct {
	presets *scenario.Set
	engine  engine.Inferencer
	logger  *zap.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithPresets sets the presets scenario steps resolve against.
func WithPresets(set *scenario.Set) Option {
	return func(h *Harness) {
		h.presets = set
	}
}

// WithEngine replaces the built-in rule engine.
func WithEngine(e engine.Inferencer) Option {
	return func(h *Harness) {
		h.engine = e
	}
}

// WithLogger sets the logger passed to each run's reconciler.
func WithLogger(l *zap.Logger) Option {
	return func(h *Harness) {
		h.logger = l
	}
}

// New creates a Harness. By default it uses the built-in presets and rule
// engine and discards logs.
func New(opts ...Option) *Harness {
	h := &Harness{
		presets: scenario.Default(),
		engine:  engine.New(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes script with a default Harness.
func Run(script *Script) (*Result, error) {
	return New().Run(script)
}

// Run executes script on a fresh store and checks its expectations.
//
// An error means the script could not be executed (for example an unknown
// scenario id). Failed expectations are reported in Result.Errors.
func (h *Harness) Run(script *Script) (*Result, error) {
	clock := testutil.NewSteppingClock(testutil.Epoch, 0)
	store := state.NewStore(state.New(clock.Now()))
	rec := reconcile.New(store,
		reconcile.WithEngine(h.engine),
		reconcile.WithClock(clock.Now),
		reconcile.WithPresets(h.presets),
		reconcile.WithLogger(h.logger.With(zap.String("script", script.Name))),
	)

	result := NewResult(script.Name)
	for i, step := range script.Steps {
		if err := h.apply(rec, step, result); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Kind(), err)
		}
	}

	result.Final = rec.Snapshot()
	for _, err := range Check(script.Expect, result.Final) {
		result.AddError(err.Error())
	}
	return result, nil
}

func (h *Harness) apply(rec *reconcile.Reconciler, step Step, result *Result) error {
	switch step.Kind() {
	case StepScenario:
		r, ok := rec.ApplyScenarioByID(step.Scenario)
		if !ok {
			return fmt.Errorf("unknown scenario %q", step.Scenario)
		}
		result.Inferences = append(result.Inferences, r)
	case StepContext:
		id, p, err := edit(step.Context)
		if err != nil {
			return err
		}
		rec.SetContextField(id, p)
	case StepAction:
		id, p, err := edit(step.Action)
		if err != nil {
			return err
		}
		rec.ApplyActionCall(id, p)
	case StepInfer:
		result.Inferences = append(result.Inferences, rec.RunInference())
	case StepDebug:
		rec.SetDebugMode(*step.Debug)
	case StepProcessor:
		p, err := state.ParseProcessor(step.Processor)
		if err != nil {
			return err
		}
		rec.SetProcessorMode(p)
	default:
		return fmt.Errorf("empty step")
	}
	return nil
}

func edit(e *ToolEdit) (catalog.ToolID, payload.Map, error) {
	id, ok := catalog.Resolve(e.Tool)
	if !ok {
		return 0, nil, fmt.Errorf("unknown tool %q", e.Tool)
	}
	p, err := payload.MapFromAny(e.Payload)
	if err != nil {
		return 0, nil, fmt.Errorf("payload: %w", err)
	}
	return id, p, nil
}

// RunAll executes scripts in parallel and returns their results in input
// order. The first execution error cancels the remaining runs.
func (h *Harness) RunAll(ctx context.Context, scripts []*Script) ([]*Result, error) {
	results := make([]*Result, len(scripts))
	g, ctx := errgroup.WithContext(ctx)
	for i, script := range scripts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := h.Run(script)
			if err != nil {
				return fmt.Errorf("%s: %w", script.Name, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
