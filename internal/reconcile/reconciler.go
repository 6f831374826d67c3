package reconcile

import (
	"time"

	"go.uber.org/zap"

	"github.com/mackim-3768/Aegis-AI-DAS/internal/catalog"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/engine"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/payload"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/scenario"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/state"
)

// Reconciler is the edit surface consumed by presentation code.
type Reconciler struct {
	store   *state.Store
	engine  engine.Inferencer
	presets *scenario.Set
	now     func() time.Time
	logger  *zap.Logger
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithEngine replaces the built-in rule engine.
func WithEngine(e engine.Inferencer) Option {
	return func(r *Reconciler) {
		r.engine = e
	}
}

// WithClock sets the wall clock used for tool and log timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) {
		r.now = now
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(r *Reconciler) {
		r.logger = l
	}
}

// WithPresets sets the presets ApplyScenarioByID resolves against.
// The default is the built-in set.
func WithPresets(set *scenario.Set) Option {
	return func(r *Reconciler) {
		r.presets = set
	}
}

// New creates a Reconciler over store.
func New(store *state.Store, opts ...Option) *Reconciler {
	r := &Reconciler{
		store:   store,
		engine:  engine.New(),
		presets: scenario.Default(),
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Snapshot returns the current state.
func (r *Reconciler) Snapshot() state.AppState {
	return r.store.Current()
}

// Store returns the underlying store.
func (r *Reconciler) Store() *state.Store {
	return r.store
}

// Presets returns the preset set used by ApplyScenarioByID.
func (r *Reconciler) Presets() *scenario.Set {
	return r.presets
}

// SetDebugMode sets the debug flag.
func (r *Reconciler) SetDebugMode(on bool) {
	r.store.Replace(SetDebug(on, r.now()))
	r.logger.Debug("debug mode set", zap.Bool("enabled", on))
}

// SetProcessorMode selects the processor.
func (r *Reconciler) SetProcessorMode(p state.Processor) {
	r.store.Replace(SetProcessor(p, r.now()))
	r.logger.Debug("processor set", zap.Stringer("processor", p))
}

// SetContextField merges the allowed fields of p into CONTEXT tool id.
// Wrong-kind ids and payloads with no allowed field are ignored.
func (r *Reconciler) SetContextField(id catalog.ToolID, p payload.Map) {
	if !accepts(catalog.Context, id, p) {
		r.ignored("context edit", id, p)
		return
	}
	r.store.Replace(SetContextField(id, p, r.now()))
}

// ApplyActionCall merges the allowed fields of p into ACTION tool id.
func (r *Reconciler) ApplyActionCall(id catalog.ToolID, p payload.Map) {
	if !accepts(catalog.Action, id, p) {
		r.ignored("action edit", id, p)
		return
	}
	r.store.Replace(ApplyActionCall(id, p, r.now()))
}

// UpdateContextField is SetContextField by external tool name. Unknown
// names are ignored.
func (r *Reconciler) UpdateContextField(name string, p payload.Map) {
	id, ok := r.resolve(name)
	if !ok {
		return
	}
	r.SetContextField(id, p)
}

// UpdateActionField is ApplyActionCall by external tool name.
func (r *Reconciler) UpdateActionField(name string, p payload.Map) {
	id, ok := r.resolve(name)
	if !ok {
		return
	}
	r.ApplyActionCall(id, p)
}

// UpdateTool routes an edit by the named tool's kind.
func (r *Reconciler) UpdateTool(name string, p payload.Map) {
	id, ok := r.resolve(name)
	if !ok {
		return
	}
	switch id.Kind() {
	case catalog.Context:
		r.SetContextField(id, p)
	case catalog.Action:
		r.ApplyActionCall(id, p)
	}
}

// ApplyScenario applies preset as one transition, then runs inference.
func (r *Reconciler) ApplyScenario(preset scenario.Preset) engine.Result {
	r.store.Replace(ApplyScenario(preset, r.now()))
	r.logger.Info("scenario applied",
		zap.String("scenario", string(preset.ID)),
		zap.Int("overrides", len(preset.Overrides)))
	return r.RunInference()
}

// ApplyScenarioByID looks id up in the configured presets and applies it.
// Unknown ids are ignored and report false.
func (r *Reconciler) ApplyScenarioByID(id string) (engine.Result, bool) {
	preset, ok := r.presets.Lookup(id)
	if !ok {
		r.logger.Debug("unknown scenario ignored", zap.String("scenario", id))
		return engine.Result{}, false
	}
	return r.ApplyScenario(preset), true
}

// RunInference evaluates the rule engine on the current snapshot and merges
// the result into that snapshot in one transition.
func (r *Reconciler) RunInference() engine.Result {
	var result engine.Result
	next := r.store.Replace(RunInference(r.engine, r.now(), &result))
	r.logger.Info("inference run",
		zap.Int64("version", next.Version),
		zap.Int("severity", result.Severity),
		zap.Int("actions", len(result.ActionCalls)),
		zap.String("summary", result.Summary))
	return result
}

func (r *Reconciler) resolve(name string) (catalog.ToolID, bool) {
	id, ok := catalog.Resolve(name)
	if !ok {
		r.logger.Debug("unknown tool ignored", zap.String("tool", name))
	}
	return id, ok
}

func (r *Reconciler) ignored(what string, id catalog.ToolID, p payload.Map) {
	if ce := r.logger.Check(zap.DebugLevel, what+" ignored"); ce != nil {
		ce.Write(
			zap.String("tool", id.Name()),
			zap.Stringer("kind", id.Kind()),
			zap.Strings("keys", p.SortedKeys()))
	}
}
