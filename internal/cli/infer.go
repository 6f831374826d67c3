package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mackim-3768/Aegis-AI-DAS/internal/catalog"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/engine"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/journal"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/payload"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/reconcile"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/scenario"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/state"
)

// InferOptions holds flags for the infer command.
type InferOptions struct {
	*RootOptions
	Scenarios  []string
	Contexts   []string
	Actions    []string
	PresetFile string

	// Now overrides the wall clock (for testing).
	Now func() time.Time
}

// InferOutput is the result of the infer command.
type InferOutput struct {
	Severity   int                 `json:"severity"`
	Escalation string              `json:"escalation"`
	Summary    string              `json:"summary"`
	Actions    []engine.ActionCall `json:"actions"`
	Version    int64               `json:"version"`
	Session    string              `json:"session,omitempty"`
}

// NewInferCommand creates the infer command.
func NewInferCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InferOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "infer",
		Short: "Apply edits and presets, then run the rule engine once",
		Long: `Build a fresh state from catalog defaults, apply the given scenario
presets and tool edits, then run inference and print the result.

Presets are applied first, in flag order, then --context edits, then
--action edits. Edits take the form name=JSON, where JSON is an object
of fields to merge. Fields the tool does not declare are dropped.

When journal.path is configured, every transition is recorded.

Examples:
  aegis infer --scenario driver-fatigue
  aegis infer --context 'get_forward_collision_risk={"level":"high"}'
  aegis infer --scenario low-visibility --context 'get_road_surface_friction={"level":"low"}' --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfer(opts, cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Scenarios, "scenario", nil, "scenario preset id (repeatable)")
	cmd.Flags().StringArrayVar(&opts.Contexts, "context", nil, "context edit name=JSON (repeatable)")
	cmd.Flags().StringArrayVar(&opts.Actions, "action", nil, "action edit name=JSON (repeatable)")
	cmd.Flags().StringVar(&opts.PresetFile, "preset-file", "", "additional presets (.yaml, .yml or .cue)")

	return cmd
}

type toolEdit struct {
	id catalog.ToolID
	p  payload.Map
}

func runInfer(opts *InferOptions, cmd *cobra.Command) error {
	set, err := loadPresets(opts.PresetFile)
	if err != nil {
		return err
	}
	presets := make([]scenario.Preset, 0, len(opts.Scenarios))
	for _, id := range opts.Scenarios {
		p, ok := set.Lookup(id)
		if !ok {
			return unknownError("scenario", id, presetIDs(set))
		}
		presets = append(presets, p)
	}
	contexts, err := parseEdits(opts.Contexts, catalog.Context)
	if err != nil {
		return err
	}
	actions, err := parseEdits(opts.Actions, catalog.Action)
	if err != nil {
		return err
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	cfg := opts.Config
	logger := opts.Logger
	store := state.NewStore(state.New(now()).WithDebug(cfg.Debug).WithProcessor(cfg.Processor))

	var rec *journal.Recorder
	if cfg.Journal.Path != "" {
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer j.Close()

		rec = journal.NewRecorder(j, journal.WithClock(now), journal.WithLogger(logger))
		detach, err := rec.Attach(cmd.Context(), store)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to start journal session", err)
		}
		defer detach()
		logger.Debug("journal session started", zap.String("session", rec.SessionID()), zap.String("path", cfg.Journal.Path))
	}

	r := reconcile.New(store,
		reconcile.WithClock(now),
		reconcile.WithLogger(logger),
		reconcile.WithPresets(set),
	)
	for _, p := range presets {
		r.ApplyScenario(p)
	}
	for _, e := range contexts {
		r.SetContextField(e.id, e.p)
	}
	for _, e := range actions {
		r.ApplyActionCall(e.id, e.p)
	}
	result := r.RunInference()

	out := InferOutput{
		Severity:   result.Severity,
		Escalation: engine.EscalationLevel(result.Severity),
		Summary:    result.Summary,
		Actions:    result.ActionCalls,
		Version:    r.Snapshot().Version,
	}
	if out.Actions == nil {
		out.Actions = []engine.ActionCall{}
	}
	if rec != nil {
		if err := rec.Err(); err != nil {
			return WrapExitError(ExitCommandError, "journal write failed", err)
		}
		out.Session = rec.SessionID()
	}

	return opts.formatter(cmd).Success(out, func(w io.Writer) error {
		return writeInferText(w, out)
	})
}

// parseEdits parses name=JSON flags. Every name must resolve to a tool of
// kind want.
func parseEdits(flags []string, want catalog.Kind) ([]toolEdit, error) {
	flag := "--" + strings.ToLower(want.String())
	edits := make([]toolEdit, 0, len(flags))
	for _, f := range flags {
		name, raw, ok := strings.Cut(f, "=")
		if !ok {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("%s %q: want name=JSON", flag, f))
		}
		name = strings.TrimSpace(name)
		id, ok := catalog.Resolve(name)
		if !ok {
			return nil, unknownError("tool", name, catalog.Names())
		}
		if id.Kind() != want {
			return nil, NewExitError(ExitCommandError,
				fmt.Sprintf("%s %s: %s is a %s tool", flag, name, name, id.Kind()))
		}
		p, err := payload.ParseMap([]byte(raw))
		if err != nil {
			return nil, WrapExitError(ExitCommandError, fmt.Sprintf("%s %s: invalid JSON object", flag, name), err)
		}
		edits = append(edits, toolEdit{id: id, p: p})
	}
	return edits, nil
}

func writeInferText(w io.Writer, out InferOutput) error {
	fmt.Fprintf(w, "Severity: %d (%s)\n", out.Severity, out.Escalation)
	fmt.Fprintf(w, "Summary:  %s\n", out.Summary)
	if out.Session != "" {
		fmt.Fprintf(w, "Session:  %s\n", out.Session)
	}
	if len(out.Actions) == 0 {
		fmt.Fprintln(w, "Actions:  none")
		return nil
	}

	fmt.Fprintln(w, "Actions:")
	tw := table(w)
	for _, c := range out.Actions {
		data, err := payload.MarshalCanonical(c.Payload)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "  %d\t%s\t%s\n", c.Priority, c.Tool.Name(), data)
	}
	return tw.Flush()
}
