package cli

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mackim-3768/Aegis-AI-DAS/internal/harness"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Update     bool   // regenerate golden files
	Filter     string // script filter (glob pattern on the file name)
	PresetFile string
}

// ScriptResult holds the result of a single script.
type ScriptResult struct {
	Name   string   `json:"name"`
	File   string   `json:"file"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// RunResult holds the overall result.
type RunResult struct {
	Scripts []ScriptResult `json:"scripts"`
	Passed  int            `json:"passed"`
	Failed  int            `json:"failed"`
	Total   int            `json:"total"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <script-or-dir>...",
		Short: "Run conformance scripts",
		Long: `Run conformance scripts against the decision core.

Each argument is a script file or a directory searched recursively for
.yaml and .yml files. Scripts run in parallel, each on a fresh state.

When a golden file exists next to a script (golden/<name>.golden), the
run's snapshot must match it byte for byte. --update rewrites golden files.

Exit codes:
  0 - All scripts passed
  1 - One or more scripts failed
  2 - Command error (invalid paths, unparsable scripts, etc.)

Examples:
  aegis run ./scripts
  aegis run ./scripts/driver-fatigue.yaml --format json
  aegis run ./scripts --filter "low-*" --update`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScripts(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scripts by glob pattern")
	cmd.Flags().StringVar(&opts.PresetFile, "preset-file", "", "additional presets (.yaml, .yml or .cue)")

	return cmd
}

func runScripts(opts *RunOptions, args []string, cmd *cobra.Command) error {
	if opts.Filter != "" {
		if _, err := filepath.Match(opts.Filter, ""); err != nil {
			return WrapExitError(ExitCommandError, "invalid filter pattern", err)
		}
	}

	var files []string
	for _, arg := range args {
		found, err := findScriptFiles(arg, opts.Filter)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to find scripts", err)
		}
		files = append(files, found...)
	}

	scripts := make([]*harness.Script, 0, len(files))
	for _, f := range files {
		s, err := harness.LoadScript(f)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to load %s", f), err)
		}
		scripts = append(scripts, s)
	}

	set, err := loadPresets(opts.PresetFile)
	if err != nil {
		return err
	}
	h := harness.New(harness.WithPresets(set), harness.WithLogger(opts.Logger))
	results, err := h.RunAll(cmd.Context(), scripts)
	if err != nil {
		return WrapExitError(ExitCommandError, "script execution failed", err)
	}

	summary := RunResult{Scripts: make([]ScriptResult, 0, len(results)), Total: len(results)}
	for i, r := range results {
		sr := ScriptResult{Name: r.Name, File: files[i], Pass: r.Pass, Errors: r.Errors}
		if err := checkGolden(files[i], r, opts.Update); err != nil {
			sr.Pass = false
			sr.Errors = append(sr.Errors, err.Error())
		}
		if sr.Pass {
			summary.Passed++
		} else {
			summary.Failed++
		}
		summary.Scripts = append(summary.Scripts, sr)
	}

	f := opts.formatter(cmd)
	text := func(w io.Writer) error { return writeRunText(w, summary, opts.Update) }
	if summary.Failed > 0 {
		msg := fmt.Sprintf("%d script(s) failed", summary.Failed)
		if err := f.Failure("E_SCRIPT_FAILED", msg, summary, text); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}
	return f.Success(summary, text)
}

// findScriptFiles returns path itself when it is a file, or every .yaml
// and .yml file below it when it is a directory. golden/ directories are
// skipped.
func findScriptFiles(path, filter string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "golden" {
				return filepath.SkipDir
			}
			return nil
		}
		ext := filepath.Ext(p)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(p), ext)
			if ok, _ := filepath.Match(filter, name); !ok {
				return nil
			}
		}
		files = append(files, p)
		return nil
	})
	return files, err
}

// goldenFilePath returns the golden file for a script file.
func goldenFilePath(scriptFile string) string {
	base := filepath.Base(scriptFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(scriptFile), "golden", name+".golden")
}

// checkGolden compares r's snapshot with the script's golden file, or
// writes it when update is set. A missing golden file is not a failure.
func checkGolden(scriptFile string, r *harness.Result, update bool) error {
	data, err := harness.SnapshotOf(r.Name, r.Final).MarshalCanonical()
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	path := goldenFilePath(scriptFile)
	if update {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create golden directory: %w", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write golden file: %w", err)
		}
		return nil
	}

	want, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read golden file: %w", err)
	}
	if !bytes.Equal(want, data) {
		return fmt.Errorf("snapshot does not match %s (run with --update to regenerate)", path)
	}
	return nil
}

func writeRunText(w io.Writer, summary RunResult, updated bool) error {
	for _, s := range summary.Scripts {
		if s.Pass {
			suffix := ""
			if updated {
				suffix = " (golden updated)"
			}
			fmt.Fprintf(w, "✓ %s%s\n", s.Name, suffix)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", s.Name)
		for _, e := range s.Errors {
			for _, line := range strings.Split(e, "\n") {
				fmt.Fprintf(w, "  %s\n", line)
			}
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Summary: %d passed, %d failed, %d total\n", summary.Passed, summary.Failed, summary.Total)
	if summary.Failed == 0 && summary.Total > 0 {
		fmt.Fprintln(w, "✓ All scripts passed")
	}
	return nil
}
