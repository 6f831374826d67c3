package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mackim-3768/Aegis-AI-DAS/internal/scenario"
)

// PresetInfo describes one scenario preset.
type PresetInfo struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Tools []string `json:"tools"`
}

// NewScenariosCommand creates the scenarios command.
func NewScenariosCommand(rootOpts *RootOptions) *cobra.Command {
	var presetFile string

	cmd := &cobra.Command{
		Use:   "scenarios",
		Short: "List scenario presets",
		Long: `List the built-in scenario presets, plus any loaded from a preset file.

Preset files are YAML (.yaml, .yml) or CUE (.cue). Presets from a file
replace built-in presets with the same id.

Examples:
  aegis scenarios
  aegis scenarios --preset-file ./presets.cue`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := loadPresets(presetFile)
			if err != nil {
				return err
			}
			return listScenarios(rootOpts, cmd, set)
		},
	}

	cmd.Flags().StringVar(&presetFile, "preset-file", "", "additional presets (.yaml, .yml or .cue)")

	return cmd
}

// loadPresets returns the built-in presets extended by path, if set.
func loadPresets(path string) (*scenario.Set, error) {
	set := scenario.Default()
	if path == "" {
		return set, nil
	}
	presets, err := scenario.LoadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load presets", err)
	}
	set.Add(presets...)
	return set, nil
}

func listScenarios(opts *RootOptions, cmd *cobra.Command, set *scenario.Set) error {
	presets := set.List()
	infos := make([]PresetInfo, 0, len(presets))
	for _, p := range presets {
		tools := make([]string, 0, len(p.Overrides))
		for _, ov := range p.Overrides {
			tools = append(tools, ov.Tool.Name())
		}
		infos = append(infos, PresetInfo{ID: string(p.ID), Label: p.Label, Tools: tools})
	}

	return opts.formatter(cmd).Success(infos, func(w io.Writer) error {
		tw := table(w)
		fmt.Fprintln(tw, "ID\tLABEL\tOVERRIDES")
		for _, info := range infos {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", info.ID, info.Label, strings.Join(info.Tools, ", "))
		}
		return tw.Flush()
	})
}

func presetIDs(set *scenario.Set) []string {
	ids := set.IDs()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
