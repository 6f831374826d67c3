package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mackim-3768/Aegis-AI-DAS/internal/catalog"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/payload"
)

// ToolInfo describes one catalog entry.
type ToolInfo struct {
	Name    string      `json:"name"`
	Kind    string      `json:"kind"`
	Default payload.Map `json:"default"`
}

// NewToolsCommand creates the tools command.
func NewToolsCommand(rootOpts *RootOptions) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List catalog tools and their default payloads",
		Long: `List every tool in the catalog in declaration order.

Examples:
  aegis tools
  aegis tools --kind context
  aegis tools --kind action --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listTools(rootOpts, cmd, kind)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "only list tools of this kind (context|action)")

	return cmd
}

func listTools(opts *RootOptions, cmd *cobra.Command, kind string) error {
	ids := catalog.Tools()
	if kind != "" {
		k, ok := catalog.ParseKind(kind)
		if !ok {
			return NewExitError(ExitCommandError, fmt.Sprintf("invalid kind %q: must be context or action", kind))
		}
		ids = catalog.IDs(k)
	}

	infos := make([]ToolInfo, 0, len(ids))
	for _, id := range ids {
		infos = append(infos, ToolInfo{
			Name:    id.Name(),
			Kind:    id.Kind().String(),
			Default: catalog.DefaultPayload(id),
		})
	}

	return opts.formatter(cmd).Success(infos, func(w io.Writer) error {
		tw := table(w)
		fmt.Fprintln(tw, "NAME\tKIND\tDEFAULT")
		for _, info := range infos {
			data, err := payload.MarshalCanonical(info.Default)
			if err != nil {
				return err
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Name, info.Kind, data)
		}
		return tw.Flush()
	})
}
