package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mackim-3768/Aegis-AI-DAS/internal/engine"
)

// RuleInfo describes one rule of the engine.
type RuleInfo struct {
	Name  string   `json:"name"`
	Event string   `json:"event"`
	Reads []string `json:"reads"`
}

// NewRulesCommand creates the rules command.
func NewRulesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the rule table in evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rules := engine.Rules()
			infos := make([]RuleInfo, 0, len(rules))
			for _, r := range rules {
				reads := make([]string, 0, len(r.Reads))
				for _, id := range r.Reads {
					reads = append(reads, id.Name())
				}
				infos = append(infos, RuleInfo{Name: r.Name, Event: r.Event, Reads: reads})
			}

			return rootOpts.formatter(cmd).Success(infos, func(w io.Writer) error {
				tw := table(w)
				fmt.Fprintln(tw, "RULE\tEVENT\tREADS")
				for _, info := range infos {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Name, info.Event, strings.Join(info.Reads, ", "))
				}
				return tw.Flush()
			})
		},
	}
}
