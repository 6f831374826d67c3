package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mackim-3768/Aegis-AI-DAS/internal/journal"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/payload"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/state"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Session  string
	Log      bool
}

// SessionHistory is one session's recorded transitions and log.
type SessionHistory struct {
	Session     string               `json:"session"`
	Transitions []journal.Transition `json:"transitions"`
	Log         []state.LogEntry     `json:"log,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect a session journal",
		Long: `List the sessions recorded in a journal database, or the transitions
of one session.

Examples:
  aegis history --db ./aegis.db
  aegis history --db ./aegis.db --session 0193a5c2-... --log`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to journal database (required)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "show transitions of this session")
	cmd.Flags().BoolVar(&opts.Log, "log", false, "include log entries (with --session)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	if _, err := os.Stat(opts.Database); err != nil {
		return WrapExitError(ExitCommandError, "database not found", err)
	}
	j, err := journal.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	ctx := cmd.Context()
	sessions, err := j.Sessions(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read sessions", err)
	}
	f := opts.formatter(cmd)

	if opts.Session == "" {
		if sessions == nil {
			sessions = []journal.Session{}
		}
		return f.Success(sessions, func(w io.Writer) error {
			return writeSessionsText(w, sessions)
		})
	}

	ids := make([]string, 0, len(sessions))
	found := false
	for _, s := range sessions {
		ids = append(ids, s.ID)
		found = found || s.ID == opts.Session
	}
	if !found {
		return unknownError("session", opts.Session, ids)
	}

	h := SessionHistory{Session: opts.Session}
	if h.Transitions, err = j.Transitions(ctx, opts.Session); err != nil {
		return WrapExitError(ExitCommandError, "failed to read transitions", err)
	}
	if opts.Log {
		if h.Log, err = j.LogEntries(ctx, opts.Session); err != nil {
			return WrapExitError(ExitCommandError, "failed to read log", err)
		}
	}
	return f.Success(h, func(w io.Writer) error {
		return writeHistoryText(w, h)
	})
}

func writeSessionsText(w io.Writer, sessions []journal.Session) error {
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions recorded.")
		return nil
	}
	tw := table(w)
	fmt.Fprintln(tw, "SESSION\tSTARTED\tTRANSITIONS")
	for _, s := range sessions {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", s.ID, s.StartedAt.Format(time.RFC3339), s.Transitions)
	}
	return tw.Flush()
}

func writeHistoryText(w io.Writer, h SessionHistory) error {
	tw := table(w)
	fmt.Fprintln(tw, "VERSION\tSEVERITY\tPROCESSOR\tDEBUG\tSUMMARY")
	for _, t := range h.Transitions {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%t\t%s\n", t.Version, t.Severity, t.Processor, t.Debug, t.Summary)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(h.Log) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	tw = table(w)
	fmt.Fprintln(tw, "ID\tKIND\tTIME\tMESSAGE\tPAYLOAD")
	for _, e := range h.Log {
		var data []byte
		if e.Payload != nil {
			var err error
			if data, err = payload.MarshalCanonical(e.Payload); err != nil {
				return err
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", e.ID, e.Kind, e.Timestamp.Format(time.RFC3339), e.Message, data)
	}
	return tw.Flush()
}
