package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lnnemml/pulse/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect a persisted event store",
		Long:  "List runs in a SQLite event store, or dump one run's event stream with --run-id.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "pulse.db", "SQLite event store")
	cmd.Flags().StringVar(&opts.RunID, "run-id", "", "dump this run's stream instead of listing runs")

	return cmd
}

func runTrace(cmd *cobra.Command, opts *TraceOptions) error {
	db, err := store.Open(opts.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	out := cmd.OutOrStdout()

	if opts.RunID == "" {
		runs, err := db.Runs(ctx)
		if err != nil {
			return err
		}
		if opts.Format == "json" {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(runs)
		}
		for _, id := range runs {
			fmt.Fprintln(out, id)
		}
		return nil
	}

	events, err := db.ReadRun(ctx, opts.RunID)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return fmt.Errorf("no events for run %q", opts.RunID)
	}

	if opts.Format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(events)
	}
	for _, ev := range events {
		fmt.Fprintf(out, "[%d] %s %s %s", ev.Seq, ev.Timestamp, ev.Name, ev.PagePath)
		if opts.Verbose && ev.Payload != "" {
			fmt.Fprintf(out, " %s", ev.Payload)
		}
		fmt.Fprintln(out)
	}
	return nil
}
