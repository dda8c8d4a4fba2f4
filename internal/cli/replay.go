package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lnnemml/pulse/internal/harness"
	"github.com/lnnemml/pulse/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunID    string
}

// ReplayResult summarizes one scenario replay.
type ReplayResult struct {
	Scenario      string `json:"scenario"`
	Events        int    `json:"events"`
	Assertions    int    `json:"assertions"`
	Deterministic bool   `json:"deterministic"`
	Persisted     bool   `json:"persisted"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <scenario.yaml>",
		Short: "Run a signal scenario through the engine",
		Long: `Run a scripted browser-signal scenario through a fresh page session and
print the emitted event stream.

The scenario executes twice and the two canonical streams are compared
byte-for-byte; a mismatch means nondeterminism and fails the command.
With --db the stream is additionally persisted to a SQLite event store.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite event store to append the stream to")
	cmd.Flags().StringVar(&opts.RunID, "run-id", "", "run id for the persisted stream (default: scenario name)")

	return cmd
}

func runReplay(cmd *cobra.Command, opts *ReplayOptions, path string) error {
	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return err
	}

	first, err := harness.Run(scenario)
	if err != nil {
		return err
	}
	second, err := harness.Run(scenario)
	if err != nil {
		return err
	}

	firstSnap, err := harness.StreamSnapshot(first.Stream)
	if err != nil {
		return fmt.Errorf("snapshot stream: %w", err)
	}
	secondSnap, err := harness.StreamSnapshot(second.Stream)
	if err != nil {
		return fmt.Errorf("snapshot stream: %w", err)
	}

	result := ReplayResult{
		Scenario:      scenario.Name,
		Events:        len(first.Stream),
		Assertions:    len(scenario.Assertions),
		Deterministic: bytes.Equal(firstSnap, secondSnap),
	}
	if !result.Deterministic {
		return fmt.Errorf("scenario %q produced different streams across two runs", scenario.Name)
	}

	if opts.Database != "" {
		runID := opts.RunID
		if runID == "" {
			runID = scenario.Name
		}
		db, err := store.Open(opts.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.AppendRun(context.Background(), runID, first.Stream); err != nil {
			return fmt.Errorf("persist stream: %w", err)
		}
		result.Persisted = true
	}

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Fprintf(out, "scenario %s: %d events, deterministic\n", result.Scenario, result.Events)
	if opts.Verbose {
		fmt.Fprint(out, string(firstSnap))
	}
	return nil
}
