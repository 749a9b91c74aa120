package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/gpu-prices/internal/model"
	"github.com/sells-group/gpu-prices/internal/report"
	"github.com/sells-group/gpu-prices/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect saved price snapshots",
	Long:  "Commands for listing, viewing, and summarizing snapshots saved with run --save.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved snapshots, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")
		snaps, err := st.ListSnapshots(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(snaps) == 0 {
			fmt.Fprintln(os.Stderr, "No snapshots found.")
			return nil
		}

		formatSnapshotList(os.Stdout, snaps)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <snapshot-id>",
	Short: "Show the records of a saved snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		format, err := parseShowFormat(showFormat)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		snap, err := st.GetSnapshot(ctx, args[0])
		if eris.Is(err, store.ErrNotFound) {
			return eris.Errorf("no snapshot with id %s", args[0])
		}
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		return report.Write(os.Stdout, snap.Result, format)
	},
}

// parseShowFormat accepts the text formats only; runs show writes to stdout.
func parseShowFormat(s string) (report.Format, error) {
	f, err := report.ParseFormat(s)
	if err != nil {
		return "", err
	}
	if f == report.FormatXLSX {
		return "", eris.New("runs show: xlsx is not supported, use run --format xlsx --out FILE")
	}
	return f, nil
}

// -- runs stats --

var runsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize recent snapshots",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		since, _ := cmd.Flags().GetDuration("since")
		snaps, err := st.ListSnapshots(ctx, 10000) // high limit for stats
		if err != nil {
			return eris.Wrap(err, "runs stats")
		}

		var cutoff time.Time
		if since > 0 {
			cutoff = time.Now().Add(-since)
		}
		formatSnapshotStats(os.Stdout, computeSnapshotStats(snaps, cutoff))
		return nil
	},
}

var showFormat string

func init() {
	runsListCmd.Flags().Int("limit", store.DefaultListLimit, "max number of snapshots to display")
	runsShowCmd.Flags().StringVar(&showFormat, "format", "table", "output format (table, json, yaml)")
	runsStatsCmd.Flags().Duration("since", 24*time.Hour, "time window for stats (e.g. 24h, 168h)")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsStatsCmd)
	rootCmd.AddCommand(runsCmd)
}

// snapshotStats holds aggregate statistics over a set of snapshots.
type snapshotStats struct {
	Total        int
	Clean        int
	WithFailures int
	AvgRecords   float64
	MaxRecords   int
	MinRecords   int
}

// computeSnapshotStats summarizes snapshots created at or after cutoff.
func computeSnapshotStats(snaps []model.SnapshotSummary, cutoff time.Time) snapshotStats {
	var s snapshotStats
	var totalRecords int

	for _, sn := range snaps {
		if sn.CreatedAt.Before(cutoff) {
			continue
		}
		if s.Total == 0 || sn.Records < s.MinRecords {
			s.MinRecords = sn.Records
		}
		s.Total++
		totalRecords += sn.Records
		if sn.Records > s.MaxRecords {
			s.MaxRecords = sn.Records
		}
		if sn.Failures > 0 {
			s.WithFailures++
		} else {
			s.Clean++
		}
	}

	if s.Total > 0 {
		s.AvgRecords = float64(totalRecords) / float64(s.Total)
	}
	return s
}

// formatSnapshotList writes a tabular list of snapshots to w.
func formatSnapshotList(out io.Writer, snaps []model.SnapshotSummary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tCREATED\tRECORDS\tFAILURES")
	_, _ = fmt.Fprintln(w, "--\t-------\t-------\t--------")

	for _, sn := range snaps {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\n",
			sn.ID,
			sn.CreatedAt.Format("2006-01-02 15:04"),
			sn.Records,
			sn.Failures,
		)
	}
	_ = w.Flush()
}

// formatSnapshotStats writes aggregate stats to w.
func formatSnapshotStats(out io.Writer, s snapshotStats) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Snapshots:\t%d\n", s.Total)
	_, _ = fmt.Fprintf(w, "All providers ok:\t%d\n", s.Clean)
	_, _ = fmt.Fprintf(w, "With failures:\t%d\n", s.WithFailures)
	if s.Total > 0 {
		_, _ = fmt.Fprintf(w, "Records (avg):\t%.1f\n", s.AvgRecords)
		_, _ = fmt.Fprintf(w, "Records (min/max):\t%d/%d\n", s.MinRecords, s.MaxRecords)
	}
	_ = w.Flush()
}
