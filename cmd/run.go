package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/gpu-prices/internal/model"
	"github.com/sells-group/gpu-prices/internal/report"
)

var (
	runFormat    string
	runOut       string
	runFilter    string
	runSave      bool
	runProviders []string
)

// errAllFailed makes the process exit non-zero when no provider answered.
var errAllFailed = eris.New("every provider failed")

// priceSource is the aggregation round the commands depend on.
type priceSource interface {
	Aggregate(ctx context.Context) *model.Result
	AggregateProviders(ctx context.Context, names []string) (*model.Result, error)
	Providers() []string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Collect prices from every provider once",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		format, err := report.ParseFormat(runFormat)
		if err != nil {
			return err
		}
		if format == report.FormatXLSX && runOut == "" {
			return eris.New("xlsx output requires --out")
		}

		env, err := initAggregator(runProviders)
		if err != nil {
			return err
		}

		var w io.Writer = os.Stdout
		if runOut != "" {
			f, err := os.Create(runOut)
			if err != nil {
				return eris.Wrap(err, "create output file")
			}
			defer f.Close() //nolint:errcheck
			w = f
		}

		res, err := runRound(ctx, env.Aggregator, w, format, runFilter)
		if err != nil {
			return err
		}

		if runSave {
			if err := saveSnapshot(ctx, res); err != nil {
				return err
			}
		}

		if res.AllFailed() {
			return errAllFailed
		}
		return nil
	},
}

// runRound performs one aggregation, logs failed providers and renders the
// (optionally filtered) result to w. It returns the unfiltered result.
func runRound(ctx context.Context, src priceSource, w io.Writer, format report.Format, filter string) (*model.Result, error) {
	res := src.Aggregate(ctx)

	for _, f := range res.Failures {
		zap.L().Warn("provider failed",
			zap.String("provider", f.Provider),
			zap.String("reason", f.Reason),
		)
	}
	zap.L().Info("prices collected",
		zap.Int("records", len(res.Records)),
		zap.Int("failures", len(res.Failures)),
		zap.Int64("duration_ms", res.DurationMS),
	)

	if err := report.Write(w, res.Filter(filter), format); err != nil {
		return nil, eris.Wrap(err, "render result")
	}
	return res, nil
}

func saveSnapshot(ctx context.Context, res *model.Result) error {
	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	id, err := st.SaveSnapshot(ctx, res)
	if err != nil {
		return eris.Wrap(err, "save snapshot")
	}
	zap.L().Info("snapshot saved", zap.String("id", id))
	fmt.Fprintf(os.Stderr, "snapshot saved: %s\n", id)
	return nil
}

func init() {
	runCmd.Flags().StringVar(&runFormat, "format", "table", "output format (table, json, yaml, xlsx)")
	runCmd.Flags().StringVar(&runOut, "out", "", "write output to this file instead of stdout")
	runCmd.Flags().StringVar(&runFilter, "filter", "", "keep only records whose item or specs contain this text")
	runCmd.Flags().BoolVar(&runSave, "save", false, "persist the result as a snapshot")
	runCmd.Flags().StringSliceVar(&runProviders, "providers", nil, "comma-separated subset of providers to query")
	rootCmd.AddCommand(runCmd)
}
