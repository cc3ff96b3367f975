package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lightcurve-lab/internal/catalogue"
	"lightcurve-lab/internal/config"
	"lightcurve-lab/internal/pipeline"
)

var (
	tuneConfig      string
	tuneOut         string
	tuneWorkers     int
	tuneMetricsAddr string
)

var tuneCmd = &cobra.Command{
	Use:   "tune",
	Short: "Search hyper-parameters of a stars filter",
	Long: `Run every trial of a tune job on a train/test split of the searched and
other stars, then write the ROC data, statistics, ROC plot and tuning report.
Trials are stored in ClickHouse when --clickhouse-dsn is set.`,
	RunE: runTune,
}

func init() {
	rootCmd.AddCommand(tuneCmd)

	tuneCmd.Flags().StringVarP(&tuneConfig, "config", "c", "", "Tune job YAML file")
	tuneCmd.Flags().StringVar(&tuneOut, "out", "", "Output directory (default: from the job file)")
	tuneCmd.Flags().IntVar(&tuneWorkers, "workers", 0, "Parallel trials (default: from the job file)")
	tuneCmd.Flags().StringVar(&tuneMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running")
	_ = tuneCmd.MarkFlagRequired("config")
}

func runTune(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	job, err := config.LoadTuneJob(tuneConfig)
	if err != nil {
		return err
	}
	if tuneMetricsAddr != "" {
		startMetricsServer(ctx, tuneMetricsAddr)
	}

	st, err := openStores(ctx, false)
	if err != nil {
		return err
	}
	defer st.Close()

	runner := pipeline.NewTuneRunner(job, st.trials, catalogue.Env{
		StarStore: st.stars,
		Logger:    logger.Named("catalogue"),
	}).WithWorkers(tuneWorkers)
	if tuneOut != "" {
		runner = runner.WithOutputDir(tuneOut)
	}

	res, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	best := res.Result.BestTrial()
	logger.Info("best trial",
		zap.String("run_id", res.Result.RunID),
		zap.Int("trial", best.Index),
		zap.Float64("score", best.Score),
		zap.Any("params", best.Params.Printable()))
	fmt.Printf("Run %s: best trial %d, score %.3f\n", res.Result.RunID, best.Index, best.Score)
	for _, f := range res.Files {
		fmt.Printf("  - %s\n", f)
	}
	return nil
}
