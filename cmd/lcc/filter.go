package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lightcurve-lab/internal/catalogue"
	"lightcurve-lab/internal/config"
	"lightcurve-lab/internal/pipeline"
)

var (
	filterConfig string
	filterOut    string
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Train a stars filter and apply it to new stars",
	RunE:  runFilter,
}

func init() {
	rootCmd.AddCommand(filterCmd)

	filterCmd.Flags().StringVarP(&filterConfig, "config", "c", "", "Filter job YAML file")
	filterCmd.Flags().StringVar(&filterOut, "out", "", "Result file (default: from the job file)")
	_ = filterCmd.MarkFlagRequired("config")
}

func runFilter(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	job, err := config.LoadFilterJob(filterConfig)
	if err != nil {
		return err
	}
	st, err := openStores(ctx, false)
	if err != nil {
		return err
	}
	defer st.Close()

	runner := pipeline.NewFilterRunner(job, catalogue.Env{
		StarStore: st.stars,
		Logger:    logger.Named("catalogue"),
	})
	if filterOut != "" {
		runner = runner.WithOutput(filterOut)
	}
	res, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%d passed, %d rejected, %d dropped: %s\n", res.Passed, res.Rejected, res.Dropped, res.Path)
	return nil
}
