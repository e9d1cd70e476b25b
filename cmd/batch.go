package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/prospectar/leadscan/internal/pipeline"
)

var batchLimit int

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Analyze the unanalyzed lead backlog",
	Long:  "Runs website analysis over every lead that has a website and no analysis yet, bounded by batch.max_concurrent workers.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		p := pipeline.New(cfg, st)
		analyzed, failed, err := p.AnalyzeBatch(ctx, batchLimit)
		if err != nil {
			return eris.Wrap(err, "batch")
		}

		fmt.Printf("Analyzed %d leads (%d failed)\n", analyzed, failed)
		return nil
	},
}

func init() {
	batchCmd.Flags().IntVar(&batchLimit, "limit", 100, "max leads to analyze in this run")
	rootCmd.AddCommand(batchCmd)
}
