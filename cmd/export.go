package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/prospectar/leadscan/internal/model"
)

var exportLeadID int64

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export qualified leads to Go High Level",
	Long:  "Pushes analyzed leads above export.min_score into the CRM with gap tags. With --lead only that lead is exported, regardless of score.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		exporter, err := initExporter(st)
		if err != nil {
			return err
		}

		if exportLeadID > 0 {
			var lead *model.Lead
			lead, err = st.GetLead(ctx, exportLeadID)
			if err != nil {
				return eris.Wrap(err, "export")
			}
			contactID, err := exporter.ExportLead(ctx, lead)
			if err != nil {
				return err
			}
			fmt.Printf("Lead %d exported as contact %s\n", lead.ID, contactID)
			return nil
		}

		exported, failed, err := exporter.ExportBatch(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Exported %d leads (%d failed)\n", exported, failed)
		return nil
	},
}

func init() {
	exportCmd.Flags().Int64Var(&exportLeadID, "lead", 0, "export a single lead by ID")
	rootCmd.AddCommand(exportCmd)
}
