package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/prospectar/leadscan/internal/export"
	"github.com/prospectar/leadscan/internal/model"
	"github.com/prospectar/leadscan/internal/scoring"
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Inspect and export stored leads",
}

func leadsFilterFromFlags(cmd *cobra.Command) model.LeadFilter {
	city, _ := cmd.Flags().GetString("city")
	search, _ := cmd.Flags().GetString("search")
	limit, _ := cmd.Flags().GetInt("limit")

	filter := model.LeadFilter{
		City:     city,
		Search:   search,
		SortBy:   model.SortByScore,
		SortDesc: true,
		Limit:    limit,
	}
	if cmd.Flags().Changed("min-score") {
		v, _ := cmd.Flags().GetInt("min-score")
		filter.MinScore = &v
	}
	if cmd.Flags().Changed("analyzed") {
		v, _ := cmd.Flags().GetBool("analyzed")
		filter.IsAnalyzed = &v
	}
	return filter
}

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List leads",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		leads, total, err := st.ListLeads(ctx, leadsFilterFromFlags(cmd))
		if err != nil {
			return eris.Wrap(err, "leads list")
		}
		if len(leads) == 0 {
			fmt.Fprintln(os.Stderr, "No leads found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCITY\tSCORE\tCATEGORY\tEMAIL\tWEBSITE")
		for _, lead := range leads {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\t%s\n",
				lead.ID, lead.Name, lead.City, lead.OpportunityScore,
				scoring.Categorize(lead.OpportunityScore), lead.Email, lead.Website)
		}
		w.Flush() //nolint:errcheck
		fmt.Printf("\n%d of %d leads\n", len(leads), total)
		return nil
	},
}

var leadsXLSXCmd = &cobra.Command{
	Use:   "xlsx <path>",
	Short: "Export leads to an Excel workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		filter := leadsFilterFromFlags(cmd)
		filter.Limit = 10000
		leads, _, err := st.ListLeads(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "leads xlsx")
		}

		if err := export.WriteXLSX(leads, args[0]); err != nil {
			return err
		}
		fmt.Printf("Wrote %d leads to %s\n", len(leads), args[0])
		return nil
	},
}

func addLeadsFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("city", "", "filter by city")
	cmd.Flags().String("search", "", "search in name, address, email")
	cmd.Flags().Int("min-score", 0, "minimum opportunity score")
	cmd.Flags().Bool("analyzed", false, "filter by analyzed state")
	cmd.Flags().Int("limit", 20, "max leads to list")
}

func init() {
	addLeadsFilterFlags(leadsListCmd)
	addLeadsFilterFlags(leadsXLSXCmd)
	leadsCmd.AddCommand(leadsListCmd)
	leadsCmd.AddCommand(leadsXLSXCmd)
	rootCmd.AddCommand(leadsCmd)
}
