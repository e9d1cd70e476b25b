package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show lead pipeline statistics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		stats, err := st.Stats(ctx)
		if err != nil {
			return eris.Wrap(err, "stats")
		}

		fmt.Printf("Leads:     %d\n", stats.TotalLeads)
		fmt.Printf("Analyzed:  %d\n", stats.AnalyzedLeads)
		fmt.Printf("Exported:  %d\n", stats.ExportedLeads)
		fmt.Printf("Avg score: %.1f\n\n", stats.AvgScore)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SCORE RANGE\tLEADS")
		for _, label := range []string{
			"80-100 (Hot)", "60-79 (Warm)", "40-59 (Medium)", "20-39 (Cool)", "0-19 (Cold)",
		} {
			if n, ok := stats.LeadsByRange[label]; ok {
				fmt.Fprintf(w, "%s\t%d\n", label, n)
			}
		}
		w.Flush() //nolint:errcheck

		if len(stats.LeadsByCity) > 0 {
			cities := make([]string, 0, len(stats.LeadsByCity))
			for city := range stats.LeadsByCity {
				cities = append(cities, city)
			}
			sort.Slice(cities, func(i, j int) bool {
				return stats.LeadsByCity[cities[i]] > stats.LeadsByCity[cities[j]]
			})

			fmt.Println()
			w = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CITY\tLEADS")
			for _, city := range cities {
				fmt.Fprintf(w, "%s\t%d\n", city, stats.LeadsByCity[city])
			}
			w.Flush() //nolint:errcheck
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
