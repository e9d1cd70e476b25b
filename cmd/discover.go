package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/prospectar/leadscan/internal/discovery"
	"github.com/prospectar/leadscan/pkg/serpapi"
)

var (
	discoverCity    string
	discoverKeyword string
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find real-estate businesses in a city",
	Long:  "Searches Google Maps via SerpAPI for real-estate businesses in an Argentine city and loads them as leads. Without --keyword every default keyword is searched.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if discoverCity == "" {
			return eris.New("--city is required")
		}

		search, err := initSearch()
		if err != nil {
			return err
		}
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		runner := discovery.NewRunner(search, st)
		job, err := runner.Discover(ctx, discoverCity, discoverKeyword)
		if err != nil {
			return eris.Wrap(err, "discover")
		}

		fmt.Printf("Job %s completed: %d new leads in %s\n", job.ID, job.LeadsFound, job.City)
		return nil
	},
}

var citiesCmd = &cobra.Command{
	Use:   "cities",
	Short: "List supported cities",
	Run: func(*cobra.Command, []string) {
		for _, city := range serpapi.AvailableCities() {
			fmt.Println(city)
		}
	},
}

func init() {
	discoverCmd.Flags().StringVar(&discoverCity, "city", "", "Argentine city to search (required)")
	discoverCmd.Flags().StringVar(&discoverKeyword, "keyword", "", "single keyword instead of the default set")
	discoverCmd.AddCommand(citiesCmd)
	rootCmd.AddCommand(discoverCmd)
}
