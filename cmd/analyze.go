package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/prospectar/leadscan/internal/pipeline"
	"github.com/prospectar/leadscan/internal/scoring"
)

var analyzeJSON bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>",
	Short: "Analyze a single website ad hoc",
	Long:  "Fetches a website, detects its technology stack, extracts contacts, and prints the opportunity report without touching the database.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := pipeline.New(cfg, nil)
		result := p.AnalyzeURL(cmd.Context(), args[0])

		if analyzeJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		printReport(args[0], result)
		return nil
	},
}

func printReport(url string, result *pipeline.Result) {
	fmt.Printf("Análisis de %s\n\n", url)
	fmt.Printf("Score de oportunidad: %d/100 %s\n\n", result.Score, scoring.Label(result.Score))

	fmt.Println("Presente:")
	for _, e := range result.Summary.Has {
		fmt.Printf("  ✓ %s\n", e.Label)
	}
	fmt.Println("Faltante:")
	for _, e := range result.Summary.Gaps {
		fmt.Printf("  ✗ %s (%s)\n", e.Label, e.Tag)
	}

	if result.Stack.ChatProvider != "" {
		fmt.Printf("\nChat: %s\n", result.Stack.ChatProvider)
	}
	if result.Stack.CRMProvider != "" {
		fmt.Printf("CRM: %s\n", result.Stack.CRMProvider)
	}
	if result.Contact.PrimaryEmail != "" {
		fmt.Printf("Email: %s\n", result.Contact.PrimaryEmail)
	}
	if result.Contact.PrimaryPhone != "" {
		fmt.Printf("Teléfono: %s\n", result.Contact.PrimaryPhone)
	}
	if result.Contact.WhatsApp != "" {
		fmt.Printf("WhatsApp: %s\n", result.Contact.WhatsApp)
	}
	if msg, ok := result.Stack.DetectionDetails["error"]; ok {
		fmt.Printf("\nNo se pudo acceder al sitio: %s\n", msg)
	}
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print raw JSON instead of the report")
	rootCmd.AddCommand(analyzeCmd)
}
