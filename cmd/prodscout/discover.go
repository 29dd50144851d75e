package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"prodscout/internal/discovery"
	"prodscout/internal/intent"
)

func discoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Run the product discovery pipeline for a project",
		Long: `Discover, filter, rank, and import marketplace products for a project.

Give either a free-text request:

  prodscout discover --project <id> --input "tìm 5 sản phẩm cà phê hòa tan, rating 4.5+"

or structured intent:

  prodscout discover --project <id> --query "cà phê hòa tan" --filter "rating trên 4.5" --max 5

The result envelope is printed as JSON. A non-success envelope exits 1.`,
		RunE: runDiscover,
	}

	cmd.Flags().String("project", "", "project ID to import products into (required)")
	cmd.Flags().String("input", "", "free-text discovery request")
	cmd.Flags().String("query", "", "product search query (structured mode)")
	cmd.Flags().String("filter", "", "filter criteria as free text (structured mode)")
	cmd.Flags().Int("max", intent.DefaultMaxProducts, "maximum products to import (structured mode)")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func runDiscover(cmd *cobra.Command, _ []string) error {
	projectID, _ := cmd.Flags().GetString("project")
	input, _ := cmd.Flags().GetString("input")
	query, _ := cmd.Flags().GetString("query")
	filterText, _ := cmd.Flags().GetString("filter")
	maxProducts, _ := cmd.Flags().GetInt("max")

	if input == "" && query == "" {
		return fmt.Errorf("either --input or --query is required")
	}
	if input != "" && query != "" {
		return fmt.Errorf("--input and --query are mutually exclusive")
	}

	ctx := cmd.Context()
	svc, cleanup, err := createDiscoveryService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	var result *discovery.Result
	if input != "" {
		result = svc.RunFromNaturalLanguage(ctx, projectID, input)
	} else {
		result = svc.Run(ctx, projectID, query, filterText, maxProducts)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	if !result.Success() {
		return fmt.Errorf("discovery failed: %s", result.ErrorType)
	}
	return nil
}
