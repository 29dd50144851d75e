package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"prodscout/internal/crawl"
)

func productsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Inspect imported products",
	}

	cmd.AddCommand(productsListCmd())
	cmd.AddCommand(productsDetailCmd())

	return cmd
}

func productsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products imported for a project",
		RunE:  runProductsList,
	}

	cmd.Flags().String("project", "", "project ID (required)")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func runProductsList(cmd *cobra.Command, _ []string) error {
	projectID, _ := cmd.Flags().GetString("project")

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	products, err := store.ListProducts(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to list products: %w", err)
	}

	if len(products) == 0 {
		fmt.Println("No products imported yet. Run 'prodscout discover' first.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPLATFORM\tPRICE\tRATING\tSOLD")
	for _, p := range products {
		rating := "-"
		if p.Rating != nil {
			rating = fmt.Sprintf("%.1f", *p.Rating)
		}
		sold := "-"
		if p.SalesCount != nil {
			sold = fmt.Sprintf("%d", *p.SalesCount)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.0f\t%s\t%s\n",
			p.ID, truncateName(p.Name, 48), p.Platform, p.Price, rating, sold)
	}
	return w.Flush()
}

func productsDetailCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detail <product-url>",
		Short: "Crawl a product page for its description and reviews",
		Args:  cobra.ExactArgs(1),
		RunE:  runProductsDetail,
	}

	cmd.Flags().Int("reviews", 30, "maximum reviews to fetch")

	return cmd
}

func runProductsDetail(cmd *cobra.Command, args []string) error {
	reviewLimit, _ := cmd.Flags().GetInt("reviews")
	productURL := args[0]

	httpClient := &http.Client{Timeout: 30 * time.Second}

	var renderer crawl.Renderer
	if viper.GetBool("crawl.render") {
		r, err := crawl.NewRodRenderer()
		if err != nil {
			return fmt.Errorf("failed to start browser renderer: %w", err)
		}
		renderer = r
		defer func() { _ = renderer.Close() }()
	}

	registry := crawl.DefaultRegistry(httpClient, renderer)
	scraper, err := registry.Resolve(productURL)
	if err != nil {
		return err
	}

	detail, err := scraper.CrawlProductDetails(cmd.Context(), productURL, reviewLimit)
	if err != nil {
		return fmt.Errorf("failed to crawl product details: %w", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(detail)
}

func truncateName(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
