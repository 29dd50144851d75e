package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"prodscout/internal/model"
)

func projectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage discovery projects",
	}

	cmd.AddCommand(projectsCreateCmd())
	cmd.AddCommand(projectsListCmd())
	cmd.AddCommand(projectsShowCmd())

	return cmd
}

func projectsCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new project",
		RunE:  runProjectsCreate,
	}

	cmd.Flags().String("name", "", "project name (required)")
	cmd.Flags().String("description", "", "project description")
	cmd.Flags().String("target-product", "", "target product name (required for discovery)")
	cmd.Flags().String("target-category", "", "target product category")
	cmd.Flags().Float64("budget", 0, "target budget range")
	cmd.Flags().String("currency", "VND", "currency code")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func runProjectsCreate(cmd *cobra.Command, _ []string) error {
	name, _ := cmd.Flags().GetString("name")
	description, _ := cmd.Flags().GetString("description")
	targetProduct, _ := cmd.Flags().GetString("target-product")
	targetCategory, _ := cmd.Flags().GetString("target-category")
	budget, _ := cmd.Flags().GetFloat64("budget")
	currency, _ := cmd.Flags().GetString("currency")

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	project := &model.Project{
		Name:                  name,
		Description:           description,
		TargetProductName:     targetProduct,
		TargetProductCategory: targetCategory,
		TargetBudgetRange:     budget,
		Currency:              currency,
		Status:                "active",
	}

	if err := store.SaveProject(ctx, project); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}

	fmt.Printf("Created project %s\n", project.ID)
	return nil
}

func projectsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all projects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			projects, err := store.ListProjects(ctx)
			if err != nil {
				return fmt.Errorf("failed to list projects: %w", err)
			}

			if len(projects) == 0 {
				fmt.Println("No projects found. Create one with 'prodscout projects create'.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tTARGET PRODUCT\tSTATUS\tCREATED")
			for _, p := range projects {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					p.ID, p.Name, p.TargetProductName, p.Status,
					p.CreatedAt.Format("2006-01-02"))
			}
			return w.Flush()
		},
	}
}

func projectsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show a project as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			project, err := store.GetProject(ctx, args[0])
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(project)
		},
	}
}
