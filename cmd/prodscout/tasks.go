package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"prodscout/internal/model"
	"prodscout/internal/tasks"
)

func tasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Generate and inspect marketing tasks for imported products",
	}

	cmd.AddCommand(tasksGenerateCmd())
	cmd.AddCommand(tasksListCmd())

	return cmd
}

func tasksGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <product-id>",
		Short: "Generate marketing tasks for an imported product",
		Args:  cobra.ExactArgs(1),
		RunE:  runTasksGenerate,
	}

	cmd.Flags().Int("max", tasks.DefaultMaxTasks, "maximum tasks to generate (1-10)")

	return cmd
}

func runTasksGenerate(cmd *cobra.Command, args []string) error {
	maxTasks, _ := cmd.Flags().GetInt("max")
	productID := args[0]

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	product, err := store.GetProduct(ctx, productID)
	if err != nil {
		return err
	}

	var project *model.Project
	if product.ProjectID != "" {
		if p, projErr := store.GetProject(ctx, product.ProjectID); projErr == nil {
			project = p
		}
	}

	client, err := createLLMClient(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	generator := tasks.NewGenerator(client, nil)
	generated := generator.Generate(ctx, *product, project, maxTasks)

	if err := store.SaveTasks(ctx, productID, generated); err != nil {
		return fmt.Errorf("failed to save tasks: %w", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(generated)
}

func tasksListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <product-id>",
		Short: "List marketing tasks saved for a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			taskList, err := store.ListTasks(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to list tasks: %w", err)
			}

			if len(taskList) == 0 {
				fmt.Println("No tasks found. Generate some with 'prodscout tasks generate'.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTYPE\tPRIORITY\tHOURS")
			for _, t := range taskList {
				fmt.Fprintf(w, "%s\t%s\t%s\t%.1f\n",
					t.Name, t.TaskType, t.Priority, t.EstimatedHours)
			}
			return w.Flush()
		},
	}
}
