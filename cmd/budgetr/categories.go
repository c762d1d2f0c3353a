package main

import (
	"fmt"

	"github.com/Veraticus/budgetr/internal/cli"
	"github.com/Veraticus/budgetr/internal/model"
	"github.com/spf13/cobra"
)

func categoriesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage expenditure categories",
	}

	cmd.AddCommand(listCategoriesCmd(a))
	cmd.AddCommand(addCategoryCmd(a))

	return cmd
}

func listCategoriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.newAPI()
			if err != nil {
				return err
			}

			results, err := client.GetCategories(cmd.Context())
			if err != nil {
				return err
			}

			if results.Len() == 0 {
				fmt.Fprintln(a.out, cli.InfoStyle.Render("No categories found. Use 'budgetr categories add' to create one."))
				return nil
			}

			fmt.Fprintln(a.out, cli.RenderCategories(results.Data))
			return nil
		},
	}
}

func addCategoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.newAPI()
			if err != nil {
				return err
			}

			created, err := client.CreateCategory(cmd.Context(), model.NewCategory(&model.RawCategory{Name: args[0]}))
			if err != nil {
				return err
			}

			fmt.Fprintln(a.out, cli.FormatSuccess(fmt.Sprintf("Category %q has id %d", created.Name(), created.ID())))
			return nil
		},
	}
}
