package main

import (
	"fmt"

	"github.com/Veraticus/budgetr/internal/api"
	"github.com/Veraticus/budgetr/internal/cli"
	"github.com/Veraticus/budgetr/internal/model"
	"github.com/spf13/cobra"
)

func expendituresCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "expenditures",
		Aliases: []string{"exp"},
		Short:   "Manage expenditures",
	}

	cmd.AddCommand(listExpendituresCmd(a))
	cmd.AddCommand(addExpenditureCmd(a))
	cmd.AddCommand(showExpenditureCmd(a))
	cmd.AddCommand(updateExpenditureCmd(a))
	cmd.AddCommand(deleteExpenditureCmd(a))

	return cmd
}

func listExpendituresCmd(a *app) *cobra.Command {
	var (
		start, end, sort, order string
		limit, offset           int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenditures",
		Long: `List expenditures in the order the server returns them.

--order only applies together with --sort. --start and --end must be given
together.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			query := api.ExpenditureQuery{Sort: sort, Order: order, Limit: limit, Offset: offset}

			var err error
			if query.Start, err = parseOptionalDate("start", start); err != nil {
				return err
			}
			if query.End, err = parseOptionalDate("end", end); err != nil {
				return err
			}
			if query.Start.IsZero() != query.End.IsZero() {
				return fmt.Errorf("--start and --end must be given together")
			}

			client, err := a.newAPI()
			if err != nil {
				return err
			}

			results, err := client.GetExpenditures(cmd.Context(), query)
			if err != nil {
				return err
			}

			if results.Len() == 0 {
				fmt.Fprintln(a.out, cli.InfoStyle.Render("No expenditures found."))
				return nil
			}

			fmt.Fprintln(a.out, cli.RenderExpenditures(results.Data))
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "only expenditures on or after this date (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().StringVar(&end, "end", "", "only expenditures before this date")
	cmd.Flags().StringVar(&sort, "sort", "", "sort column (id, amount, date)")
	cmd.Flags().StringVar(&order, "order", "", "sort order (asc, desc)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of expenditures")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of expenditures to skip")

	return cmd
}

func addExpenditureCmd(a *app) *cobra.Command {
	var date, category string

	cmd := &cobra.Command{
		Use:   "add <amount>",
		Short: "Record a new expenditure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expenditure := model.NewExpenditure(nil)
			if err := expenditure.SetAmountString(args[0]); err != nil {
				return err
			}
			if date != "" {
				if err := expenditure.SetDateString(date); err != nil {
					return err
				}
			}
			expenditure.SetCategory(categoryFromFlag(category))

			client, err := a.newAPI()
			if err != nil {
				return err
			}

			created, err := client.CreateExpenditure(cmd.Context(), expenditure)
			if err != nil {
				return err
			}

			fmt.Fprintln(a.out, cli.FormatSuccess(fmt.Sprintf("Recorded expenditure %d", created.ID())))
			fmt.Fprintln(a.out, cli.RenderExpenditures([]*model.Expenditure{created}))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "date of the expenditure (default: now)")
	cmd.Flags().StringVar(&category, "category", "", "category name, created on the server if new")

	return cmd
}

func showExpenditureCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one expenditure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			client, err := a.newAPI()
			if err != nil {
				return err
			}

			expenditure, err := client.GetExpenditure(cmd.Context(), id)
			if err != nil {
				return err
			}

			fmt.Fprintln(a.out, cli.RenderExpenditures([]*model.Expenditure{expenditure}))
			return nil
		},
	}
}

func updateExpenditureCmd(a *app) *cobra.Command {
	var (
		amount, date, category string
		clearCategory          bool
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change an expenditure",
		Long: `Change the amount, date or category of an expenditure. Fields without a
flag keep their stored value.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if clearCategory && category != "" {
				return fmt.Errorf("--category and --clear-category are mutually exclusive")
			}

			client, err := a.newAPI()
			if err != nil {
				return err
			}

			expenditure, err := client.GetExpenditure(cmd.Context(), id)
			if err != nil {
				return err
			}

			if amount != "" {
				if err := expenditure.SetAmountString(amount); err != nil {
					return err
				}
			}
			if date != "" {
				if err := expenditure.SetDateString(date); err != nil {
					return err
				}
			}
			switch {
			case clearCategory:
				expenditure.SetCategory(nil)
			case category != "":
				expenditure.SetCategory(categoryFromFlag(category))
			}

			updated, err := client.UpdateExpenditure(cmd.Context(), expenditure)
			if err != nil {
				return err
			}

			fmt.Fprintln(a.out, cli.FormatSuccess(fmt.Sprintf("Updated expenditure %d", updated.ID())))
			fmt.Fprintln(a.out, cli.RenderExpenditures([]*model.Expenditure{updated}))
			return nil
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "new amount")
	cmd.Flags().StringVar(&date, "date", "", "new date")
	cmd.Flags().StringVar(&category, "category", "", "new category name")
	cmd.Flags().BoolVar(&clearCategory, "clear-category", false, "remove the category")

	return cmd
}

func deleteExpenditureCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an expenditure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if !yes {
				confirmed, err := cli.Confirm(cmd.Context(), cli.NewNonBlockingReader(a.in), a.out,
					fmt.Sprintf("Delete expenditure %d?", id))
				if err != nil {
					return err
				}
				if !confirmed {
					fmt.Fprintln(a.out, cli.InfoStyle.Render("Nothing deleted."))
					return nil
				}
			}

			client, err := a.newAPI()
			if err != nil {
				return err
			}

			if _, err := client.DeleteExpenditure(cmd.Context(), model.NewExpenditure(&model.RawExpenditure{ID: id})); err != nil {
				return err
			}

			fmt.Fprintln(a.out, cli.FormatSuccess(fmt.Sprintf("Deleted expenditure %d", id)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	return cmd
}
