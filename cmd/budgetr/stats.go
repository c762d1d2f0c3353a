package main

import (
	"fmt"
	"time"

	"github.com/Veraticus/budgetr/internal/api"
	"github.com/Veraticus/budgetr/internal/cli"
	"github.com/spf13/cobra"
)

func statsCmd(a *app) *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show totals per category",
		Long: `Show the total spent per category between --start and --end.

Without flags the current month is shown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			query, err := statsQuery(a.now(), start, end)
			if err != nil {
				return err
			}

			client, err := a.newAPI()
			if err != nil {
				return err
			}

			stats, err := client.GetCategoryStats(cmd.Context(), query)
			if err != nil {
				return err
			}

			fmt.Fprintln(a.out, cli.FormatTitle(fmt.Sprintf("%s Spending %s to %s", cli.ChartIcon,
				query.Start.Format("Jan 2, 2006"), query.End.Format("Jan 2, 2006"))))
			if len(stats) == 0 {
				fmt.Fprintln(a.out, cli.InfoStyle.Render("No expenditures in this period."))
				return nil
			}

			fmt.Fprintln(a.out, cli.RenderStats(stats))
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "period start (default: first day of this month)")
	cmd.Flags().StringVar(&end, "end", "", "period end, exclusive (default: first day of next month)")

	return cmd
}

// statsQuery fills missing bounds with the month containing now.
func statsQuery(now time.Time, start, end string) (api.StatsQuery, error) {
	var query api.StatsQuery
	var err error

	if query.Start, err = parseOptionalDate("start", start); err != nil {
		return query, err
	}
	if query.End, err = parseOptionalDate("end", end); err != nil {
		return query, err
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if query.Start.IsZero() {
		query.Start = monthStart
	}
	if query.End.IsZero() {
		query.End = query.Start.AddDate(0, 1, 0)
	}

	if !query.End.After(query.Start) {
		return query, fmt.Errorf("--end must be after --start")
	}

	return query, nil
}
