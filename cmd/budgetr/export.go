package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/budgetr/internal/api"
	"github.com/Veraticus/budgetr/internal/cli"
	"github.com/Veraticus/budgetr/internal/config"
	"github.com/Veraticus/budgetr/internal/report"
	"github.com/spf13/cobra"
)

func exportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export per-category totals for one or more date ranges",
		Long: `Export a report with one column per date range and one row per category.

Ranges are given as --range start,end[,title] and may be repeated. The title
defaults to the start date.`,
	}

	cmd.AddCommand(exportExcelCmd(a))
	cmd.AddCommand(exportLocalCmd(a))
	cmd.AddCommand(exportSheetsCmd(a))

	return cmd
}

func exportExcelCmd(a *app) *cobra.Command {
	var rangeFlags []string

	cmd := &cobra.Command{
		Use:   "excel",
		Short: "Download the server-generated Excel workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ranges, err := parseRanges(rangeFlags)
			if err != nil {
				return err
			}

			client, err := a.newAPI()
			if err != nil {
				return err
			}

			if err := client.GenerateExcel(cmd.Context(), ranges); err != nil {
				return err
			}

			fmt.Fprintln(a.out, cli.FormatSuccess(fmt.Sprintf("Excel export saved to %s",
				config.ExpandPath(a.v.GetString(config.KeyExportDir)))))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&rangeFlags, "range", nil, "date range as start,end[,title] (repeatable)")
	_ = cmd.MarkFlagRequired("range")

	return cmd
}

func exportLocalCmd(a *app) *cobra.Command {
	var (
		rangeFlags     []string
		format, output string
	)

	cmd := &cobra.Command{
		Use:   "local",
		Short: "Build an xlsx or pdf report locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "xlsx" && format != "pdf" {
				return fmt.Errorf("invalid --format %q: must be xlsx or pdf", format)
			}

			ranges, err := parseRanges(rangeFlags)
			if err != nil {
				return err
			}

			client, err := a.newAPI()
			if err != nil {
				return err
			}

			matrix, err := report.Collect(cmd.Context(), client, ranges)
			if err != nil {
				return err
			}

			if output == "" {
				output = filepath.Join(config.ExpandPath(a.v.GetString(config.KeyExportDir)), "report."+format)
			}

			if err := writeReport(output, format, matrix, a.now()); err != nil {
				return err
			}

			fmt.Fprintln(a.out, cli.RenderMatrix(matrix))
			fmt.Fprintln(a.out, cli.FormatSuccess("Report written to "+output))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&rangeFlags, "range", nil, "date range as start,end[,title] (repeatable)")
	cmd.Flags().StringVar(&format, "format", "xlsx", "report format (xlsx, pdf)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <export.dir>/report.<format>)")
	_ = cmd.MarkFlagRequired("range")

	return cmd
}

func writeReport(path, format string, matrix *report.Matrix, generated time.Time) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	if format == "pdf" {
		return report.WritePDF(f, matrix, generated)
	}
	return report.WriteXLSX(f, matrix)
}

func exportSheetsCmd(a *app) *cobra.Command {
	var rangeFlags []string

	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Write the report to a Google Sheets spreadsheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ranges, err := parseRanges(rangeFlags)
			if err != nil {
				return err
			}

			writer, err := a.newSheetsWriter(cmd.Context())
			if err != nil {
				return err
			}

			client, err := a.newAPI()
			if err != nil {
				return err
			}

			matrix, err := report.Collect(cmd.Context(), client, ranges)
			if err != nil {
				return err
			}

			if err := writer.Write(cmd.Context(), matrix); err != nil {
				return err
			}

			fmt.Fprintln(a.out, cli.FormatSuccess(fmt.Sprintf("Wrote %d categories to Google Sheets", len(matrix.Rows))))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&rangeFlags, "range", nil, "date range as start,end[,title] (repeatable)")
	_ = cmd.MarkFlagRequired("range")

	return cmd
}

// parseRanges turns start,end[,title] flags into export ranges, in flag order.
func parseRanges(values []string) ([]api.ExportRange, error) {
	if len(values) == 0 {
		return nil, errors.New("at least one --range is required")
	}

	ranges := make([]api.ExportRange, 0, len(values))
	for _, value := range values {
		parts := strings.SplitN(value, ",", 3)
		if len(parts) < 2 {
			return nil, fmt.Errorf("invalid --range %q: expected start,end[,title]", value)
		}

		start, err := parseOptionalDate("range", strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, err
		}
		end, err := parseOptionalDate("range", strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, err
		}
		if start.IsZero() || end.IsZero() {
			return nil, fmt.Errorf("invalid --range %q: start and end are required", value)
		}
		if !end.After(start) {
			return nil, fmt.Errorf("invalid --range %q: end must be after start", value)
		}

		title := start.Format("2006-01-02")
		if len(parts) == 3 && strings.TrimSpace(parts[2]) != "" {
			title = strings.TrimSpace(parts[2])
		}

		ranges = append(ranges, api.ExportRange{Start: start, End: end, Title: title})
	}

	return ranges, nil
}
