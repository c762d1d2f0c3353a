package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/budgetr/internal/api"
	"github.com/Veraticus/budgetr/internal/cli"
	"github.com/Veraticus/budgetr/internal/ofx"
	"github.com/Veraticus/budgetr/internal/storage"
	"github.com/spf13/cobra"
)

type importOptions struct {
	category       string
	dryRun         bool
	includeCredits bool
}

type importSummary struct {
	created    int
	duplicates int
	previewed  int
	failedFile int
}

func importOFXCmd(a *app) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import-ofx <file|dir|glob>...",
		Short: "Import expenditures from OFX/QFX bank statements",
		Long: `Import debit transactions from OFX/QFX files as expenditures.

Arguments may be files, glob patterns or directories, which are searched
recursively for .ofx and .qfx files. Every imported transaction is recorded in
a local ledger so importing the same statement twice creates nothing new.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := collectOFXFiles(args)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return errors.New("no files found to import")
			}

			return a.runImportOFX(cmd.Context(), files, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "d", false, "preview import without creating expenditures")
	cmd.Flags().StringVar(&opts.category, "category", "", "category for all imported expenditures")
	cmd.Flags().BoolVar(&opts.includeCredits, "include-credits", false, "also import credits, by absolute amount")

	return cmd
}

func (a *app) runImportOFX(ctx context.Context, files []string, opts importOptions) error {
	a.logger.Info("Importing OFX files",
		"file_count", len(files),
		"dry_run", opts.dryRun)

	handler := cli.NewInterruptHandler(a.errOut, "Run the same command again to resume; imported transactions are skipped.")
	ctx, stop := handler.HandleInterrupts(ctx)
	defer stop()

	client, err := a.newAPI()
	if err != nil {
		return err
	}

	ledger, err := a.newLedger(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := ledger.Close(); cerr != nil {
			a.logger.Warn("Failed to close import ledger", "error", cerr)
		}
	}()

	parserOpts := []ofx.Option{ofx.WithLogger(a.logger)}
	if opts.includeCredits {
		parserOpts = append(parserOpts, ofx.WithCredits())
	}
	parser := ofx.NewParser(parserOpts...)

	var summary importSummary
	for _, path := range files {
		if ctx.Err() != nil {
			break
		}

		entries, err := parseOFXFile(ctx, parser, path)
		if err != nil {
			a.logger.Error("Failed to parse OFX file", "file", path, "error", err)
			summary.failedFile++
			continue
		}

		if err := a.importEntries(ctx, client, ledger, filepath.Base(path), entries, opts, &summary); err != nil {
			return err
		}
	}

	if handler.WasInterrupted() {
		fmt.Fprintln(a.out, cli.FormatWarning("Import interrupted"))
	}

	switch {
	case opts.dryRun:
		fmt.Fprintln(a.out, cli.FormatInfo(fmt.Sprintf("Dry run: %d new expenditures, %d already imported",
			summary.previewed, summary.duplicates)))
	default:
		fmt.Fprintln(a.out, cli.FormatSuccess(fmt.Sprintf("Imported %d expenditures, skipped %d already imported",
			summary.created, summary.duplicates)))
	}

	if summary.failedFile > 0 {
		return fmt.Errorf("%d of %d files could not be parsed", summary.failedFile, len(files))
	}

	return nil
}

func parseOFXFile(ctx context.Context, parser *ofx.Parser, path string) ([]ofx.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return parser.ParseFile(ctx, f)
}

func (a *app) importEntries(ctx context.Context, client api.API, ledger *storage.Ledger, name string,
	entries []ofx.Entry, opts importOptions, summary *importSummary) error {
	if len(entries) == 0 {
		a.logger.Warn("No transactions found in file", "file", name)
		return nil
	}

	var bar interface {
		Add(int) error
		Finish() error
	}
	if !opts.dryRun {
		bar = cli.NewProgressBar(a.errOut, len(entries), name)
		defer func() { _ = bar.Finish() }()
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return nil
		}

		imported, err := ledger.HasImported(ctx, entry.Account, entry.FITID)
		if err != nil {
			return err
		}
		if imported {
			summary.duplicates++
			if bar != nil {
				_ = bar.Add(1)
			}
			continue
		}

		entry.Expenditure.SetCategory(categoryFromFlag(opts.category))

		if opts.dryRun {
			summary.previewed++
			fmt.Fprintf(a.out, "%s  %s  %s\n",
				entry.Expenditure.Date().Format("2006-01-02"),
				cli.FormatAmount(entry.Expenditure.Amount()),
				entry.Payee)
			continue
		}

		created, err := client.CreateExpenditure(ctx, entry.Expenditure)
		if err != nil && ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to import %s from %s: %w", entry.FITID, name, err)
		}

		if err := ledger.RecordImport(ctx, entry.Account, entry.FITID, created.ID()); err != nil {
			return err
		}

		summary.created++
		_ = bar.Add(1)
	}

	return nil
}

// collectOFXFiles expands globs and walks directories. Files given directly
// are kept whatever their extension.
func collectOFXFiles(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err != nil {
				return nil, fmt.Errorf("no files found matching %s", pattern)
			}
			matches = []string{pattern}
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				return nil, err
			}
			if !info.IsDir() {
				add(match)
				continue
			}

			err = filepath.WalkDir(match, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() && isOFXFile(path) {
					add(path)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("failed to walk %s: %w", match, err)
			}
		}
	}

	return files, nil
}

func isOFXFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ofx", ".qfx":
		return true
	}
	return false
}
