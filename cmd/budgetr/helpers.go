package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/Veraticus/budgetr/internal/api"
	"github.com/Veraticus/budgetr/internal/config"
	"github.com/Veraticus/budgetr/internal/model"
	"github.com/Veraticus/budgetr/internal/sheets"
	"github.com/Veraticus/budgetr/internal/storage"
	"github.com/spf13/viper"
)

// app carries the per-invocation state shared by all commands. The factory
// fields are replaced in tests.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	v      *viper.Viper
	logger *slog.Logger

	newAPI          func() (api.API, error)
	newLedger       func(ctx context.Context) (*storage.Ledger, error)
	newSheetsWriter func(ctx context.Context) (sheets.ReportWriter, error)
	now             func() time.Time

	cfgFile string
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	a := &app{
		in:     in,
		out:    out,
		errOut: errOut,
		v:      viper.New(),
		logger: discardLogger(),
		now:    time.Now,
	}
	a.newAPI = a.defaultAPI
	a.newLedger = a.defaultLedger
	a.newSheetsWriter = a.defaultSheetsWriter
	return a
}

func (a *app) defaultAPI() (api.API, error) {
	cfg, err := config.ClientConfig(a.v)
	if err != nil {
		return nil, err
	}
	cfg.Logger = a.logger

	return api.NewClient(cfg)
}

// defaultLedger opens the import ledger with migrations applied.
func (a *app) defaultLedger(ctx context.Context) (*storage.Ledger, error) {
	path, err := config.DatabasePath(a.v)
	if err != nil {
		return nil, err
	}

	ledger, err := storage.NewLedger(path, a.logger)
	if err != nil {
		return nil, err
	}

	if err := ledger.Migrate(ctx); err != nil {
		_ = ledger.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return ledger, nil
}

func (a *app) defaultSheetsWriter(ctx context.Context) (sheets.ReportWriter, error) {
	cfg, err := config.SheetsConfig(a.v)
	if err != nil {
		return nil, err
	}
	return sheets.NewWriter(ctx, *cfg, a.logger)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid expenditure id %q", arg)
	}
	return id, nil
}

// parseOptionalDate parses a --start/--end style flag. Empty is the zero time.
func parseOptionalDate(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := model.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return t, nil
}

// categoryFromFlag returns nil for an empty name.
func categoryFromFlag(name string) *model.Category {
	if name == "" {
		return nil
	}
	return model.NewCategory(&model.RawCategory{Name: name})
}
