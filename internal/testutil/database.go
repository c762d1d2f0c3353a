// Package testutil provides shared test setup for budgetr packages.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/Veraticus/budgetr/internal/storage"
)

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SetupTestLedger creates an in-memory import ledger with migrations applied.
// It is closed when the test ends.
func SetupTestLedger(t *testing.T) *storage.Ledger {
	t.Helper()

	ledger, err := storage.NewLedger(":memory:", DiscardLogger())
	if err != nil {
		t.Fatalf("failed to create test ledger: %v", err)
	}

	t.Cleanup(func() {
		_ = ledger.Close()
	})

	if err := ledger.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return ledger
}

// SeedImports records one import per fitid for account, with expenditure ids
// starting at 1.
func SeedImports(t *testing.T, ledger *storage.Ledger, account string, fitids ...string) {
	t.Helper()

	for i, fitid := range fitids {
		if err := ledger.RecordImport(context.Background(), account, fitid, int64(i+1)); err != nil {
			t.Fatalf("failed to seed import %q: %v", fitid, err)
		}
	}
}
