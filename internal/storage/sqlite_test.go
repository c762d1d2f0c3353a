package storage

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/Veraticus/budgetr/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestLedger(t *testing.T) *Ledger {
	t.Helper()

	ledger, err := NewLedger(":memory:", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ledger.Close() })

	require.NoError(t, ledger.Migrate(context.Background()))
	return ledger
}

func TestLedger_Migrate(t *testing.T) {
	ledger := createTestLedger(t)
	ctx := context.Background()

	version, err := ledger.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	require.NoError(t, ledger.Migrate(ctx), "migrating twice is a no-op")

	var indexCount int
	err = ledger.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name='idx_imports_account'`).Scan(&indexCount)
	require.NoError(t, err)
	assert.Equal(t, 1, indexCount)
}

func TestLedger_RecordAndLookup(t *testing.T) {
	ledger := createTestLedger(t)
	ctx := context.Background()

	imported, err := ledger.HasImported(ctx, "1234567890", "2024011501")
	require.NoError(t, err)
	assert.False(t, imported)

	require.NoError(t, ledger.RecordImport(ctx, "1234567890", "2024011501", 42))

	imported, err = ledger.HasImported(ctx, "1234567890", "2024011501")
	require.NoError(t, err)
	assert.True(t, imported)

	imp, err := ledger.GetImport(ctx, "1234567890", "2024011501")
	require.NoError(t, err)
	assert.Equal(t, "1234567890", imp.Account)
	assert.Equal(t, int64(42), imp.ExpenditureID)
	assert.False(t, imp.ImportedAt.IsZero())
}

func TestLedger_RecordImportDuplicate(t *testing.T) {
	ledger := createTestLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.RecordImport(ctx, "acct", "A1", 1))
	err := ledger.RecordImport(ctx, "acct", "A1", 2)
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)
}

func TestLedger_SameFITIDInOtherAccount(t *testing.T) {
	ledger := createTestLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.RecordImport(ctx, "checking", "1001", 1))
	require.NoError(t, ledger.RecordImport(ctx, "card", "1001", 2))

	imported, err := ledger.HasImported(ctx, "savings", "1001")
	require.NoError(t, err)
	assert.False(t, imported)

	imp, err := ledger.GetImport(ctx, "card", "1001")
	require.NoError(t, err)
	assert.Equal(t, int64(2), imp.ExpenditureID)
}

func TestLedger_MigrateKeepsVersion2Rows(t *testing.T) {
	ledger, err := NewLedger(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ledger.Close() })
	ctx := context.Background()

	for _, stmt := range []string{
		`CREATE TABLE imports (
			fitid TEXT PRIMARY KEY,
			account TEXT NOT NULL,
			expenditure_id INTEGER NOT NULL,
			imported_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX idx_imports_account ON imports(account)`,
		`INSERT INTO imports (fitid, account, expenditure_id) VALUES ('1001', 'checking', 7)`,
		`PRAGMA user_version = 2`,
	} {
		_, err := ledger.db.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}

	require.NoError(t, ledger.Migrate(ctx))

	imp, err := ledger.GetImport(ctx, "checking", "1001")
	require.NoError(t, err)
	assert.Equal(t, int64(7), imp.ExpenditureID)
	assert.NoError(t, ledger.RecordImport(ctx, "card", "1001", 8))
}

func TestLedger_Validation(t *testing.T) {
	ledger := createTestLedger(t)
	ctx := context.Background()

	tests := []struct {
		err  error
		run  func() error
		name string
	}{
		{
			name: "empty fitid lookup",
			run:  func() error { _, err := ledger.HasImported(ctx, "acct", " "); return err },
			err:  ErrEmptyString,
		},
		{
			name: "empty fitid record",
			run:  func() error { return ledger.RecordImport(ctx, "acct", "", 1) },
			err:  ErrEmptyString,
		},
		{
			name: "unsaved expenditure",
			run:  func() error { return ledger.RecordImport(ctx, "acct", "A1", 0) },
			err:  ErrInvalidID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), tt.err)
		})
	}
}

func TestLedger_GetImportNotFound(t *testing.T) {
	ledger := createTestLedger(t)

	_, err := ledger.GetImport(context.Background(), "acct", "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestLedger_CountImports(t *testing.T) {
	ledger := createTestLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.RecordImport(ctx, "checking", "A1", 1))
	require.NoError(t, ledger.RecordImport(ctx, "checking", "A2", 2))
	require.NoError(t, ledger.RecordImport(ctx, "card", "C1", 3))

	total, err := ledger.CountImports(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	checking, err := ledger.CountImports(ctx, "checking")
	require.NoError(t, err)
	assert.Equal(t, 2, checking)
}

func TestLedger_PersistsToDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "imports.db")
	ctx := context.Background()

	ledger, err := NewLedger(path, nil)
	require.NoError(t, err)
	require.NoError(t, ledger.Migrate(ctx))
	require.NoError(t, ledger.RecordImport(ctx, "acct", "A1", 9))
	require.NoError(t, ledger.Close())

	reopened, err := NewLedger(path, nil)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	require.NoError(t, reopened.Migrate(ctx))

	imported, err := reopened.HasImported(ctx, "acct", "A1")
	require.NoError(t, err)
	assert.True(t, imported)
}

func TestNewLedger_EmptyPath(t *testing.T) {
	_, err := NewLedger("", nil)
	assert.ErrorIs(t, err, ErrEmptyString)
}
