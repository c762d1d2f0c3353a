package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/budgetr/internal/common"
	"github.com/mattn/go-sqlite3"
)

// Import is one recorded ledger row.
type Import struct {
	ImportedAt    time.Time
	FITID         string
	Account       string
	ExpenditureID int64
}

// Ledger records imported statement transactions in SQLite.
type Ledger struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewLedger opens (and creates if needed) the ledger database at dbPath.
// Call Migrate before use.
func NewLedger(dbPath string, logger *slog.Logger) (*Ledger, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps :memory: databases alive and serializes writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Ledger{db: db, logger: logger}, nil
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// HasImported reports whether fitid was already recorded for account.
func (l *Ledger) HasImported(ctx context.Context, account, fitid string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateString(fitid, "fitid"); err != nil {
		return false, err
	}

	var exists bool
	err := l.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM imports WHERE account = ? AND fitid = ?)`, account, fitid).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to query import %s/%s: %w", account, fitid, err)
	}

	return exists, nil
}

// RecordImport stores that fitid of account was created as expenditureID.
// Recording the same account and fitid twice returns common.ErrDuplicateEntry.
func (l *Ledger) RecordImport(ctx context.Context, account, fitid string, expenditureID int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(fitid, "fitid"); err != nil {
		return err
	}
	if err := validateID(expenditureID); err != nil {
		return err
	}

	_, err := l.db.ExecContext(ctx,
		`INSERT INTO imports (account, fitid, expenditure_id) VALUES (?, ?, ?)`,
		account, fitid, expenditureID)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return fmt.Errorf("%w: %s/%s", common.ErrDuplicateEntry, account, fitid)
		}
		return fmt.Errorf("failed to record import %s/%s: %w", account, fitid, err)
	}

	l.logger.Debug("Recorded import",
		"fitid", fitid,
		"account", account,
		"expenditure_id", expenditureID)

	return nil
}

// GetImport returns the ledger row for account and fitid, or
// common.ErrNotFound.
func (l *Ledger) GetImport(ctx context.Context, account, fitid string) (*Import, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var imp Import
	err := l.db.QueryRowContext(ctx,
		`SELECT fitid, account, expenditure_id, imported_at FROM imports WHERE account = ? AND fitid = ?`,
		account, fitid).
		Scan(&imp.FITID, &imp.Account, &imp.ExpenditureID, &imp.ImportedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", common.ErrNotFound, account, fitid)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get import %s/%s: %w", account, fitid, err)
	}

	return &imp, nil
}

// CountImports returns the number of recorded imports. An empty account
// counts all of them.
func (l *Ledger) CountImports(ctx context.Context, account string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	query := `SELECT COUNT(*) FROM imports`
	var args []any
	if account != "" {
		query += ` WHERE account = ?`
		args = append(args, account)
	}

	var count int
	if err := l.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count imports: %w", err)
	}

	return count, nil
}
