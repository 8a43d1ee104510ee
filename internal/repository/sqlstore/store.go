package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"construction-sales-ledger/internal/logger"
	"construction-sales-ledger/internal/repository"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements repository.Store on database/sql. The same SQL runs on
// PostgreSQL (lib/pq) and SQLite (modernc.org/sqlite).
type Store struct {
	db   *sql.DB
	q    querier
	inTx bool

	units        repository.UnitRepository
	deals        repository.DealRepository
	installments repository.InstallmentRepository
	wallets      repository.WalletRepository
	transactions repository.TransactionRepository
	payouts      repository.PayoutRepository
}

func NewStore(db *sql.DB) *Store {
	return newStore(db, db, false)
}

func newStore(db *sql.DB, q querier, inTx bool) *Store {
	return &Store{
		db:           db,
		q:            q,
		inTx:         inTx,
		units:        &unitRepository{q: q},
		deals:        &dealRepository{q: q},
		installments: &installmentRepository{q: q},
		wallets:      &walletRepository{q: q},
		transactions: &transactionRepository{q: q},
		payouts:      &payoutRepository{q: q},
	}
}

func (s *Store) Units() repository.UnitRepository               { return s.units }
func (s *Store) Deals() repository.DealRepository               { return s.deals }
func (s *Store) Installments() repository.InstallmentRepository { return s.installments }
func (s *Store) Wallets() repository.WalletRepository           { return s.wallets }
func (s *Store) Transactions() repository.TransactionRepository { return s.transactions }
func (s *Store) Payouts() repository.PayoutRepository           { return s.payouts }

// WithTx runs fn in one transaction. Nested calls reuse the outer transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(newStore(s.db, tx, true)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Open connects to the configured backend and verifies the connection.
// SQLite gets a single connection so that transactions serialise.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	logger.Debug("Database connection opened", "driver", driver)
	return db, nil
}

// SQLiteDSN builds a modernc.org/sqlite DSN for path (":memory:" included).
func SQLiteDSN(path string) string {
	params := "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_time_format=sqlite"
	if strings.Contains(path, "?") {
		return path + "&" + params
	}
	return path + "?" + params
}

// Connect opens the configured backend and, when migrate is set, applies the
// embedded schema. For sqlite, dsn is a file path or ":memory:".
func Connect(ctx context.Context, driver, dsn string, migrate bool) (*sql.DB, error) {
	if driver == DriverSQLite {
		dsn = SQLiteDSN(dsn)
	}
	db, err := Open(ctx, driver, dsn)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}
