package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/danhigham/telefleet/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	key        TEXT PRIMARY KEY,
	id         INTEGER NOT NULL UNIQUE,
	api_id     INTEGER NOT NULL,
	api_hash   TEXT NOT NULL,
	phone      TEXT NOT NULL DEFAULT '',
	session    TEXT NOT NULL,
	first_name TEXT NOT NULL DEFAULT '',
	last_name  TEXT NOT NULL DEFAULT '',
	username   TEXT NOT NULL DEFAULT '',
	account_id TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS meta (
	name  TEXT PRIMARY KEY,
	value INTEGER NOT NULL
);`

var accountColumns = []string{
	"key", "id", "api_id", "api_hash", "phone", "session",
	"first_name", "last_name", "username", "account_id",
}

// SQLiteStore keeps one row per account. Key allocation and insertion
// happen in a single transaction.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.Key, &a.ID, &a.APIID, &a.APIHash, &a.Phone, &a.Session,
		&a.FirstName, &a.LastName, &a.Username, &a.AccountID)
	return a, err
}

func (s *SQLiteStore) List(ctx context.Context) (map[string]domain.Account, error) {
	query, args, err := sq.Select(accountColumns...).From("accounts").OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.Account)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out[a.Key] = a
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (domain.Account, error) {
	query, args, err := sq.Select(accountColumns...).From("accounts").Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return domain.Account{}, fmt.Errorf("build get query: %w", err)
	}
	a, err := scanAccount(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (s *SQLiteStore) Add(ctx context.Context, acc domain.NewAccount) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	n, err := s.nextID(ctx, tx)
	if err != nil {
		return "", err
	}
	rec := newRecord(n, acc)

	query, args, err := sq.Insert("accounts").Columns(accountColumns...).
		Values(rec.Key, rec.ID, rec.APIID, rec.APIHash, rec.Phone, rec.Session,
			rec.FirstName, rec.LastName, rec.Username, rec.AccountID).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return "", fmt.Errorf("insert account: %w", err)
	}

	if err := setLastID(ctx, tx, n); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return rec.Key, nil
}

func (s *SQLiteStore) nextID(ctx context.Context, tx *sql.Tx) (int, error) {
	query, args, err := sq.Select("COALESCE(MAX(v), 0)").
		FromSelect(
			sq.Select("value AS v").From("meta").Where(sq.Eq{"name": "last_id"}).
				Suffix("UNION ALL SELECT MAX(id) AS v FROM accounts"),
			"ids").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build next id query: %w", err)
	}
	var high int
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&high); err != nil {
		return 0, fmt.Errorf("read last id: %w", err)
	}
	return high + 1, nil
}

func setLastID(ctx context.Context, tx *sql.Tx, n int) error {
	query, args, err := sq.Insert("meta").Columns("name", "value").Values("last_id", n).
		Suffix("ON CONFLICT(name) DO UPDATE SET value = MAX(value, excluded.value)").
		ToSql()
	if err != nil {
		return fmt.Errorf("build meta upsert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("store last id: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Update(ctx context.Context, key string, fn func(*domain.Account)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query, args, err := sq.Select(accountColumns...).From("accounts").Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return fmt.Errorf("build get query: %w", err)
	}
	a, err := scanAccount(tx.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrAccountNotFound
	}
	if err != nil {
		return fmt.Errorf("get account: %w", err)
	}

	fn(&a)

	query, args, err = sq.Update("accounts").SetMap(map[string]any{
		"api_id":     a.APIID,
		"api_hash":   a.APIHash,
		"phone":      a.Phone,
		"session":    a.Session,
		"first_name": a.FirstName,
		"last_name":  a.LastName,
		"username":   a.Username,
		"account_id": a.AccountID,
	}).Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) (bool, error) {
	query, args, err := sq.Delete("accounts").Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return false, fmt.Errorf("build delete: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("delete account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete account: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
