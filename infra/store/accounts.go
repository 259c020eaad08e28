package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/CrestNiraj12/kabinka/domain"
)

// Accounts persists the accounts signed in on this device.
type Accounts struct {
	db *sql.DB
}

func NewAccounts(db *sql.DB) *Accounts {
	return &Accounts{db: db}
}

// Save inserts or replaces s, keyed by its acct@domain id.
func (a *Accounts) Save(ctx context.Context, s domain.AccountSession) error {
	if s.ID == "" {
		return fmt.Errorf("save account: empty id")
	}
	if s.LastActive.IsZero() {
		s.LastActive = time.Now()
	}
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO accounts (id, account_id, domain, username, token_path, last_active)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			account_id = excluded.account_id,
			domain = excluded.domain,
			username = excluded.username,
			token_path = excluded.token_path,
			last_active = excluded.last_active
	`, s.ID, s.AccountID, s.Domain, s.Username, s.TokenPath, s.LastActive.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save account %s: %w", s.ID, err)
	}
	return nil
}

const accountColumns = "id, account_id, domain, username, token_path, last_active"

func scanAccount(row interface{ Scan(...any) error }) (domain.AccountSession, error) {
	var s domain.AccountSession
	var lastActive string
	if err := row.Scan(&s.ID, &s.AccountID, &s.Domain, &s.Username, &s.TokenPath, &lastActive); err != nil {
		return domain.AccountSession{}, err
	}
	s.LastActive, _ = time.Parse(time.RFC3339Nano, lastActive)
	return s, nil
}

// List returns every saved account, most recently active first.
func (a *Accounts) List(ctx context.Context) ([]domain.AccountSession, error) {
	rows, err := a.db.QueryContext(ctx, "SELECT "+accountColumns+" FROM accounts ORDER BY last_active DESC, id")
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []domain.AccountSession
	for rows.Next() {
		s, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (a *Accounts) Get(ctx context.Context, id string) (domain.AccountSession, error) {
	s, err := scanAccount(a.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM accounts WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.AccountSession{}, fmt.Errorf("account %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.AccountSession{}, fmt.Errorf("get account %s: %w", id, err)
	}
	return s, nil
}

// Touch marks id as the most recently used account.
func (a *Accounts) Touch(ctx context.Context, id string, at time.Time) error {
	res, err := a.db.ExecContext(ctx, "UPDATE accounts SET last_active = ? WHERE id = ?", at.UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("touch account %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("account %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (a *Accounts) Delete(ctx context.Context, id string) error {
	if _, err := a.db.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete account %s: %w", id, err)
	}
	return nil
}
