package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

// Preferences is a key/value flag store backed by the preferences table.
// Reads fall back to the supplied default on any error.
type Preferences struct {
	db *sql.DB
}

// NewPreferences returns a store over an opened database.
func NewPreferences(db *sql.DB) *Preferences {
	return &Preferences{db: db}
}

func (p *Preferences) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := p.db.QueryRowContext(ctx,
		"SELECT value FROM preferences WHERE key = ?", key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get preference %s: %w", key, err)
	}
	return value, true, nil
}

func (p *Preferences) set(ctx context.Context, key, value string) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value)
	if err != nil {
		return fmt.Errorf("set preference %s: %w", key, err)
	}
	return nil
}

func (p *Preferences) Bool(key string, def bool) bool {
	v, ok, err := p.get(context.Background(), key)
	if err != nil || !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func (p *Preferences) SetBool(key string, v bool) error {
	return p.set(context.Background(), key, strconv.FormatBool(v))
}

func (p *Preferences) Int(key string, def int) int {
	v, ok, err := p.get(context.Background(), key)
	if err != nil || !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func (p *Preferences) SetInt(key string, v int) error {
	return p.set(context.Background(), key, strconv.Itoa(v))
}

func (p *Preferences) String(key, def string) string {
	v, ok, err := p.get(context.Background(), key)
	if err != nil || !ok {
		return def
	}
	return v
}

func (p *Preferences) SetString(key, v string) error {
	return p.set(context.Background(), key, v)
}
