package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// FichaRecord is a persisted character sheet. The document itself is opaque
// to the server and round-tripped as raw JSON.
type FichaRecord struct {
	PlayerID  string
	Ficha     json.RawMessage
	UpdatedAt string
}

type User struct {
	ID           string
	Username     string
	PasswordHash string
	Role         string
	CreatedAt    string
}

type Queries struct {
	getFicha         *sql.Stmt
	upsertFicha      *sql.Stmt
	listFichas       *sql.Stmt
	getPreference    *sql.Stmt
	upsertPreference *sql.Stmt
	getUser          *sql.Stmt
	insertUser       *sql.Stmt
}

func Prepare(ctx context.Context, db *sql.DB) (*Queries, error) {
	q := &Queries{}

	for _, stmt := range []struct {
		target **sql.Stmt
		query  string
	}{
		{&q.getFicha, `SELECT playerId, ficha_json, updated_at FROM fichas WHERE playerId = ?`},
		{&q.upsertFicha, `INSERT INTO fichas (playerId, ficha_json, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(playerId) DO UPDATE SET ficha_json = excluded.ficha_json, updated_at = excluded.updated_at`},
		{&q.listFichas, `SELECT playerId, ficha_json, updated_at FROM fichas ORDER BY playerId`},
		{&q.getPreference, `SELECT value_json FROM preferences WHERE key = ?`},
		{&q.upsertPreference, `INSERT INTO preferences (key, value_json, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value_json = excluded.value_json, updated_at = excluded.updated_at`},
		{&q.getUser, `SELECT id, username, password_hash, role, created_at FROM users WHERE username = ?`},
		{&q.insertUser, `INSERT INTO users (id, username, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?)`},
	} {
		prepared, err := db.PrepareContext(ctx, stmt.query)
		if err != nil {
			return nil, err
		}
		*stmt.target = prepared
	}

	return q, nil
}

func (q *Queries) Close() error {
	return errors.Join(
		q.getFicha.Close(),
		q.upsertFicha.Close(),
		q.listFichas.Close(),
		q.getPreference.Close(),
		q.upsertPreference.Close(),
		q.getUser.Close(),
		q.insertUser.Close(),
	)
}

func now() string {
	return time.Now().In(time.UTC).Format(time.RFC3339)
}

// GetFicha returns the stored character sheet, or nil when none exists.
func (q *Queries) GetFicha(ctx context.Context, playerID string) (*FichaRecord, error) {
	var rec FichaRecord
	err := q.getFicha.QueryRowContext(ctx, playerID).Scan(&rec.PlayerID, &rec.Ficha, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (q *Queries) SaveFicha(ctx context.Context, playerID string, ficha json.RawMessage) error {
	_, err := q.upsertFicha.ExecContext(ctx, playerID, []byte(ficha), now())
	return err
}

func (q *Queries) ListFichas(ctx context.Context) ([]FichaRecord, error) {
	rows, err := q.listFichas.QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []FichaRecord
	for rows.Next() {
		var rec FichaRecord
		if err := rows.Scan(&rec.PlayerID, &rec.Ficha, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetPreference returns the stored value for the key, or nil when none exists.
func (q *Queries) GetPreference(ctx context.Context, key string) (json.RawMessage, error) {
	var value []byte
	err := q.getPreference.QueryRowContext(ctx, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (q *Queries) SavePreference(ctx context.Context, key string, value json.RawMessage) error {
	_, err := q.upsertPreference.ExecContext(ctx, key, []byte(value), now())
	return err
}

// GetUserByUsername returns the user, or nil when the username is unknown.
func (q *Queries) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	err := q.getUser.QueryRowContext(ctx, username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (q *Queries) CreateUser(ctx context.Context, u User) error {
	_, err := q.insertUser.ExecContext(ctx, u.ID, u.Username, u.PasswordHash, u.Role, now())
	return err
}
