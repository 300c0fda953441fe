package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
)

const accountColumns = `id, name, token_hash, created_at`

func scanAccount(row interface{ Scan(...any) error }) (*Account, error) {
	var (
		a       Account
		created pgtype.Timestamptz
	)
	if err := row.Scan(&a.ID, &a.Name, &a.TokenHash, &created); err != nil {
		return nil, mapNotFound(err)
	}
	a.CreatedAt = created.Time
	return &a, nil
}

func (s *Store) CreateAccount(ctx context.Context, name, token string) (Account, error) {
	row := s.Pool.QueryRow(ctx,
		`INSERT INTO accounts (id, name, token_hash) VALUES ($1, $2, $3) RETURNING `+accountColumns,
		NewID(), name, HashToken(token))
	a, err := scanAccount(row)
	if err != nil {
		if isUniqueViolation(err) {
			return Account{}, fmt.Errorf("account %q: %w", name, ErrDuplicate)
		}
		return Account{}, err
	}
	return *a, nil
}

func (s *Store) GetAccountByID(ctx context.Context, id string) (*Account, error) {
	return scanAccount(s.Pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
}

func (s *Store) GetAccountByName(ctx context.Context, name string) (*Account, error) {
	return scanAccount(s.Pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE name = $1`, name))
}

func (s *Store) GetAccountByToken(ctx context.Context, token string) (*Account, error) {
	return scanAccount(s.Pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE token_hash = $1`, HashToken(token)))
}
