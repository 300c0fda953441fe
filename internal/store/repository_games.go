package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
)

const gameSelect = `
SELECT g.id, g.type, g.white_token, g.black_token, g.viewer_token,
       g.white_account_id, g.black_account_id,
       COALESCE(wa.name, ''), COALESCE(ba.name, ''),
       g.finished, g.result, g.created_at, g.finished_at
FROM games g
LEFT JOIN accounts wa ON wa.id = g.white_account_id
LEFT JOIN accounts ba ON ba.id = g.black_account_id`

func scanGame(row interface{ Scan(...any) error }) (*Game, error) {
	var (
		g                   Game
		whiteID, blackID    pgtype.Text
		created, finishedAt pgtype.Timestamptz
	)
	err := row.Scan(&g.ID, &g.Type, &g.WhiteToken, &g.BlackToken, &g.ViewerToken,
		&whiteID, &blackID, &g.WhiteName, &g.BlackName,
		&g.Finished, &g.Result, &created, &finishedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	g.WhiteAccountID = textVal(whiteID)
	g.BlackAccountID = textVal(blackID)
	g.CreatedAt = created.Time
	g.FinishedAt = timePtrVal(finishedAt)
	return &g, nil
}

func (s *Store) CreateGame(ctx context.Context, p NewGame) (Game, error) {
	var id int64
	err := s.Pool.QueryRow(ctx, `
INSERT INTO games (type, white_token, black_token, viewer_token, white_account_id, black_account_id)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`,
		p.Type, p.WhiteToken, p.BlackToken, p.ViewerToken,
		textParam(p.WhiteAccountID), textParam(p.BlackAccountID),
	).Scan(&id)
	if err != nil {
		if hasPgCode(err, foreignKeyViolation) {
			return Game{}, fmt.Errorf("linked account: %w", ErrNotFound)
		}
		return Game{}, err
	}
	g, err := s.GetGame(ctx, id)
	if err != nil {
		return Game{}, err
	}
	return *g, nil
}

func (s *Store) GetGame(ctx context.Context, id int64) (*Game, error) {
	return scanGame(s.Pool.QueryRow(ctx, gameSelect+` WHERE g.id = $1`, id))
}

func (s *Store) ListGames(ctx context.Context, limit, offset int) ([]Game, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, gameSelect+` ORDER BY g.id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Game{}
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

func (s *Store) FinishGame(ctx context.Context, id int64, result string) (Game, bool, error) {
	tag, err := s.Pool.Exec(ctx, `
UPDATE games SET finished = true, result = $2, finished_at = now()
WHERE id = $1 AND NOT finished`, id, result)
	if err != nil {
		return Game{}, false, err
	}
	g, err := s.GetGame(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Game{}, false, ErrNotFound
		}
		return Game{}, false, err
	}
	return *g, tag.RowsAffected() == 1, nil
}
