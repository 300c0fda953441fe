package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// AppendAction inserts the action at p.Seq. The game row is locked for the
// whole transaction so concurrent appends to one game run one at a time;
// the primary key on (game_id, seq) backs that up.
func (s *Store) AppendAction(ctx context.Context, p AppendParams) (Action, error) {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Action{}, err
	}
	defer tx.Rollback(ctx)

	var finished bool
	if err := tx.QueryRow(ctx, `SELECT finished FROM games WHERE id = $1 FOR UPDATE`, p.GameID).Scan(&finished); err != nil {
		return Action{}, mapNotFound(err)
	}
	if finished {
		return Action{}, ErrGameFinished
	}
	var count int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(1) FROM actions WHERE game_id = $1`, p.GameID).Scan(&count); err != nil {
		return Action{}, err
	}
	if err := checkSeq(p.Seq, count); err != nil {
		return Action{}, err
	}

	var created pgtype.Timestamptz
	err = tx.QueryRow(ctx, `
INSERT INTO actions (game_id, seq, payload, signature) VALUES ($1, $2, $3, $4)
RETURNING created_at`, p.GameID, p.Seq, p.Payload, p.Signature).Scan(&created)
	if err != nil {
		if isUniqueViolation(err) {
			return Action{}, ErrSeqConflict
		}
		return Action{}, err
	}
	if p.Result != "" {
		if _, err := tx.Exec(ctx, `
UPDATE games SET finished = true, result = $2, finished_at = now() WHERE id = $1`, p.GameID, p.Result); err != nil {
			return Action{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return Action{}, err
	}
	return Action{
		GameID:    p.GameID,
		Seq:       p.Seq,
		Payload:   p.Payload,
		Signature: p.Signature,
		CreatedAt: created.Time,
	}, nil
}

func (s *Store) ListActions(ctx context.Context, gameID int64) ([]Action, error) {
	rows, err := s.Pool.Query(ctx, `
SELECT game_id, seq, payload, signature, created_at
FROM actions WHERE game_id = $1 ORDER BY seq ASC`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Action{}
	for rows.Next() {
		var (
			a       Action
			created pgtype.Timestamptz
		)
		if err := rows.Scan(&a.GameID, &a.Seq, &a.Payload, &a.Signature, &created); err != nil {
			return nil, err
		}
		a.CreatedAt = created.Time
		out = append(out, a)
	}
	return out, rows.Err()
}

func checkSeq(seq, count int64) error {
	switch {
	case seq <= count:
		return fmt.Errorf("%w: slot %d taken, ledger holds %d", ErrSeqConflict, seq, count)
	case seq > count+1:
		return fmt.Errorf("%w: got %d, next is %d", ErrSeqGap, seq, count+1)
	}
	return nil
}
