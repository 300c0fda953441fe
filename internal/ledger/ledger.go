// Package ledger is the per-game append-only action log. It enforces gap-free
// sequencing and the finished lock; payloads and signatures are opaque to it.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"gipf-arena/internal/store"

	"github.com/rs/zerolog/log"
)

type AppendRequest struct {
	GameID    int64
	Sequence  int64
	Payload   string
	Signature string
	// Result finishes the game in the same transaction when non-empty.
	Result string
}

type Ledger struct {
	repo store.Repository
}

func New(repo store.Repository) *Ledger {
	return &Ledger{repo: repo}
}

// Append stores the action iff the game is open and Sequence is exactly one
// past the current action count.
func (l *Ledger) Append(ctx context.Context, req AppendRequest) (store.Action, error) {
	if req.Sequence < 1 {
		metricAppendErrors.Add(1)
		return store.Action{}, fmt.Errorf("%w: sequence %d is not positive", ErrSequence, req.Sequence)
	}
	a, err := l.repo.AppendAction(ctx, store.AppendParams{
		GameID:    req.GameID,
		Seq:       req.Sequence,
		Payload:   req.Payload,
		Signature: req.Signature,
		Result:    req.Result,
	})
	if err != nil {
		err = mapStoreErr(err, req.GameID)
		if errors.Is(err, ErrSequenceConflict) {
			metricAppendConflicts.Add(1)
		} else {
			metricAppendErrors.Add(1)
		}
		log.Debug().Err(err).Int64("game_id", req.GameID).Int64("seq", req.Sequence).Msg("ledger_append_rejected")
		return store.Action{}, err
	}
	metricAppendTotal.Add(1)
	return a, nil
}

// Replay returns every action of the game ordered by sequence.
func (l *Ledger) Replay(ctx context.Context, gameID int64) ([]store.Action, error) {
	if _, err := l.repo.GetGame(ctx, gameID); err != nil {
		return nil, mapStoreErr(err, gameID)
	}
	actions, err := l.repo.ListActions(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("list actions of game %d: %w", gameID, err)
	}
	return actions, nil
}

// Finish marks the game finished with result. Only the first call sets the
// result; later calls return the stored game and false.
func (l *Ledger) Finish(ctx context.Context, gameID int64, result string) (store.Game, bool, error) {
	g, changed, err := l.repo.FinishGame(ctx, gameID, result)
	if err != nil {
		return store.Game{}, false, mapStoreErr(err, gameID)
	}
	if changed {
		log.Info().Int64("game_id", gameID).Str("result", result).Msg("game_finished")
	}
	return g, changed, nil
}

func mapStoreErr(err error, gameID int64) error {
	switch {
	case errors.Is(err, store.ErrSeqConflict):
		return fmt.Errorf("%w: %v", ErrSequenceConflict, err)
	case errors.Is(err, store.ErrSeqGap):
		return fmt.Errorf("%w: %v", ErrSequenceGap, err)
	case errors.Is(err, store.ErrGameFinished):
		return fmt.Errorf("game %d: %w", gameID, ErrGameFinished)
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("game %d: %w", gameID, ErrGameNotFound)
	default:
		return fmt.Errorf("ledger storage: %w", err)
	}
}
