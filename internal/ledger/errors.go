package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrSequence is the parent of every sequencing failure. Clients treat it
	// as "re-fetch the ledger and retry once", never as corruption.
	ErrSequence = errors.New("sequence_error")
	// ErrSequenceConflict: the slot was taken, usually by a concurrent writer.
	ErrSequenceConflict = fmt.Errorf("sequence_conflict: %w", ErrSequence)
	// ErrSequenceGap: the requested slot is past the next free one.
	ErrSequenceGap = fmt.Errorf("sequence_gap: %w", ErrSequence)

	ErrGameFinished = errors.New("game_finished")
	ErrGameNotFound = errors.New("game_not_found")
)
