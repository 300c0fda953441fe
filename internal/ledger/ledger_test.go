package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"gipf-arena/internal/store"
	"gipf-arena/internal/testutil"
)

func newGame(t *testing.T, repo store.Repository) store.Game {
	t.Helper()
	g, err := repo.CreateGame(context.Background(), store.NewGame{Type: "basic", WhiteToken: "w", BlackToken: "b"})
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	return g
}

func TestAppendAndReplay(t *testing.T) {
	repo := store.NewMemory()
	l := New(repo)
	ctx := context.Background()
	g := newGame(t, repo)

	payloads := []string{"a1-b2", "i5-h5", "a5-b5"}
	for i, p := range payloads {
		seq := int64(i + 1)
		if _, err := l.Append(ctx, AppendRequest{GameID: g.ID, Sequence: seq, Payload: p, Signature: Sign(seq, p, "w")}); err != nil {
			t.Fatalf("append %d: %v", seq, err)
		}
	}
	actions, err := l.Replay(ctx, g.ID)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if len(actions) != len(payloads) {
		t.Fatalf("expected %d actions, got %d", len(payloads), len(actions))
	}
	for i, a := range actions {
		if a.Seq != int64(i+1) || a.Payload != payloads[i] {
			t.Fatalf("action %d = %+v", i, a)
		}
	}
	if _, err := l.Replay(ctx, 4242); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
}

func TestAppendSequenceErrors(t *testing.T) {
	repo := store.NewMemory()
	l := New(repo)
	ctx := context.Background()
	g := newGame(t, repo)

	for i := int64(1); i <= 3; i++ {
		if _, err := l.Append(ctx, AppendRequest{GameID: g.ID, Sequence: i, Payload: "p"}); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	cases := []struct {
		seq  int64
		want error
	}{
		{5, ErrSequenceGap},
		{3, ErrSequenceConflict},
		{1, ErrSequenceConflict},
		{0, ErrSequence},
		{-1, ErrSequence},
	}
	for _, tc := range cases {
		_, err := l.Append(ctx, AppendRequest{GameID: g.ID, Sequence: tc.seq, Payload: "p"})
		if !errors.Is(err, tc.want) || !errors.Is(err, ErrSequence) {
			t.Fatalf("seq %d: err = %v, want %v", tc.seq, err, tc.want)
		}
	}
	actions, _ := l.Replay(ctx, g.ID)
	if len(actions) != 3 {
		t.Fatalf("ledger should still hold 3 actions, got %d", len(actions))
	}
	if _, err := l.Append(ctx, AppendRequest{GameID: 777, Sequence: 1}); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
}

func TestFinishedGameRejectsAppends(t *testing.T) {
	repo := store.NewMemory()
	l := New(repo)
	ctx := context.Background()
	g := newGame(t, repo)

	if _, err := l.Append(ctx, AppendRequest{GameID: g.ID, Sequence: 1, Payload: "a1-b2", Result: "white wins"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	for seq := int64(1); seq <= 3; seq++ {
		if _, err := l.Append(ctx, AppendRequest{GameID: g.ID, Sequence: seq, Payload: "p"}); !errors.Is(err, ErrGameFinished) {
			t.Fatalf("seq %d after finish: err = %v", seq, err)
		}
	}
	got, changed, err := l.Finish(ctx, g.ID, "black wins")
	if err != nil || changed || got.Result != "white wins" {
		t.Fatalf("finish after result: %+v changed=%v err=%v", got, changed, err)
	}
}

func TestFinishIsIdempotent(t *testing.T) {
	repo := store.NewMemory()
	l := New(repo)
	ctx := context.Background()
	g := newGame(t, repo)

	if _, changed, err := l.Finish(ctx, g.ID, "rejected by white: bad signature"); err != nil || !changed {
		t.Fatalf("first finish changed=%v err=%v", changed, err)
	}
	got, changed, err := l.Finish(ctx, g.ID, "other")
	if err != nil || changed || got.Result != "rejected by white: bad signature" {
		t.Fatalf("second finish: %+v changed=%v err=%v", got, changed, err)
	}
	if _, _, err := l.Finish(ctx, 999, "x"); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
}

func testConcurrentSlots(t *testing.T, repo store.Repository) {
	l := New(repo)
	ctx := context.Background()
	g := newGame(t, repo)

	const (
		slots   = 5
		writers = 6
	)
	for seq := int64(1); seq <= slots; seq++ {
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
		)
		for w := 0; w < writers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := l.Append(ctx, AppendRequest{GameID: g.ID, Sequence: seq, Payload: "p"})
				if err == nil {
					mu.Lock()
					wins++
					mu.Unlock()
					return
				}
				if !errors.Is(err, ErrSequenceConflict) {
					t.Errorf("seq %d: unexpected error %v", seq, err)
				}
			}()
		}
		wg.Wait()
		if wins != 1 {
			t.Fatalf("seq %d: %d winners", seq, wins)
		}
	}
	actions, err := l.Replay(ctx, g.ID)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	for i, a := range actions {
		if a.Seq != int64(i+1) {
			t.Fatalf("gap at %d: %+v", i, a)
		}
	}
	if len(actions) != slots {
		t.Fatalf("expected %d actions, got %d", slots, len(actions))
	}
}

func TestConcurrentAppendsMemory(t *testing.T) {
	testConcurrentSlots(t, store.NewMemory())
}

func TestConcurrentAppendsPostgres(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	testConcurrentSlots(t, st)
}

func TestRetryingWritersProduceContiguousLedger(t *testing.T) {
	repo := store.NewMemory()
	l := New(repo)
	ctx := context.Background()
	g := newGame(t, repo)

	const (
		writers   = 4
		perWriter = 10
	)
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for done := 0; done < perWriter; {
				actions, err := l.Replay(ctx, g.ID)
				if err != nil {
					t.Errorf("replay: %v", err)
					return
				}
				_, err = l.Append(ctx, AppendRequest{GameID: g.ID, Sequence: int64(len(actions) + 1), Payload: "p"})
				switch {
				case err == nil:
					done++
				case errors.Is(err, ErrSequenceConflict):
				default:
					t.Errorf("append: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
	actions, _ := l.Replay(ctx, g.ID)
	if len(actions) != writers*perWriter {
		t.Fatalf("expected %d actions, got %d", writers*perWriter, len(actions))
	}
	for i, a := range actions {
		if a.Seq != int64(i+1) {
			t.Fatalf("gap at %d: %+v", i, a)
		}
	}
}
