package whiteelephant

import (
	"errors"
	"reflect"
	"testing"

	"partyplan/internal/models"
)

// newTestGame builds a started game with the given players; the turn order
// matches the order of the names.
func newTestGame(names ...string) *models.WhiteElephantGame {
	game := &models.WhiteElephantGame{
		ID:        "game-1",
		IsStarted: true,
		Gifts:     []models.Gift{},
		History:   []string{"The game has started!"},
	}
	for i, name := range names {
		id := string(rune('a' + i))
		game.Participants = append(game.Participants, models.Participant{ID: id, Name: name})
		game.TurnOrder = append(game.TurnOrder, id)
	}
	return game
}

func mustTransition(t *testing.T, game *models.WhiteElephantGame, action Action) *models.WhiteElephantGame {
	t.Helper()
	next, err := Transition(game, action)
	if err != nil {
		t.Fatalf("Transition(%T) failed: %v", action, err)
	}
	return next
}

func TestStartGame(t *testing.T) {
	game := newTestGame("Alice", "Bob")
	game.IsStarted = false
	game.History = []string{}

	next := mustTransition(t, game, StartGame{})
	if !next.IsStarted {
		t.Error("expected game to be started")
	}
	if len(next.History) != 1 {
		t.Errorf("expected 1 history entry, got %d", len(next.History))
	}

	// Starting twice is a no-op, not an error
	again := mustTransition(t, next, StartGame{})
	if len(again.History) != 1 {
		t.Errorf("second start appended history: got %d entries", len(again.History))
	}
}

func TestLogOpenAddsGiftAndAdvancesTurn(t *testing.T) {
	game := newTestGame("Alice", "Bob", "Carol")

	next := mustTransition(t, game, LogOpen{GiftDescription: "Candle"})

	if len(next.Gifts) != len(game.Gifts)+1 {
		t.Fatalf("expected gift count to increase by one, got %d", len(next.Gifts))
	}
	if len(next.History) != len(game.History)+1 {
		t.Fatalf("expected history to grow by exactly one, got %d", len(next.History))
	}

	gift := next.Gifts[0]
	if gift.Description != "Candle" {
		t.Errorf("gift description = %q, want %q", gift.Description, "Candle")
	}
	if gift.HolderID != "a" {
		t.Errorf("gift holder = %q, want %q", gift.HolderID, "a")
	}
	if gift.ID == "" {
		t.Error("gift should carry a generated identifier")
	}
	if next.CurrentPlayerIndex != 1 {
		t.Errorf("currentPlayerIndex = %d, want 1", next.CurrentPlayerIndex)
	}
}

func TestLogOpenEmptyDescriptionUsesPlaceholder(t *testing.T) {
	game := newTestGame("Alice", "Bob")

	next := mustTransition(t, game, LogOpen{})
	if next.Gifts[0].Description != DefaultGiftDescription {
		t.Errorf("description = %q, want placeholder", next.Gifts[0].Description)
	}
}

func TestLogStealMovesGift(t *testing.T) {
	game := newTestGame("Alice", "Bob", "Carol")
	game = mustTransition(t, game, LogOpen{GiftDescription: "Candle"}) // Alice
	game = mustTransition(t, game, LogOpen{GiftDescription: "Mug"})    // Bob

	// Carol steals the candle from Alice
	next := mustTransition(t, game, LogSteal{VictimID: "a"})

	if len(next.Gifts) != len(game.Gifts) {
		t.Fatalf("steal changed gift count: %d -> %d", len(game.Gifts), len(next.Gifts))
	}

	candle := next.GiftHeldBy("c")
	if candle == nil || candle.Description != "Candle" {
		t.Fatalf("expected Carol to hold the candle, got %+v", candle)
	}
	if candle.StealCount != 1 {
		t.Errorf("stealCount = %d, want 1", candle.StealCount)
	}
	if next.GiftHeldBy("a") != nil {
		t.Error("Alice should no longer hold a gift")
	}
	if next.DisplacedPlayerID != "a" {
		t.Errorf("displacedPlayerId = %q, want %q", next.DisplacedPlayerID, "a")
	}
	if next.LastThiefID != "c" {
		t.Errorf("lastThiefId = %q, want %q", next.LastThiefID, "c")
	}
	if next.CurrentPlayerIndex != game.CurrentPlayerIndex {
		t.Error("a steal must not advance the turn index")
	}
}

func TestLogStealRejections(t *testing.T) {
	setup := func() *models.WhiteElephantGame {
		game := newTestGame("Alice", "Bob", "Carol")
		game = mustTransition(t, game, LogOpen{GiftDescription: "Candle"}) // Alice
		return game // Bob's turn
	}

	tests := []struct {
		name   string
		action LogSteal
	}{
		{name: "missing victim", action: LogSteal{}},
		{name: "unknown victim", action: LogSteal{VictimID: "zz"}},
		{name: "victim has no gift", action: LogSteal{VictimID: "c"}},
		{name: "stealing from self", action: LogSteal{VictimID: "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			game := setup()
			_, err := Transition(game, tt.action)

			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %T: %v", err, err)
			}
		})
	}
}

func TestStealLimitBlocksOutsideFinalRound(t *testing.T) {
	game := newTestGame("Alice", "Bob", "Carol")
	game.Rules = models.Rules{StealLimit: 1}

	game = mustTransition(t, game, LogOpen{GiftDescription: "Candle"}) // Alice
	game = mustTransition(t, game, LogSteal{VictimID: "a"})            // Bob steals, count 1
	game = mustTransition(t, game, LogOpen{GiftDescription: "Mug"})    // Alice (displaced) opens

	// Carol may not steal the candle again
	if _, err := Transition(game, LogSteal{VictimID: "b"}); err == nil {
		t.Fatal("expected steal-limit rejection")
	}

	// The mug has not been stolen yet and remains fair game
	if _, err := Transition(game, LogSteal{VictimID: "a"}); err != nil {
		t.Fatalf("unexpected rejection stealing an under-limit gift: %v", err)
	}
}

func TestStealLimitWaivedInFinalRound(t *testing.T) {
	game := newTestGame("Alice", "Bob")
	game.Rules = models.Rules{StealLimit: 1}
	game.FinalRound = true
	game.CurrentPlayerIndex = 1
	game.Gifts = []models.Gift{
		{ID: "g1", Description: "Candle", StealCount: 1, HolderID: "a"},
	}

	next, err := Transition(game, LogSteal{VictimID: "a"})
	if err != nil {
		t.Fatalf("final-round steal of an at-limit gift should be allowed: %v", err)
	}
	if next.GiftHeldBy("b") == nil {
		t.Error("expected the gift to move to the final-round player")
	}
}

func TestNoStealBackBlocksImmediateRetaliation(t *testing.T) {
	game := newTestGame("Alice", "Bob")
	game.Rules = models.Rules{NoStealBack: true}

	game = mustTransition(t, game, LogOpen{GiftDescription: "Candle"}) // Alice
	game = mustTransition(t, game, LogSteal{VictimID: "a"})            // Bob steals

	// Alice is displaced; stealing straight back from Bob is blocked
	if _, err := Transition(game, LogSteal{VictimID: "b"}); err == nil {
		t.Fatal("expected no-steal-back rejection")
	}

	// Without the rule the same steal-back is fine
	game.Rules.NoStealBack = false
	if _, err := Transition(game, LogSteal{VictimID: "b"}); err != nil {
		t.Fatalf("steal-back should be allowed without the rule: %v", err)
	}
}

func TestDisplacedPlayerActsBeforeTurnOrder(t *testing.T) {
	game := newTestGame("Alice", "Bob", "Carol")
	game = mustTransition(t, game, LogOpen{GiftDescription: "Candle"}) // Alice
	game = mustTransition(t, game, LogSteal{VictimID: "a"})            // Bob steals

	if got := game.ActivePlayerID(); got != "a" {
		t.Fatalf("active player = %q, want displaced %q", got, "a")
	}

	// The displaced player's open resolves the chain and resumes turn order
	game = mustTransition(t, game, LogOpen{GiftDescription: "Socks"})
	if game.DisplacedPlayerID != "" {
		t.Error("displacedPlayerId should be cleared after the open")
	}
	if game.CurrentPlayerIndex != 2 {
		t.Errorf("currentPlayerIndex = %d, want 2", game.CurrentPlayerIndex)
	}
}

func TestUndoProtectsFirstHistoryEntry(t *testing.T) {
	game := newTestGame("Alice", "Bob")
	game = mustTransition(t, game, LogOpen{GiftDescription: "Candle"})

	next := mustTransition(t, game, Undo{})
	if len(next.History) != 1 {
		t.Fatalf("expected 1 history entry after undo, got %d", len(next.History))
	}

	// Undoing again never drops below one entry
	next = mustTransition(t, next, Undo{})
	if len(next.History) != 1 {
		t.Fatalf("undo reduced history below 1: %d", len(next.History))
	}
}

func TestFinishedGameIgnoresPlayActions(t *testing.T) {
	game := newTestGame("Alice", "Bob")
	game.IsFinished = true
	game.Gifts = []models.Gift{{ID: "g1", Description: "Candle", HolderID: "a"}}

	actions := []Action{
		LogOpen{GiftDescription: "Mug"},
		LogSteal{VictimID: "a"},
		LogKeep{},
		EndGame{},
	}

	for _, action := range actions {
		next, err := Transition(game, action)
		if err != nil {
			t.Fatalf("Transition(%T) on finished game errored: %v", action, err)
		}
		if !reflect.DeepEqual(next, game) {
			t.Errorf("Transition(%T) mutated a finished game", action)
		}
	}
}

func TestEndGame(t *testing.T) {
	game := newTestGame("Alice", "Bob")

	next := mustTransition(t, game, EndGame{})
	if !next.IsFinished {
		t.Error("expected the game to be finished")
	}
	if len(next.History) != len(game.History)+1 {
		t.Errorf("expected a closing history entry")
	}

	// Idempotent: ending again changes nothing
	again := mustTransition(t, next, EndGame{})
	if !reflect.DeepEqual(again, next) {
		t.Error("second end_game changed the document")
	}
}

func TestLogKeepRequiresFinalRound(t *testing.T) {
	game := newTestGame("Alice", "Bob")

	if _, err := Transition(game, LogKeep{}); err == nil {
		t.Fatal("keep outside the final round should be rejected")
	}

	game.FinalRound = true
	next := mustTransition(t, game, LogKeep{})
	if !next.IsFinished {
		t.Error("keep in the final round should end the game")
	}
}

func TestTransitionDoesNotMutateInput(t *testing.T) {
	game := newTestGame("Alice", "Bob", "Carol")
	snapshot := game.Clone()

	if _, err := Transition(game, LogOpen{GiftDescription: "Candle"}); err != nil {
		t.Fatalf("transition failed: %v", err)
	}

	if !reflect.DeepEqual(game, snapshot) {
		t.Error("Transition mutated its input document")
	}
}

// TestFullGameScenario walks the canonical three-player game end to end.
func TestFullGameScenario(t *testing.T) {
	game := newTestGame("A", "B", "C")

	// A opens "Candle"
	game = mustTransition(t, game, LogOpen{GiftDescription: "Candle"})
	if game.CurrentPlayerIndex != 1 {
		t.Fatalf("after A opens: index = %d, want 1", game.CurrentPlayerIndex)
	}
	if game.GiftHeldBy("a") == nil {
		t.Fatal("after A opens: A should hold the candle")
	}

	// B opens "Mug"
	game = mustTransition(t, game, LogOpen{GiftDescription: "Mug"})
	if game.CurrentPlayerIndex != 2 {
		t.Fatalf("after B opens: index = %d, want 2", game.CurrentPlayerIndex)
	}

	// C steals "Candle" from A
	game = mustTransition(t, game, LogSteal{VictimID: "a"})
	if game.GiftHeldBy("c") == nil || game.GiftHeldBy("c").Description != "Candle" {
		t.Fatal("after steal: C should hold the candle")
	}
	if game.GiftHeldBy("b") == nil || game.GiftHeldBy("b").Description != "Mug" {
		t.Fatal("after steal: B should still hold the mug")
	}
	if game.DisplacedPlayerID != "a" {
		t.Fatalf("after steal: displaced = %q, want a", game.DisplacedPlayerID)
	}
	if got := game.GiftHeldBy("c").StealCount; got != 1 {
		t.Fatalf("after steal: candle stealCount = %d, want 1", got)
	}

	// A (displaced) opens "Socks"; the index was already last, so the
	// final round begins
	game = mustTransition(t, game, LogOpen{GiftDescription: "Socks"})
	if game.DisplacedPlayerID != "" {
		t.Fatal("displaced should be cleared after the open")
	}
	if !game.FinalRound {
		t.Fatal("expected the final round to begin")
	}
	if len(game.Gifts) != 3 {
		t.Fatalf("expected 3 opened gifts, got %d", len(game.Gifts))
	}

	// Keep ends the game
	game = mustTransition(t, game, LogKeep{})
	if !game.IsFinished {
		t.Fatal("expected the game to be finished")
	}
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		name       string
		action     string
		payload    string
		recognized bool
		wantErr    bool
	}{
		{name: "start", action: "start_game", recognized: true},
		{name: "open with gift", action: "log_open", payload: `{"gift":"Candle"}`, recognized: true},
		{name: "steal", action: "log_steal", payload: `{"victimId":"a"}`, recognized: true},
		{name: "keep", action: "log_keep", recognized: true},
		{name: "undo", action: "undo", recognized: true},
		{name: "end", action: "end_game", recognized: true},
		{name: "unknown", action: "do_a_flip", recognized: false},
		{name: "malformed payload", action: "log_steal", payload: `{"victimId":42}`, recognized: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payload []byte
			if tt.payload != "" {
				payload = []byte(tt.payload)
			}

			action, recognized, err := ParseAction(tt.action, payload)
			if recognized != tt.recognized {
				t.Errorf("recognized = %v, want %v", recognized, tt.recognized)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.recognized && !tt.wantErr && action == nil {
				t.Error("expected a parsed action")
			}
		})
	}
}
