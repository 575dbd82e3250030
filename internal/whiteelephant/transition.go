package whiteelephant

import (
	"fmt"

	"github.com/google/uuid"

	"partyplan/internal/models"
)

// DefaultGiftDescription stands in when the organizer logs an open without
// typing what the gift was.
const DefaultGiftDescription = "a mystery gift"

// ValidationError reports an action that the current game state does not
// permit. The document is never mutated when one is returned.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Transition applies an action to a game document and returns the resulting
// document. The input is never mutated: the result is a fresh copy, and on
// error the game is unchanged. Once a game is finished, open/steal/keep
// become no-ops and end_game is idempotent.
func Transition(game *models.WhiteElephantGame, action Action) (*models.WhiteElephantGame, error) {
	next := game.Clone()

	switch a := action.(type) {
	case StartGame:
		if next.IsStarted {
			return next, nil
		}
		next.IsStarted = true
		next.History = append(next.History, "The game has started!")
		return next, nil

	case LogOpen:
		if next.IsFinished {
			return next, nil
		}
		return applyOpen(next, a)

	case LogSteal:
		if next.IsFinished {
			return next, nil
		}
		return applySteal(next, a)

	case LogKeep:
		if next.IsFinished {
			return next, nil
		}
		if !next.FinalRound {
			return nil, validationf("keep is only available in the final round")
		}
		next.IsFinished = true
		next.History = append(next.History, "The game has ended. Happy holidays!")
		return next, nil

	case Undo:
		// History-only undo: gift and turn state are not reversed. The first
		// history entry is protected.
		if len(next.History) > 1 {
			next.History = next.History[:len(next.History)-1]
		}
		return next, nil

	case EndGame:
		if next.IsFinished {
			return next, nil
		}
		next.IsFinished = true
		next.History = append(next.History, "The organizer has ended the game.")
		return next, nil

	default:
		return nil, validationf("unsupported action type %T", action)
	}
}

func applyOpen(g *models.WhiteElephantGame, a LogOpen) (*models.WhiteElephantGame, error) {
	activeID := g.ActivePlayerID()
	active := g.ParticipantByID(activeID)
	if active == nil {
		return nil, validationf("no active player to open a gift")
	}
	if g.GiftHeldBy(activeID) != nil {
		return nil, validationf("%s already holds a gift", active.Name)
	}

	description := a.GiftDescription
	if description == "" {
		description = DefaultGiftDescription
	}

	g.Gifts = append(g.Gifts, models.Gift{
		ID:          uuid.New().String(),
		Description: description,
		HolderID:    activeID,
	})
	g.History = append(g.History, fmt.Sprintf("%s opened [%s]!", active.Name, description))

	// The open resolves any steal chain; normal turn order resumes.
	g.DisplacedPlayerID = ""
	g.LastThiefID = ""
	advanceTurn(g)

	return g, nil
}

func applySteal(g *models.WhiteElephantGame, a LogSteal) (*models.WhiteElephantGame, error) {
	if a.VictimID == "" {
		return nil, validationf("a steal requires a victim")
	}

	activeID := g.ActivePlayerID()
	active := g.ParticipantByID(activeID)
	if active == nil {
		return nil, validationf("no active player to steal")
	}

	victim := g.ParticipantByID(a.VictimID)
	if victim == nil {
		return nil, validationf("unknown victim")
	}
	if victim.ID == activeID {
		return nil, validationf("%s cannot steal their own gift", active.Name)
	}

	gift := g.GiftHeldBy(victim.ID)
	if gift == nil {
		return nil, validationf("%s has no gift to steal", victim.Name)
	}

	if !g.FinalRound && g.Rules.StealLimit > 0 && gift.StealCount >= g.Rules.StealLimit {
		return nil, validationf("[%s] has hit the steal limit", gift.Description)
	}

	if g.Rules.NoStealBack && g.DisplacedPlayerID != "" && victim.ID == g.LastThiefID {
		return nil, validationf("no steal-backs: %s just took that gift", victim.Name)
	}

	gift.HolderID = activeID
	gift.StealCount++
	g.DisplacedPlayerID = victim.ID
	g.LastThiefID = activeID
	g.History = append(g.History, fmt.Sprintf("%s stole [%s] from %s!", active.Name, gift.Description, victim.Name))

	// The displaced victim acts next; the turn index does not advance.
	return g, nil
}

// advanceTurn moves to the next player. The last index flips the game into
// the final round instead of advancing past the end; acting again from the
// last index finishes the game.
func advanceTurn(g *models.WhiteElephantGame) {
	last := len(g.TurnOrder) - 1
	if g.CurrentPlayerIndex < last {
		g.CurrentPlayerIndex++
		return
	}
	if g.FinalRound {
		g.IsFinished = true
		return
	}
	g.FinalRound = true
}
