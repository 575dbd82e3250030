package whiteelephant

import (
	"encoding/json"
	"fmt"
)

// Action is a closed set of game actions. Dispatching on the concrete type
// keeps the transition switch exhaustive; adding an action means adding a
// variant here and a case there.
type Action interface {
	actionName() string
}

// StartGame marks the game as started
type StartGame struct{}

// LogOpen records the active player opening a new gift
type LogOpen struct {
	GiftDescription string `json:"gift"`
}

// LogSteal records the active player taking a gift from a victim
type LogSteal struct {
	VictimID string `json:"victimId"`
}

// LogKeep records the final-round player keeping their gift, ending the game
type LogKeep struct{}

// Undo removes the most recent history entry
type Undo struct{}

// EndGame force-terminates the game
type EndGame struct{}

func (StartGame) actionName() string { return "start_game" }
func (LogOpen) actionName() string   { return "log_open" }
func (LogSteal) actionName() string  { return "log_steal" }
func (LogKeep) actionName() string   { return "log_keep" }
func (Undo) actionName() string      { return "undo" }
func (EndGame) actionName() string   { return "end_game" }

// ParseAction maps a wire-format action name and payload to an Action.
// Unrecognized names return ok=false; callers treat that as a no-op rather
// than an error.
func ParseAction(name string, payload json.RawMessage) (Action, bool, error) {
	switch name {
	case "start_game":
		return StartGame{}, true, nil
	case "log_open":
		var a LogOpen
		if err := unmarshalPayload(payload, &a); err != nil {
			return nil, true, err
		}
		return a, true, nil
	case "log_steal":
		var a LogSteal
		if err := unmarshalPayload(payload, &a); err != nil {
			return nil, true, err
		}
		return a, true, nil
	case "log_keep":
		return LogKeep{}, true, nil
	case "undo":
		return Undo{}, true, nil
	case "end_game":
		return EndGame{}, true, nil
	default:
		return nil, false, nil
	}
}

func unmarshalPayload(payload json.RawMessage, v interface{}) error {
	if len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return &ValidationError{Message: fmt.Sprintf("malformed action payload: %v", err)}
	}
	return nil
}
