package game

import "errors"

var ErrEmptyRoster = errors.New("roster is empty")

// Position locates a turn within the rotation: Slot is the 1-based roster
// position that is drawing, Round counts full cycles through the roster.
type Position struct {
	Slot  int
	Round int
}

// TurnPosition maps a turn counter onto the current roster. It is
// recomputed from the live roster size on every call, so a join or leave
// mid-game shifts which player a given counter lands on; that reshuffle is
// accepted behavior, not something callers should try to compensate for.
func TurnPosition(turnCounter, rosterSize int) (Position, error) {
	if rosterSize < 1 {
		return Position{}, ErrEmptyRoster
	}
	if turnCounter < 1 {
		turnCounter = 1
	}
	return Position{
		Slot:  (turnCounter-1)%rosterSize + 1,
		Round: (turnCounter + rosterSize - 1) / rosterSize,
	}, nil
}

// PlayerAtSlot returns the player occupying a 1-based turn order slot.
func PlayerAtSlot(players []Player, slot int) (Player, bool) {
	for _, player := range players {
		if player.TurnOrder == slot {
			return player, true
		}
	}
	return Player{}, false
}
