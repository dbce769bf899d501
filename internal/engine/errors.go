package engine

import (
	"fmt"

	"github.com/abhasgawali/neon-domination/internal/domain/rules"
)

// Rejection is an expected, player-facing refusal. Message is shown to the
// client verbatim; Code is stable for programmatic use.
type Rejection struct {
	Code    string
	Message string
}

func (r *Rejection) Error() string {
	return r.Message
}

var (
	ErrRoomFull         = &Rejection{Code: "room_full", Message: "Room is full!"}
	ErrRoomUnavailable  = &Rejection{Code: "room_unavailable", Message: "Could not find a room, try again."}
	ErrMatchEnded       = &Rejection{Code: "match_ended", Message: "That match has already ended."}
	ErrInvalidTile      = &Rejection{Code: "invalid_tile", Message: "Invalid tile!"}
	ErrUnknownAction    = &Rejection{Code: "unknown_action", Message: "Unknown action!"}
	ErrNotEnoughEnergy  = &Rejection{Code: "not_enough_energy", Message: "Not enough energy!"}
	ErrAlreadyOwned     = &Rejection{Code: "already_owned", Message: "You already own this tile!"}
	ErrNotAdjacent      = &Rejection{Code: "not_adjacent", Message: "Must be adjacent to your territory!"}
	ErrShielded         = &Rejection{Code: "shielded", Message: "Tile is shielded!"}
	ErrTrapNotOwned     = &Rejection{Code: "trap_not_owned", Message: "You can only trap your own tiles!"}
	ErrAlreadyTrapped   = &Rejection{Code: "already_trapped", Message: "This tile is already trapped!"}
	ErrTrapUnaffordable = &Rejection{Code: "trap_unaffordable", Message: fmt.Sprintf("Not enough energy! (Need %d total: %d attack + %d trap penalty)", rules.DetonationCost(), rules.CaptureCost, rules.TrapPenalty)}
)
