// internal/models/player.go
package models

// PlayerID is a fixed seat index in 0..3. Seats are never renumbered.
type PlayerID int

// SeatCount is the number of players at a Trix table.
const SeatCount = 4

// DefaultPlayerNames are the names given to each seat on a fresh session,
// and the name a seat falls back to when it is renamed to blank.
var DefaultPlayerNames = [SeatCount]string{
	"Ahmed (أحمد)",
	"Sara (سارة)",
	"Khalid (خالد)",
	"Layan (ليان)",
}

// Player is one seat at the table. Score is a cached fold of the ledger
// deltas for this seat.
type Player struct {
	ID    PlayerID `json:"id"`
	Name  string   `json:"name"`
	Score int      `json:"score"`
}

// Valid reports whether id names one of the four seats.
func (id PlayerID) Valid() bool {
	return id >= 0 && id < SeatCount
}

// NewPlayers returns the four default-named, zero-score seats.
func NewPlayers() []Player {
	players := make([]Player, SeatCount)
	for i := range players {
		players[i] = Player{ID: PlayerID(i), Name: DefaultPlayerNames[i]}
	}
	return players
}
