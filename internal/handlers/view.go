// internal/handlers/view.go
package handlers

import (
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/trix/internal/contract"
	"github.com/jason-s-yu/trix/internal/game"
	"github.com/jason-s-yu/trix/internal/models"
	"github.com/jason-s-yu/trix/internal/standings"
)

// LogEntry is one recorded round as shown in the game log.
type LogEntry struct {
	ID          string                  `json:"id"`
	Contract    string                  `json:"contract"`
	Label       string                  `json:"label"`
	ArabicLabel string                  `json:"arabicLabel"`
	Scores      map[models.PlayerID]int `json:"scores"`
	Timestamp   int64                   `json:"timestamp"`
}

// SessionView is the JSON shape returned for a session.
type SessionView struct {
	ID        uuid.UUID            `json:"id"`
	RoomCode  string               `json:"roomCode"`
	CreatedAt time.Time            `json:"createdAt"`
	Players   []models.Player      `json:"players"`
	Standings []standings.Standing `json:"standings"`
	Rounds    int                  `json:"rounds"`
	Log       []LogEntry           `json:"log"`
	Warning   string               `json:"warning,omitempty"`
}

func newSessionView(sess *game.Session) SessionView {
	snap := sess.Snapshot()
	return SessionView{
		ID:        sess.ID,
		RoomCode:  sess.RoomCode,
		CreatedAt: sess.CreatedAt,
		Players:   snap.Players,
		Standings: standings.Rank(snap.Players, len(snap.History)),
		Rounds:    len(snap.History),
		Log:       gameLog(snap.History),
	}
}

// gameLog lists history newest first with contract labels resolved.
func gameLog(history []models.Transaction) []LogEntry {
	out := make([]LogEntry, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		tx := history[i]
		entry := LogEntry{
			ID:        tx.ID,
			Contract:  tx.ContractType,
			Label:     tx.ContractType,
			Scores:    tx.Scores,
			Timestamp: tx.Timestamp,
		}
		if c, ok := contract.Lookup(contract.Type(tx.ContractType)); ok {
			entry.Label = c.Label
			entry.ArabicLabel = c.ArabicLabel
		}
		out = append(out, entry)
	}
	return out
}
