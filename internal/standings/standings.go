// internal/standings/standings.go
package standings

import (
	"sort"

	"github.com/jason-s-yu/trix/internal/models"
)

// Standing is one seat's place on the scoreboard.
type Standing struct {
	PlayerID models.PlayerID `json:"playerId"`
	Name     string          `json:"name"`
	Score    int             `json:"score"`
	Rank     int             `json:"rank"`
	Leader   bool            `json:"leader"`
}

// Rank orders players by score, highest first (Trix rewards points, so
// higher is better). Tied players share a rank and the next rank skips, as
// in 1, 1, 3, 4. Seat order breaks ties in the listing only.
//
// Leader is set on every rank-1 player once at least one round has been
// played; before that everyone sits at zero and nobody leads.
func Rank(players []models.Player, rounds int) []Standing {
	out := make([]Standing, 0, len(players))
	for _, p := range players {
		out = append(out, Standing{PlayerID: p.ID, Name: p.Name, Score: p.Score})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].PlayerID < out[j].PlayerID
	})

	for i := range out {
		if i > 0 && out[i].Score == out[i-1].Score {
			out[i].Rank = out[i-1].Rank
		} else {
			out[i].Rank = i + 1
		}
		out[i].Leader = rounds > 0 && out[i].Rank == 1
	}
	return out
}
