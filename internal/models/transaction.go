// internal/models/transaction.go
package models

// Transaction is one recorded round. It is never mutated after creation.
//
// The JSON field names are shared with browser clients that build and read
// share links, so they must not change.
type Transaction struct {
	ID           string           `json:"id"`
	ContractType string           `json:"gameType"`
	Scores       map[PlayerID]int `json:"scores"`
	Timestamp    int64            `json:"timestamp"` // epoch millis
}

// Delta returns the signed score change for the given seat (0 if absent).
func (t Transaction) Delta(id PlayerID) int {
	return t.Scores[id]
}

// Clone returns a copy that does not share the Scores map.
func (t Transaction) Clone() Transaction {
	c := t
	c.Scores = make(map[PlayerID]int, len(t.Scores))
	for id, d := range t.Scores {
		c.Scores[id] = d
	}
	return c
}
