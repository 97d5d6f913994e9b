// internal/ledger/ledger.go
package ledger

import "github.com/jason-s-yu/trix/internal/models"

// Ledger is the ordered round history of a session. Only the newest entry
// can be removed, so it doubles as the undo stack.
//
// A Ledger is not safe for concurrent use; the owning session serializes access.
type Ledger struct {
	entries []models.Transaction
}

// New returns a ledger holding copies of the given transactions, oldest first.
func New(entries ...models.Transaction) *Ledger {
	l := &Ledger{entries: make([]models.Transaction, 0, len(entries))}
	for _, tx := range entries {
		l.entries = append(l.entries, tx.Clone())
	}
	return l
}

// Append adds tx as the newest entry.
func (l *Ledger) Append(tx models.Transaction) {
	l.entries = append(l.entries, tx.Clone())
}

// UndoLast removes and returns the newest entry. ok is false when the ledger is empty.
func (l *Ledger) UndoLast() (tx models.Transaction, ok bool) {
	if len(l.entries) == 0 {
		return models.Transaction{}, false
	}
	last := len(l.entries) - 1
	tx = l.entries[last]
	l.entries[last] = models.Transaction{}
	l.entries = l.entries[:last]
	return tx, true
}

// Last returns the newest entry without removing it.
func (l *Ledger) Last() (models.Transaction, bool) {
	if len(l.entries) == 0 {
		return models.Transaction{}, false
	}
	return l.entries[len(l.entries)-1].Clone(), true
}

// Len is the number of recorded rounds.
func (l *Ledger) Len() int { return len(l.entries) }

// Entries returns a copy of the history, oldest first.
func (l *Ledger) Entries() []models.Transaction {
	out := make([]models.Transaction, len(l.entries))
	for i, tx := range l.entries {
		out[i] = tx.Clone()
	}
	return out
}

// Fold recomputes every seat's total from scratch.
func (l *Ledger) Fold() map[models.PlayerID]int {
	totals := make(map[models.PlayerID]int, models.SeatCount)
	for id := models.PlayerID(0); id < models.SeatCount; id++ {
		totals[id] = 0
	}
	for _, tx := range l.entries {
		for id, d := range tx.Scores {
			totals[id] += d
		}
	}
	return totals
}
