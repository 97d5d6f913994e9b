// internal/game/session.go
package game

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/trix/internal/codec"
	"github.com/jason-s-yu/trix/internal/contract"
	"github.com/jason-s-yu/trix/internal/ledger"
	"github.com/jason-s-yu/trix/internal/models"
	"github.com/jason-s-yu/trix/internal/scoring"
)

var (
	ErrUnknownPlayer = errors.New("unknown player seat")
	ErrLedgerDrift   = errors.New("player scores do not match round history")
)

// OnRecordFunc receives a record of every ledger change, e.g. to feed the historian.
type OnRecordFunc func(rec models.RoundRecord)

// Session is one table's scoreboard: four seats and the ledger of recorded
// rounds. Every exported method is an atomic state change; the cached
// player scores always equal the ledger fold when no method is running.
type Session struct {
	ID        uuid.UUID
	RoomCode  string
	CreatedAt time.Time

	// Now and NewID are the clock and transaction id source. Tests may replace them.
	Now   func() time.Time
	NewID func() string

	// OnRecord is invoked after each append, undo and import. If nil, nothing is emitted.
	OnRecord OnRecordFunc

	mu          sync.Mutex
	players     []models.Player
	ledger      *ledger.Ledger
	actionIndex int
}

// NewSession builds a fresh session with default-named, zero-score seats.
func NewSession() *Session {
	id, _ := uuid.NewRandom()
	now := time.Now()
	return &Session{
		ID:        id,
		RoomCode:  RoomCode(now),
		CreatedAt: now,
		Now:       time.Now,
		NewID:     uuid.NewString,
		players:   models.NewPlayers(),
		ledger:    ledger.New(),
	}
}

// NewSessionFromSnapshot builds a session that starts from a shared snapshot.
func NewSessionFromSnapshot(snap models.Session) (*Session, error) {
	s := NewSession()
	if err := s.replace(snap); err != nil {
		return nil, err
	}
	return s, nil
}

// RoomCode derives a short display code from t: the last four base-36
// digits of its Unix seconds, upper-cased.
func RoomCode(t time.Time) string {
	code := strconv.FormatInt(t.Unix(), 36)
	if len(code) > 4 {
		code = code[len(code)-4:]
	}
	return strings.ToUpper(code)
}

// AddRound validates a round, scores it, and records it. Nothing changes if
// the inputs are refused.
func (s *Session) AddRound(t contract.Type, in scoring.Inputs) (models.Transaction, error) {
	if err := scoring.CheckInputs(in); err != nil {
		return models.Transaction{}, err
	}
	deltas, err := scoring.ComputeDeltas(t, in)
	if err != nil {
		return models.Transaction{}, err
	}

	s.mu.Lock()
	tx := models.Transaction{
		ID:           s.NewID(),
		ContractType: string(t),
		Scores:       deltas,
		Timestamp:    s.Now().UnixMilli(),
	}
	s.ledger.Append(tx)
	s.applyDeltas(tx, 1)
	rec := s.nextRecord(models.RecordRoundAdded, tx)
	s.mu.Unlock()

	s.emit(rec)
	return tx, nil
}

// Undo removes the most recent round and reverses its deltas. ok is false,
// with no state change, when no round has been recorded.
func (s *Session) Undo() (tx models.Transaction, ok bool) {
	s.mu.Lock()
	tx, ok = s.ledger.UndoLast()
	if !ok {
		s.mu.Unlock()
		return models.Transaction{}, false
	}
	s.applyDeltas(tx, -1)
	rec := s.nextRecord(models.RecordRoundUndone, tx)
	s.mu.Unlock()

	s.emit(rec)
	return tx, true
}

// RenamePlayer sets a seat's display name. A blank name restores the seat's default.
func (s *Session) RenamePlayer(id models.PlayerID, name string) error {
	if !id.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownPlayer, id)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = models.DefaultPlayerNames[id]
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[id].Name = name
	return nil
}

// ExportLink returns baseURL carrying the encoded session.
func (s *Session) ExportLink(baseURL string) (string, error) {
	return codec.ShareURL(baseURL, s.Snapshot())
}

// ImportFromLink replaces the whole session with the state carried by a
// share link or bare token. On error the session is left untouched.
func (s *Session) ImportFromLink(linkOrToken string) error {
	token, err := codec.ExtractToken(linkOrToken)
	if err != nil {
		return err
	}
	snap, err := codec.Decode(token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if err := s.replace(snap); err != nil {
		s.mu.Unlock()
		return err
	}
	rec := s.nextRecord(models.RecordSessionImported, models.Transaction{})
	s.mu.Unlock()

	s.emit(rec)
	return nil
}

// Snapshot returns a deep copy of the shareable state.
func (s *Session) Snapshot() models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.Session{
		Players: s.copyPlayers(),
		History: s.ledger.Entries(),
	}
}

// Players returns a copy of the four seats.
func (s *Session) Players() []models.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyPlayers()
}

// Rounds is the number of recorded rounds.
func (s *Session) Rounds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Len()
}

// CheckInvariant recomputes the ledger fold and compares it with the cached scores.
func (s *Session) CheckInvariant() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return checkFold(s.players, s.ledger)
}

// replace swaps in snap wholesale once it is known to be consistent.
// Callers other than constructors must hold s.mu.
func (s *Session) replace(snap models.Session) error {
	if len(snap.Players) != models.SeatCount {
		return fmt.Errorf("%w: got %d players", ErrUnknownPlayer, len(snap.Players))
	}
	players := make([]models.Player, models.SeatCount)
	for i, p := range snap.Players {
		if p.ID != models.PlayerID(i) {
			return fmt.Errorf("%w: seat %d holds id %d", ErrUnknownPlayer, i, p.ID)
		}
		players[i] = p
	}
	l := ledger.New(snap.History...)
	if err := checkFold(players, l); err != nil {
		return err
	}
	s.players = players
	s.ledger = l
	return nil
}

func (s *Session) applyDeltas(tx models.Transaction, sign int) {
	for i := range s.players {
		s.players[i].Score += sign * tx.Delta(s.players[i].ID)
	}
}

func (s *Session) copyPlayers() []models.Player {
	out := make([]models.Player, len(s.players))
	copy(out, s.players)
	return out
}

// nextRecord must be called with s.mu held.
func (s *Session) nextRecord(kind models.RoundRecordKind, tx models.Transaction) models.RoundRecord {
	s.actionIndex++
	return models.RoundRecord{
		SessionID:   s.ID,
		ActionIndex: s.actionIndex,
		Kind:        kind,
		Transaction: tx.Clone(),
		Timestamp:   s.Now().UnixMilli(),
	}
}

func (s *Session) emit(rec models.RoundRecord) {
	if s.OnRecord != nil {
		s.OnRecord(rec)
	}
}

func checkFold(players []models.Player, l *ledger.Ledger) error {
	totals := l.Fold()
	for _, p := range players {
		if totals[p.ID] != p.Score {
			return fmt.Errorf("%w: seat %d has %d, history sums to %d", ErrLedgerDrift, p.ID, p.Score, totals[p.ID])
		}
	}
	return nil
}
