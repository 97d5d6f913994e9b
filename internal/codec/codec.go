// internal/codec/codec.go
package codec

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/jason-s-yu/trix/internal/models"
)

// QueryParam is the URL query parameter that carries a share token.
const QueryParam = "data"

var (
	ErrMalformedToken = errors.New("malformed share token")
	ErrMissingPlayers = errors.New("share token has no players")
	ErrMissingHistory = errors.New("share token has no history")
	ErrBadRoster      = errors.New("share token roster is not four seats 0..3")
)

// wire mirrors models.Session with pointers so that absent collections can
// be told apart from empty ones.
type wire struct {
	Players *[]models.Player      `json:"players"`
	History *[]models.Transaction `json:"history"`
}

// Encode serializes s into a token safe to place in a URL query parameter:
// JSON (UTF-8 bytes), then standard base64, then query escaping.
func Encode(s models.Session) (string, error) {
	if s.Players == nil {
		s.Players = []models.Player{}
	}
	if s.History == nil {
		s.History = []models.Transaction{}
	}
	js, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}
	b64 := base64.StdEncoding.EncodeToString(js)
	return url.QueryEscape(b64), nil
}

// Decode reverses Encode. It accepts the token either still query-escaped or
// already unescaped by a URL parser, and repairs '+' characters that a
// transport turned into spaces. On any error the returned session is zero.
func Decode(token string) (models.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.Session{}, fmt.Errorf("%w: empty", ErrMalformedToken)
	}

	unescaped, err := url.QueryUnescape(token)
	if err != nil {
		return models.Session{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	repaired := strings.ReplaceAll(unescaped, " ", "+")

	raw, err := base64.StdEncoding.DecodeString(repaired)
	if err != nil {
		return models.Session{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if !utf8.Valid(raw) {
		return models.Session{}, fmt.Errorf("%w: payload is not UTF-8", ErrMalformedToken)
	}

	var w wire
	if err := json.Unmarshal(raw, &w); err != nil {
		return models.Session{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if w.Players == nil {
		return models.Session{}, ErrMissingPlayers
	}
	if w.History == nil {
		return models.Session{}, ErrMissingHistory
	}

	players, err := seatOrder(*w.Players)
	if err != nil {
		return models.Session{}, err
	}
	for _, tx := range *w.History {
		for id := range tx.Scores {
			if !id.Valid() {
				return models.Session{}, fmt.Errorf("%w: transaction %s scores seat %d", ErrBadRoster, tx.ID, id)
			}
		}
	}

	return models.Session{Players: players, History: *w.History}, nil
}

// seatOrder checks that players hold each seat exactly once and returns them
// indexed by seat.
func seatOrder(players []models.Player) ([]models.Player, error) {
	if len(players) != models.SeatCount {
		return nil, fmt.Errorf("%w: got %d players", ErrBadRoster, len(players))
	}
	out := make([]models.Player, models.SeatCount)
	seen := make([]bool, models.SeatCount)
	for _, p := range players {
		if !p.ID.Valid() || seen[p.ID] {
			return nil, fmt.Errorf("%w: seat %d", ErrBadRoster, p.ID)
		}
		seen[p.ID] = true
		out[p.ID] = p
	}
	return out, nil
}

// ShareURL returns base with the encoded session set as its data parameter.
// Any existing query on base is dropped.
func ShareURL(base string, s models.Session) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", base, err)
	}
	token, err := Encode(s)
	if err != nil {
		return "", err
	}
	u.RawQuery = QueryParam + "=" + token
	u.Fragment = ""
	return u.String(), nil
}

// ExtractToken accepts either a full share link or a bare token and returns
// the token. The result may be query-escaped or not; Decode handles both.
func ExtractToken(linkOrToken string) (string, error) {
	s := strings.TrimSpace(linkOrToken)
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrMalformedToken)
	}
	if !strings.Contains(s, QueryParam+"=") {
		return s, nil
	}

	raw := s
	if i := strings.Index(s, "?"); i >= 0 {
		raw = s[i+1:]
	}
	if i := strings.Index(raw, "#"); i >= 0 {
		raw = raw[:i]
	}
	// Pull the raw value so '+' is not turned into a space by ParseQuery;
	// Decode does the unescaping.
	for _, pair := range strings.Split(raw, "&") {
		if v, ok := strings.CutPrefix(pair, QueryParam+"="); ok {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: no %s parameter", ErrMalformedToken, QueryParam)
}
