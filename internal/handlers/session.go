// internal/handlers/session.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jason-s-yu/trix/internal/codec"
	"github.com/jason-s-yu/trix/internal/contract"
	"github.com/jason-s-yu/trix/internal/game"
	"github.com/jason-s-yu/trix/internal/models"
	"github.com/jason-s-yu/trix/internal/scoring"
	"github.com/sirupsen/logrus"
)

type createSessionRequest struct {
	Link string `json:"link"`
	Data string `json:"data"`
}

type roundRequest struct {
	Contract contract.Type `json:"contract"`
	Inputs   []int         `json:"inputs"`
}

var errInputCount = fmt.Errorf("inputs must hold exactly %d values, one per seat", models.SeatCount)

// seatInputs requires one value per seat; JSON arrays would otherwise be
// silently truncated or zero-filled.
func (req roundRequest) seatInputs() (scoring.Inputs, error) {
	var in scoring.Inputs
	if len(req.Inputs) != models.SeatCount {
		return in, errInputCount
	}
	copy(in[:], req.Inputs)
	return in, nil
}

type roundResponse struct {
	Transaction models.Transaction `json:"transaction"`
	Session     SessionView        `json:"session"`
}

type validateResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

type undoResponse struct {
	Undone      bool                `json:"undone"`
	Transaction *models.Transaction `json:"transaction,omitempty"`
	Session     SessionView         `json:"session"`
}

type renameRequest struct {
	Name string `json:"name"`
}

type shareResponse struct {
	URL      string `json:"url"`
	Token    string `json:"token"`
	RoomCode string `json:"roomCode"`
}

type importRequest struct {
	Link string `json:"link"`
}

// ListContractsHandler returns the contract catalog in display order.
func ListContractsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, contract.All())
	}
}

// CreateSessionHandler starts a new session. A link or data token in the body
// seeds it from a shared snapshot; an unusable token yields a fresh session
// and a warning instead of an error.
func CreateSessionHandler(s *ScoreServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createSessionRequest
		if err := decodeBody(r, &req, true); err != nil {
			writeError(w, http.StatusBadRequest, "bad session request payload")
			return
		}

		var warning string
		sess := game.NewSession()
		s.register(sess)
		source := req.Link
		if source == "" {
			source = req.Data
		}
		if source != "" {
			if err := sess.ImportFromLink(source); err != nil {
				warning = "shared state could not be loaded; starting a new game"
				s.Logger.WithError(err).Warn("ignoring unusable share token on create")
			}
		}

		view := newSessionView(sess)
		view.Warning = warning
		writeJSON(w, http.StatusCreated, view)
	}
}

func GetSessionHandler(s *ScoreServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.lookupSession(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, newSessionView(sess))
	}
}

// DeleteSessionHandler drops a finished table from memory.
func DeleteSessionHandler(s *ScoreServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.lookupSession(w, r)
		if !ok {
			return
		}
		s.Sessions.DeleteSession(sess.ID)
		s.Logger.WithField("session", sess.ID).Info("session deleted")
		w.WriteHeader(http.StatusNoContent)
	}
}

// GetRoomHandler finds a live session by the room code shown at the table.
func GetRoomHandler(s *ScoreServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "code")))
		sess := s.Sessions.GetSessionByRoomCode(code)
		if sess == nil {
			writeError(w, http.StatusNotFound, "unknown room code")
			return
		}
		writeJSON(w, http.StatusOK, newSessionView(sess))
	}
}

// AddRoundHandler records a round. Refused inputs leave the session unchanged.
func AddRoundHandler(s *ScoreServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.lookupSession(w, r)
		if !ok {
			return
		}
		var req roundRequest
		if err := decodeBody(r, &req, false); err != nil {
			writeError(w, http.StatusBadRequest, "bad round request payload")
			return
		}

		in, err := req.seatInputs()
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		tx, err := sess.AddRound(req.Contract, in)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.Logger.WithFields(logrus.Fields{
			"session":  sess.ID,
			"contract": tx.ContractType,
			"tx":       tx.ID,
		}).Debug("round added")

		writeJSON(w, http.StatusCreated, roundResponse{Transaction: tx, Session: newSessionView(sess)})
	}
}

// ValidateRoundHandler reports whether a round would be accepted, without recording it.
func ValidateRoundHandler(s *ScoreServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.lookupSession(w, r); !ok {
			return
		}
		var req roundRequest
		if err := decodeBody(r, &req, false); err != nil {
			writeError(w, http.StatusBadRequest, "bad round request payload")
			return
		}

		resp := validateResponse{Valid: true}
		in, err := req.seatInputs()
		if err == nil {
			err = scoring.CheckInputs(in)
		}
		if err == nil {
			err = scoring.Validate(req.Contract, in)
		}
		if err != nil {
			resp = validateResponse{Valid: false, Message: err.Error()}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func UndoHandler(s *ScoreServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.lookupSession(w, r)
		if !ok {
			return
		}
		resp := undoResponse{}
		if tx, undone := sess.Undo(); undone {
			resp.Undone = true
			resp.Transaction = &tx
		}
		resp.Session = newSessionView(sess)
		writeJSON(w, http.StatusOK, resp)
	}
}

func RenamePlayerHandler(s *ScoreServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.lookupSession(w, r)
		if !ok {
			return
		}
		seat, err := strconv.Atoi(chi.URLParam(r, "seat"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "seat must be a number")
			return
		}
		var req renameRequest
		if err := decodeBody(r, &req, false); err != nil {
			writeError(w, http.StatusBadRequest, "bad rename request payload")
			return
		}

		if err := sess.RenamePlayer(models.PlayerID(seat), req.Name); err != nil {
			if errors.Is(err, game.ErrUnknownPlayer) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, newSessionView(sess))
	}
}

// ShareHandler returns the share link for the session's current state.
func ShareHandler(s *ScoreServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.lookupSession(w, r)
		if !ok {
			return
		}
		link, err := sess.ExportLink(s.BaseURL)
		if err != nil {
			s.Logger.WithError(err).Error("failed to export share link")
			writeError(w, http.StatusInternalServerError, "could not build share link")
			return
		}
		token, _ := codec.ExtractToken(link)
		writeJSON(w, http.StatusOK, shareResponse{URL: link, Token: token, RoomCode: sess.RoomCode})
	}
}

// ImportHandler replaces the session with a shared snapshot. A token that
// cannot be used is reported and the session stays as it was.
func ImportHandler(s *ScoreServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.lookupSession(w, r)
		if !ok {
			return
		}
		var req importRequest
		if err := decodeBody(r, &req, false); err != nil {
			writeError(w, http.StatusBadRequest, "bad import request payload")
			return
		}
		if err := sess.ImportFromLink(req.Link); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, newSessionView(sess))
	}
}
