// internal/handlers/respond.go
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jason-s-yu/trix/internal/game"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// decodeBody reads a JSON body into v. An empty body is allowed when optional is set.
func decodeBody(r *http.Request, v interface{}, optional bool) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if optional && errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// lookupSession resolves the {sessionID} path parameter, writing the error response itself.
func (s *ScoreServer) lookupSession(w http.ResponseWriter, r *http.Request) (*game.Session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown session")
		return nil, false
	}
	sess, ok := s.Sessions.GetSession(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return nil, false
	}
	return sess, true
}
