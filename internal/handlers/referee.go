// internal/handlers/referee.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/jason-s-yu/trix/internal/referee"
)

type askRequest struct {
	Message string `json:"message"`
}

type askResponse struct {
	Reply string `json:"reply"`
}

func RefereeGreetingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, askResponse{Reply: referee.Greeting})
	}
}

// AskRefereeHandler relays a question to the referee. The referee always
// answers with text, so failures upstream still produce a 200.
func AskRefereeHandler(s *ScoreServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req askRequest
		if err := decodeBody(r, &req, false); err != nil || strings.TrimSpace(req.Message) == "" {
			writeError(w, http.StatusBadRequest, "message is required")
			return
		}
		writeJSON(w, http.StatusOK, askResponse{Reply: s.Referee.Ask(r.Context(), req.Message)})
	}
}
