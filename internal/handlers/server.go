// internal/handlers/server.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jason-s-yu/trix/internal/game"
	"github.com/jason-s-yu/trix/internal/middleware"
	"github.com/jason-s-yu/trix/internal/models"
	"github.com/sirupsen/logrus"
)

// RoundPublisher forwards ledger changes to the history queue.
type RoundPublisher interface {
	PublishRound(ctx context.Context, rec models.RoundRecord) error
}

// Asker answers free-text rules questions.
type Asker interface {
	Ask(ctx context.Context, message string) string
}

// ScoreServer holds the live sessions and the collaborators the HTTP API needs.
type ScoreServer struct {
	Sessions *game.SessionStore
	Referee  Asker
	BaseURL  string
	Logger   *logrus.Logger

	// Publisher is optional; when nil, round records are not queued.
	// RunPublisher must be running for queued records to leave the server.
	Publisher RoundPublisher

	AllowedOrigins []string

	records chan models.RoundRecord
}

// recordBuffer bounds how many round records may wait for the publisher.
const recordBuffer = 256

func NewScoreServer(baseURL string, referee Asker, publisher RoundPublisher, logger *logrus.Logger) *ScoreServer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ScoreServer{
		Sessions:       game.NewSessionStore(),
		Referee:        referee,
		BaseURL:        baseURL,
		Logger:         logger,
		Publisher:      publisher,
		AllowedOrigins: []string{"https://*", "http://*"},
		records:        make(chan models.RoundRecord, recordBuffer),
	}
}

// Routes builds the chi router for the whole API.
func (s *ScoreServer) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.LogMiddleware(s.Logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Heartbeat("/healthz"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/contracts", ListContractsHandler())
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", CreateSessionHandler(s))
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", GetSessionHandler(s))
			r.Delete("/", DeleteSessionHandler(s))
			r.Post("/rounds", AddRoundHandler(s))
			r.Post("/rounds/validate", ValidateRoundHandler(s))
			r.Post("/undo", UndoHandler(s))
			r.Put("/players/{seat}", RenamePlayerHandler(s))
			r.Get("/share", ShareHandler(s))
			r.Post("/import", ImportHandler(s))
		})
	})
	r.Get("/rooms/{code}", GetRoomHandler(s))
	r.Get("/referee", RefereeGreetingHandler())
	r.Post("/referee", AskRefereeHandler(s))
	return r
}

// register stores a session and hooks its ledger changes up to the publisher.
func (s *ScoreServer) register(sess *game.Session) {
	if s.Publisher != nil {
		sess.OnRecord = s.publishRecord
	}
	s.Sessions.AddSession(sess)
	s.Logger.WithFields(logrus.Fields{
		"session":  sess.ID,
		"roomCode": sess.RoomCode,
	}).Info("session created")
}

// publishRecord hands rec to the publisher worker without blocking the
// request that produced it. Records are dropped when the buffer is full.
func (s *ScoreServer) publishRecord(rec models.RoundRecord) {
	select {
	case s.records <- rec:
	default:
		s.Logger.WithFields(logrus.Fields{
			"session":      rec.SessionID,
			"action_index": rec.ActionIndex,
			"kind":         rec.Kind,
		}).Warn("round record buffer full, dropping record")
	}
}

// RunPublisher drains queued round records in order until ctx is cancelled.
// A single worker keeps each session's records in action order on the queue.
func (s *ScoreServer) RunPublisher(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case rec := <-s.records:
			pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := s.Publisher.PublishRound(pubCtx, rec)
			cancel()
			if err != nil {
				s.Logger.WithError(err).WithFields(logrus.Fields{
					"session":      rec.SessionID,
					"action_index": rec.ActionIndex,
					"kind":         rec.Kind,
				}).Warn("failed to queue round record")
			}
		}
	}
}
