package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"telegram-chat-stats/internal/domain"
	"telegram-chat-stats/internal/domain/model"
	"telegram-chat-stats/internal/infra/logging"
	"telegram-chat-stats/internal/usecase"
)

const (
	requestTimeout = 10 * time.Second
	readyTimeout   = 2 * time.Second
)

// Pinger is satisfied by *pgxpool.Pool and *redis.Client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server exposes health probes, Prometheus metrics and a read-only statistics API.
type Server struct {
	stats  usecase.StatsUseCase
	checks map[string]Pinger
	log    *zerolog.Logger
	srv    *http.Server
}

func NewServer(stats usecase.StatsUseCase, checks map[string]Pinger, logger *zerolog.Logger) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Server{stats: stats, checks: checks, log: logger}
}

// Routes builds the router. Probes and /metrics stay outside the request timeout.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(TraceID, Recover(s.log), RequestLog(s.log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Get("/ready", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/chats/{chatID}", func(r chi.Router) {
		r.Use(Timeout(requestTimeout))
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/report", s.handleChatReport)
		r.Get("/users/{userID}/rank", s.handleUserRank)
		r.Get("/users/{userID}/report", s.handleUserReport)
	})
	return r
}

func (s *Server) Start(port int) error {
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.Info().Int("port", port).Msg("http server listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

type readyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	resp := readyResponse{Status: "ok", Checks: make(map[string]string, len(s.checks))}
	code := http.StatusOK
	for name, p := range s.checks {
		if err := p.Ping(ctx); err != nil {
			resp.Checks[name] = "error: " + err.Error()
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	writeJSON(w, code, resp)
}

type leaderboardEntry struct {
	Position  int    `json:"position"`
	UserID    int64  `json:"user_id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Messages  int    `json:"messages"`
}

type leaderboardResponse struct {
	ChatID int64              `json:"chat_id"`
	Range  model.TimeRange    `json:"range"`
	Users  []leaderboardEntry `json:"users"`
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	chatID, rng, ok := s.chatAndRange(w, r)
	if !ok {
		return
	}
	top, err := s.stats.TopUsers(r.Context(), chatID, rng)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	resp := leaderboardResponse{ChatID: chatID, Range: rng, Users: make([]leaderboardEntry, 0, len(top))}
	for i, uc := range top {
		resp.Users = append(resp.Users, leaderboardEntry{
			Position:  i + 1,
			UserID:    uc.User.ID,
			Username:  uc.User.Username,
			FirstName: uc.User.FirstName,
			LastName:  uc.User.LastName,
			Messages:  uc.Count,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type reportResponse struct {
	Range  model.TimeRange   `json:"range"`
	Text   string            `json:"text"`
	Ranges []model.TimeRange `json:"ranges"`
}

func (s *Server) handleChatReport(w http.ResponseWriter, r *http.Request) {
	chatID, rng, ok := s.chatAndRange(w, r)
	if !ok {
		return
	}
	rep, err := s.stats.LeaderboardReport(r.Context(), chatID, rng)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reportResponse{Range: rep.Range, Text: rep.Text, Ranges: rep.Ranges})
}

func (s *Server) handleUserReport(w http.ResponseWriter, r *http.Request) {
	chatID, rng, ok := s.chatAndRange(w, r)
	if !ok {
		return
	}
	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	rep, err := s.stats.UserReport(r.Context(), chatID, userID, rng)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reportResponse{Range: rep.Range, Text: rep.Text, Ranges: rep.Ranges})
}

type rankResponse struct {
	ChatID     int64 `json:"chat_id"`
	UserID     int64 `json:"user_id"`
	Ranked     bool  `json:"ranked"`
	Rank       int   `json:"rank"`
	TotalUsers int   `json:"total_users"`
	Messages   int   `json:"messages"`
}

func (s *Server) handleUserRank(w http.ResponseWriter, r *http.Request) {
	chatID, err := pathID(r, "chatID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid chat id")
		return
	}
	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	rank, count, err := s.stats.MyRank(r.Context(), chatID, userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rankResponse{
		ChatID:     chatID,
		UserID:     userID,
		Ranked:     rank.Ranked(),
		Rank:       rank.Rank,
		TotalUsers: rank.TotalUsers,
		Messages:   count,
	})
}

// chatAndRange parses {chatID} and ?range=, writing a 400 on failure. Range defaults to all.
func (s *Server) chatAndRange(w http.ResponseWriter, r *http.Request) (int64, model.TimeRange, bool) {
	chatID, err := pathID(r, "chatID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid chat id")
		return 0, "", false
	}
	rng := model.RangeAll
	if q := r.URL.Query().Get("range"); q != "" {
		if rng, err = model.ParseRange(q); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return 0, "", false
		}
	}
	return chatID, rng, true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidRange):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		logging.With(r.Context(), s.log).Error().Err(err).Str("path", r.URL.Path).Msg("stats request failed")
		writeError(w, http.StatusServiceUnavailable, domain.ErrStoreUnavailable.Error())
	}
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(chi.URLParam(r, name)), 10, 64)
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidArgument
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
