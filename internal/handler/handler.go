package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/mentor/internal/assess"
	"github.com/pavelanni/mentor/internal/handler/views"
	appI18n "github.com/pavelanni/mentor/internal/i18n"
	"github.com/pavelanni/mentor/internal/model"
	"github.com/pavelanni/mentor/internal/session"
	"github.com/pavelanni/mentor/internal/store"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store  *store.Store
	engine *assess.Engine
	config model.AppConfig
}

// New creates a new Handler.
func New(s *store.Store, e *assess.Engine, cfg model.AppConfig) *Handler {
	return &Handler{store: s, engine: e, config: cfg}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/health", h.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(h.sessionMiddleware)

		r.Post("/signup", h.handleSignup)
		r.Post("/login", h.handleLogin)
		r.Post("/logout", h.handleLogout)
		r.Post("/set_language", h.handleSetLanguage)

		r.Post("/update_profile", h.handleUpdateProfile)
		r.Get("/get_profile", h.handleGetProfile)
		r.Post("/select_goal", h.handleSelectGoal)
		r.Get("/get_learning_path", h.handleLearningPath)

		r.Get("/get_capacity_test", h.handleGetCapacityTest)
		r.Post("/submit_capacity_test", h.handleSubmitCapacityTest)
		r.Get("/get_final_exam", h.handleGetFinalExam)
		r.Post("/submit_final_exam", h.handleSubmitFinalExam)

		r.Post("/ask", h.handleAsk)

		r.Get("/get_history", h.handleHistory)
		r.Get("/get_leaderboard", h.handleLeaderboard)
		r.Get("/get_dashboard", h.handleDashboard)
		r.Get("/get_community", h.handleCommunity)

		r.Post("/save_note", h.handleSaveNote)
		r.Get("/get_notes", h.handleGetNotes)
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// internalError logs err and answers 500 with a localized message.
func internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	slog.Error(op, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]any{"error": appI18n.T(r.Context(), "InternalError")})
}

// decodeBody reads a JSON request body into dst. An empty body leaves dst untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeJSON(w, http.StatusBadRequest, map[string]any{"error": appI18n.T(r.Context(), "InvalidRequest")})
	return false
}

// submittedAnswers coerces a JSON object of answers to strings. Numbers and
// booleans are rendered as text, anything else counts as unanswered.
func submittedAnswers(raw map[string]any) map[string]string {
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch v := v.(type) {
		case string:
			out[k] = v
		case float64:
			out[k] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(v)
		default:
			out[k] = ""
		}
	}
	return out
}

// fragment renders c and answers {key: html}.
func (h *Handler) fragment(w http.ResponseWriter, r *http.Request, key string, c templ.Component) {
	html, err := views.Render(r.Context(), c)
	if err != nil {
		internalError(w, r, "render "+key, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{key: html})
}

func sessionFrom(ctx context.Context) *session.Context {
	return session.FromContext(ctx)
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var p model.Profile
	if !decodeBody(w, r, &p) {
		return
	}
	sc := sessionFrom(r.Context())
	if err := sc.SetProfile(r.Context(), p); err != nil {
		internalError(w, r, "set profile", err)
		return
	}
	profileJSON, _ := json.Marshal(p)
	if err := sc.AppendHistory(r.Context(), "Profile updated: %s", profileJSON); err != nil {
		internalError(w, r, "append history", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": appI18n.T(r.Context(), "ProfileUpdated")})
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, _, err := sessionFrom(r.Context()).Profile(r.Context())
	if err != nil {
		internalError(w, r, "get profile", err)
		return
	}
	h.fragment(w, r, "profile", views.Profile(p))
}

func (h *Handler) handleSelectGoal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Goal string `json:"goal"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	goal := strings.TrimSpace(req.Goal)
	if goal == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": appI18n.T(r.Context(), "NoGoal")})
		return
	}
	sc := sessionFrom(r.Context())
	if err := sc.SetGoal(r.Context(), goal); err != nil {
		internalError(w, r, "set goal", err)
		return
	}
	if err := sc.AppendHistory(r.Context(), "Goal Selected: %s", goal); err != nil {
		internalError(w, r, "append history", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": appI18n.Td(r.Context(), "GoalSelected", map[string]any{"Goal": goal}),
	})
}

func (h *Handler) handleSetLanguage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Language string `json:"language"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	lang := strings.TrimSpace(req.Language)
	if lang == "" {
		lang = "en"
	}
	sc := sessionFrom(r.Context())
	if err := sc.SetLanguage(r.Context(), lang); err != nil {
		internalError(w, r, "set language", err)
		return
	}
	if err := sc.AppendHistory(r.Context(), "Language set to %s.", lang); err != nil {
		internalError(w, r, "append history", err)
		return
	}
	if !appI18n.Supported(lang) {
		slog.Info("no locale for language, falling back", "language", lang, "default", h.config.DefaultLanguage)
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "language": lang})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := sessionFrom(r.Context()).History(r.Context())
	if err != nil {
		internalError(w, r, "get history", err)
		return
	}
	h.fragment(w, r, "history", views.History(entries))
}

func (h *Handler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sc := sessionFrom(ctx)
	username, err := sc.Username(ctx)
	if err != nil {
		internalError(w, r, "get username", err)
		return
	}
	score, err := sc.CapacityScore(ctx)
	if err != nil {
		internalError(w, r, "get capacity score", err)
		return
	}
	category, err := sc.LearnerCategory(ctx)
	if err != nil {
		internalError(w, r, "get learner category", err)
		return
	}
	h.fragment(w, r, "leaderboard", views.Leaderboard(username, score, category))
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	attempts, err := sessionFrom(r.Context()).Attempts(r.Context())
	if err != nil {
		internalError(w, r, "get attempts", err)
		return
	}
	h.fragment(w, r, "dashboard", views.Dashboard(views.NewProgress(attempts)))
}

func (h *Handler) handleCommunity(w http.ResponseWriter, r *http.Request) {
	h.fragment(w, r, "community", views.Community())
}
