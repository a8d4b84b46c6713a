package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	appI18n "github.com/pavelanni/mentor/internal/i18n"
	"github.com/pavelanni/mentor/internal/model"
	"github.com/pavelanni/mentor/internal/session"
	"github.com/pavelanni/mentor/internal/store"
)

const sessionCookieName = "session"

type browserSessionKey struct{}

// browserSessionID returns the id of the current browser session.
func browserSessionID(ctx context.Context) string {
	id, _ := ctx.Value(browserSessionKey{}).(string)
	return id
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(h.config.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.config.SecureCookies,
	})
}

// sessionMiddleware binds every request to a browser session, creating one
// when the cookie is missing or expired, and injects the session context and
// a localizer for the session's language.
func (h *Handler) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
			sess, err := h.store.GetBrowserSession(cookie.Value)
			if err != nil {
				slog.Error("failed to get browser session", "error", err)
			} else if sess != nil {
				id = sess.ID
			}
		}
		if id == "" {
			newID, err := h.store.CreateBrowserSession(h.config.SessionTTL)
			if err != nil {
				internalError(w, r, "create browser session", err)
				return
			}
			id = newID
			h.setSessionCookie(w, id)
		}

		ctx := r.Context()
		sc := session.New(h.store.SessionState(id))
		lang, err := sc.Language(ctx)
		if err != nil {
			slog.Warn("failed to read session language", "error", err)
		}
		ctx = appI18n.WithLocalizer(ctx, appI18n.NewLocalizer(lang, r.Header.Get("Accept-Language"), h.config.DefaultLanguage))
		ctx = session.WithContext(ctx, sc)
		ctx = context.WithValue(ctx, browserSessionKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !decodeBody(w, r, &req) {
		return
	}
	username := strings.TrimSpace(req.Username)
	password := strings.TrimSpace(req.Password)
	if username == "" || password == "" {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": appI18n.T(r.Context(), "MissingCredentials")})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		internalError(w, r, "hash password", err)
		return
	}
	_, err = h.store.CreateUser(model.User{Username: username, PasswordHash: string(hash)})
	if errors.Is(err, store.ErrUsernameTaken) {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": appI18n.T(r.Context(), "UsernameExists")})
		return
	}
	if err != nil {
		internalError(w, r, "create user", err)
		return
	}

	if err := sessionFrom(r.Context()).SetProfile(r.Context(), model.Profile{}); err != nil {
		internalError(w, r, "init profile", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": appI18n.T(r.Context(), "SignupSuccess")})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !decodeBody(w, r, &req) {
		return
	}
	username := strings.TrimSpace(req.Username)
	password := strings.TrimSpace(req.Password)

	user, err := h.store.GetUserByUsername(username)
	if err != nil {
		internalError(w, r, "get user", err)
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": appI18n.T(r.Context(), "InvalidCredentials")})
		return
	}

	ctx := r.Context()
	sc := sessionFrom(ctx)
	if err := sc.SetUsername(ctx, user.Username); err != nil {
		internalError(w, r, "set username", err)
		return
	}
	if err := sc.AppendHistory(ctx, "%s logged in.", user.Username); err != nil {
		internalError(w, r, "append history", err)
		return
	}
	_, ok, err := sc.Profile(ctx)
	if err != nil {
		slog.Warn("failed to read profile, resetting it", "username", user.Username, "error", err)
	}
	if err != nil || !ok {
		if err := sc.SetProfile(ctx, model.Profile{}); err != nil {
			internalError(w, r, "init profile", err)
			return
		}
	}
	slog.Info("user logged in", "username", user.Username)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if id := browserSessionID(r.Context()); id != "" {
		if err := h.store.DeleteBrowserSession(id); err != nil {
			internalError(w, r, "delete browser session", err)
			return
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.SecureCookies,
	})
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
