package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/pavelanni/mentor/internal/handler/views"
	appI18n "github.com/pavelanni/mentor/internal/i18n"
	"github.com/pavelanni/mentor/internal/model"
)

const maxUploadSize = 32 << 20

// noteOwner identifies whose notes to read and write: the logged-in user, or
// the anonymous browser session.
func noteOwner(ctx context.Context) (string, error) {
	username, err := sessionFrom(ctx).Username(ctx)
	if err != nil {
		return "", err
	}
	if username != "" {
		return username, nil
	}
	return "session:" + browserSessionID(ctx), nil
}

// saveUpload stores an uploaded file under the upload dir and returns its stored name.
func (h *Handler) saveUpload(src io.Reader, name string) (string, error) {
	if err := os.MkdirAll(h.config.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	stored := uuid.NewString() + "-" + filepath.Base(name)
	dst, err := os.Create(filepath.Join(h.config.UploadDir, stored))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close upload file: %w", err)
	}
	return stored, nil
}

func (h *Handler) handleSaveNote(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": appI18n.T(r.Context(), "InvalidRequest")})
		return
	}
	text := strings.TrimSpace(r.FormValue("note"))

	var fileName string
	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
		fileName, err = h.saveUpload(file, header.Filename)
		if err != nil {
			internalError(w, r, "save upload", err)
			return
		}
		slog.Info("saved upload", "file", fileName)
	}

	if text == "" && fileName == "" {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": appI18n.T(r.Context(), "EmptyNote")})
		return
	}

	owner, err := noteOwner(r.Context())
	if err != nil {
		internalError(w, r, "note owner", err)
		return
	}
	if _, err := h.store.AddNote(model.Note{Owner: owner, Text: text, FileName: fileName}); err != nil {
		internalError(w, r, "add note", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": appI18n.T(r.Context(), "NoteSaved")})
}

func (h *Handler) handleGetNotes(w http.ResponseWriter, r *http.Request) {
	owner, err := noteOwner(r.Context())
	if err != nil {
		internalError(w, r, "note owner", err)
		return
	}
	notes, err := h.store.ListNotes(owner)
	if err != nil {
		internalError(w, r, "list notes", err)
		return
	}
	h.fragment(w, r, "notes", views.Notes(notes))
}
