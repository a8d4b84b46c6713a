package handler

import (
	"net/http"
	"strings"
)

func (h *Handler) handleGetCapacityTest(w http.ResponseWriter, r *http.Request) {
	set, err := h.engine.GenerateCapacityTest(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		internalError(w, r, "generate capacity test", err)
		return
	}
	writeJSON(w, http.StatusOK, set.Public())
}

func (h *Handler) handleSubmitCapacityTest(w http.ResponseWriter, r *http.Request) {
	raw := map[string]any{}
	if !decodeBody(w, r, &raw) {
		return
	}
	res, err := h.engine.GradeCapacityTest(r.Context(), sessionFrom(r.Context()), submittedAnswers(raw))
	if err != nil {
		internalError(w, r, "grade capacity test", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleGetFinalExam(w http.ResponseWriter, r *http.Request) {
	set, err := h.engine.GenerateFinalExam(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		internalError(w, r, "generate final exam", err)
		return
	}
	writeJSON(w, http.StatusOK, set.Public())
}

func (h *Handler) handleSubmitFinalExam(w http.ResponseWriter, r *http.Request) {
	raw := map[string]any{}
	if !decodeBody(w, r, &raw) {
		return
	}
	res, err := h.engine.GradeFinalExam(r.Context(), sessionFrom(r.Context()), submittedAnswers(raw))
	if err != nil {
		internalError(w, r, "grade final exam", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleLearningPath(w http.ResponseWriter, r *http.Request) {
	path, err := h.engine.GenerateLearningPath(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		internalError(w, r, "generate learning path", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"learning_path": path})
}

func (h *Handler) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	reply, err := h.engine.Chat(r.Context(), sessionFrom(r.Context()), strings.TrimSpace(req.Message))
	if err != nil {
		internalError(w, r, "chat", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reply": reply})
}
