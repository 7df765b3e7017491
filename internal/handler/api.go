package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"github.com/pavelanni/quiz/internal/quiz"
)

// apiState is the JSON form of the session state.
type apiState struct {
	quiz.State
	Explanation string       `json:"explanation,omitempty"`
	Result      *quiz.Result `json:"result,omitempty"`
}

type apiAnswerRequest struct {
	Choice *int `json:"choice"`
}

type apiAnswerResponse struct {
	Outcome quiz.Outcome `json:"outcome"`
	State   apiState     `json:"state"`
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// requireJSON rejects requests whose body is not declared as JSON, including
// empty ones. Browsers only send application/json cross-site after a CORS
// preflight, which this server never grants.
func requireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mt != "application/json" {
			writeJSON(w, http.StatusUnsupportedMediaType, apiError{
				Error:   "unsupported_media_type",
				Message: "Content-Type must be application/json",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) currentAPIState() apiState {
	d := h.pageData()
	return apiState{State: d.State, Explanation: d.Explanation, Result: d.Result}
}

func (h *Handler) handleAPIState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.currentAPIState())
}

func (h *Handler) handleAPIAnswer(w http.ResponseWriter, r *http.Request) {
	var req apiAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "bad_request", Message: "invalid JSON body: " + err.Error()})
		return
	}
	if req.Choice == nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "bad_request", Message: "choice is required"})
		return
	}

	out, err := h.selectAnswer(r.Context(), *req.Choice)
	if err != nil {
		writeEventError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, apiAnswerResponse{Outcome: out, State: h.currentAPIState()})
}

func (h *Handler) handleAPINext(w http.ResponseWriter, r *http.Request) {
	if _, err := h.advance(); err != nil {
		writeEventError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.currentAPIState())
}

func (h *Handler) handleAPIRestart(w http.ResponseWriter, r *http.Request) {
	h.restart()
	writeJSON(w, http.StatusOK, h.currentAPIState())
}

// writeEventError maps a rejected session event to 409 with a stable code.
func writeEventError(w http.ResponseWriter, err error) {
	code := "internal"
	status := http.StatusConflict
	switch {
	case errors.Is(err, quiz.ErrInvalidSelection):
		code = "invalid_selection"
	case errors.Is(err, quiz.ErrPrematureAdvance):
		code = "premature_advance"
	default:
		status = http.StatusInternalServerError
	}
	slog.Warn("event rejected", "code", code, "error", err)
	writeJSON(w, status, apiError{Error: code, Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
