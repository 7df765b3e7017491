package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pavelanni/quiz/internal/handler/views"
	"github.com/pavelanni/quiz/internal/model"
	"github.com/pavelanni/quiz/internal/quiz"
)

const explainTimeout = 30 * time.Second

// Explainer produces an explanation for a locked-in answer.
type Explainer interface {
	Explain(ctx context.Context, q model.Question, selected int) (string, error)
}

// Handler owns the quiz session and binds it to HTTP. Every event runs under
// mu, so the session sees one event at a time.
type Handler struct {
	config    model.QuizConfig
	explainer Explainer

	mu          sync.Mutex
	session     *quiz.Session
	epoch       int // bumped on restart
	explanation string
}

// New creates a new Handler. explainer may be nil to disable explanations.
func New(sess *quiz.Session, explainer Explainer, cfg model.QuizConfig) (*Handler, error) {
	return &Handler{session: sess, explainer: explainer, config: cfg}, nil
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.csrfMiddleware)
		r.Get("/", h.handleIndex)
		r.Post("/answer", h.handleAnswer)
		r.Post("/next", h.handleNext)
		r.Post("/restart", h.handleRestart)
	})
	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.handleAPIState)
		r.Group(func(r chi.Router) {
			r.Use(requireJSON)
			r.Post("/answer", h.handleAPIAnswer)
			r.Post("/next", h.handleAPINext)
			r.Post("/restart", h.handleAPIRestart)
		})
	})
}

// BasePathMiddleware stores the configured base path in the request context.
func (h *Handler) BasePathMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := model.ContextWithBasePath(r.Context(), h.config.BasePath)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) path(p string) string {
	return h.config.BasePath + p
}

func (h *Handler) pageData() views.PageData {
	h.mu.Lock()
	defer h.mu.Unlock()
	d := views.PageData{
		Title:       h.config.Title,
		State:       h.session.State(),
		Explanation: h.explanation,
	}
	if res, ok := h.session.Result(); ok {
		d.Result = &res
	}
	return d
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.QuizPage(h.pageData()).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	choice, err := strconv.Atoi(r.FormValue("choice"))
	if err != nil {
		http.Error(w, "invalid choice", http.StatusBadRequest)
		return
	}
	if _, err := h.selectAnswer(r.Context(), choice); err != nil {
		slog.Warn("answer rejected", "choice", choice, "error", err)
	}
	http.Redirect(w, r, h.path("/"), http.StatusSeeOther)
}

func (h *Handler) handleNext(w http.ResponseWriter, r *http.Request) {
	if _, err := h.advance(); err != nil {
		slog.Warn("advance rejected", "error", err)
	}
	http.Redirect(w, r, h.path("/"), http.StatusSeeOther)
}

func (h *Handler) handleRestart(w http.ResponseWriter, r *http.Request) {
	h.restart()
	http.Redirect(w, r, h.path("/"), http.StatusSeeOther)
}

// selectAnswer applies the event and, when enabled, fetches an explanation
// outside the lock. The explanation is kept only if the session is still on
// the same question of the same run.
func (h *Handler) selectAnswer(ctx context.Context, choice int) (quiz.Outcome, error) {
	h.mu.Lock()
	out, err := h.session.SelectAnswer(choice)
	if err != nil {
		h.mu.Unlock()
		return out, err
	}
	q, _ := h.session.CurrentQuestion()
	epoch, index := h.epoch, h.session.Index()
	h.mu.Unlock()

	slog.Info("answer locked in", "question", q.Number, "choice", choice, "correct", out.Correct, "score", out.ScoreAfter)

	if h.explainer == nil {
		return out, nil
	}
	ctx, cancel := context.WithTimeout(ctx, explainTimeout)
	defer cancel()
	text, err := h.explainer.Explain(ctx, q, choice)
	if err != nil {
		slog.Warn("explanation failed", "question", q.Number, "error", err)
		return out, nil
	}

	h.mu.Lock()
	if h.epoch == epoch && h.session.Index() == index {
		h.explanation = text
	}
	h.mu.Unlock()
	return out, nil
}

func (h *Handler) advance() (quiz.State, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	st, err := h.session.Advance()
	if err != nil {
		return st, err
	}
	h.explanation = ""
	if st.Finished() {
		slog.Info("quiz finished", "score", st.Score, "total", st.Total)
	}
	return st, nil
}

func (h *Handler) restart() quiz.State {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.epoch++
	h.explanation = ""
	slog.Info("quiz restarted")
	return h.session.Restart()
}
