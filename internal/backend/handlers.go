package backend

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
)

// createRequest is the body of POST /api/oases.
type createRequest struct {
	Title    string `json:"title"`
	Language string `json:"language"`
}

// changeEvent is pushed to websocket clients after every change.
type changeEvent struct {
	Type string `json:"type"`
}

// Handler serves the oasis API.
type Handler struct {
	store    *Store
	log      *slog.Logger
	upgrader websocket.Upgrader
}

// NewHandler returns a handler over store.
func NewHandler(store *Store, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		store: store,
		log:   log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Routes configures all routes and returns the router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Route("/api", func(r chi.Router) {
		r.Get("/oases", h.list)
		r.Post("/oases", h.create)
		r.Delete("/oases/{id}", h.delete)
		r.Get("/oases/ws", h.watch)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	})
	return r
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.log.Debug("backend: request", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "dur", time.Since(start))
	})
}

// list handles GET /api/oases.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.List())
}

// create handles POST /api/oases.
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	created, err := h.store.Create(req.Title, req.Language)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.log.Info("backend: created", "id", created.ID, "title", created.Title)
	respondJSON(w, http.StatusCreated, created)
}

// delete handles DELETE /api/oases/{id}.
func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.Delete(id); err != nil {
		if errors.Is(err, ErrNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.log.Info("backend: deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// watch handles GET /api/oases/ws, pushing a change event after each change.
func (h *Handler) watch(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("backend: ws upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	changes, cancel := h.store.Subscribe()
	defer cancel()

	// The read loop only notices the client going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case <-r.Context().Done():
			return
		case <-changes:
			_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteJSON(changeEvent{Type: "changed"}); err != nil {
				return
			}
		}
	}
}

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("backend: encoding JSON", "err", err)
	}
}

// respondError writes an error JSON response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
