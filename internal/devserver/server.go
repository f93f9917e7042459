// Package devserver is a local stand-in for the research assistant backend.
// It serves concept graphs built from a directory of plain-text papers on
// the same routes the real backend exposes.
package devserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/concepts"
)

// Server handles the graph and paper routes.
type Server struct {
	store   *Store
	log     *zap.Logger
	origins []string
}

// New returns a server over store. origins are the browser origins allowed
// by CORS; nil allows the web client's default dev origin.
func New(store *Store, log *zap.Logger, origins []string) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if origins == nil {
		origins = []string{"http://localhost:3000"}
	}
	return &Server{store: store, log: log.Named("devserver"), origins: origins}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/api", func(r chi.Router) {
		r.Get("/graph/{paperID}", s.graph)
		r.Get("/papers/list", s.papers)
	})
	return r
}

func (s *Server) graph(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "paperID")
	chunks, err := s.store.Chunks(id)
	if err != nil {
		if errors.Is(err, ErrPaperNotFound) {
			writeError(w, http.StatusNotFound, "Paper not found")
			return
		}
		s.log.Error("read paper", zap.String("paper", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Graph generation failed")
		return
	}

	m, err := concepts.Build(id, chunks)
	if err != nil {
		s.log.Error("build graph", zap.String("paper", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Graph generation failed")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) papers(w http.ResponseWriter, r *http.Request) {
	papers, err := s.store.List()
	if err != nil {
		s.log.Error("list papers", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to list papers")
		return
	}
	writeJSON(w, http.StatusOK, papers)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("requestID", middleware.GetReqID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
