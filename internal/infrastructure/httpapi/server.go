// Package httpapi exposes the prediction service over HTTP/JSON.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/DSdoesVS/fake-news-detector/internal/domain"
	"github.com/DSdoesVS/fake-news-detector/internal/ports"
	"github.com/DSdoesVS/fake-news-detector/internal/usecase"
)

const (
	maxRequestBody  = 1 << 20
	shutdownTimeout = 10 * time.Second
	defaultHistory  = 50
	defaultFeatures = 20
)

// Server carries the HTTP surface over the prediction service.
type Server struct {
	service    *usecase.PredictionService
	repository ports.PredictionRepository
	logger     *slog.Logger
	httpServer *http.Server
}

// NewServer builds the server with all routes registered. repository may
// be nil, in which case the history endpoint reports empty results.
func NewServer(addr string, service *usecase.PredictionService, repository ports.PredictionRepository, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		service:    service,
		repository: repository,
		logger:     logger.With("component", "http"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /predict", s.handlePredict)
	mux.HandleFunc("GET /model/info", s.handleModelInfo)
	mux.HandleFunc("GET /model/features", s.handleModelFeatures)
	mux.HandleFunc("POST /train", s.handleTrain)
	mux.HandleFunc("GET /history", s.handleHistory)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.withCORS(s.withRequestLog(mux)),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler exposes the routed handler chain, used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

type predictRequest struct {
	Text     string `json:"text"`
	Detailed bool   `json:"detailed"`
}

type predictResponse struct {
	Prediction           string                 `json:"prediction"`
	Confidence           float64                `json:"confidence"`
	ConfidencePercentage float64                `json:"confidence_percentage"`
	OriginalTextLength   int                    `json:"original_text_length"`
	ProcessedTextLength  int                    `json:"processed_text_length"`
	TopFeatures          []domain.FeatureWeight `json:"top_features,omitempty"`
}

type healthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

type trainResponse struct {
	Status  string         `json:"status"`
	Metrics domain.Metrics `json:"metrics"`
}

type historyResponse struct {
	Predictions []historyEntry `json:"predictions"`
}

type historyEntry struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Prediction  string    `json:"prediction"`
	Confidence  float64   `json:"confidence"`
	TextPreview string    `json:"text_preview"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "ok",
		ModelLoaded: s.service.Loaded(),
	})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	result, err := s.service.Predict(r.Context(), req.Text, req.Detailed)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, predictResponse{
		Prediction:           result.Label.String(),
		Confidence:           result.Confidence,
		ConfidencePercentage: result.Confidence * 100,
		OriginalTextLength:   result.OriginalLength,
		ProcessedTextLength:  result.ProcessedLength,
		TopFeatures:          result.TopFeatures,
	})
}

func (s *Server) handleModelInfo(w http.ResponseWriter, _ *http.Request) {
	info, err := s.service.Info()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleModelFeatures(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultFeatures)
	features, err := s.service.TopFeatures(limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]domain.FeatureWeight{"features": features})
}

func (s *Server) handleTrain(w http.ResponseWriter, r *http.Request) {
	metrics, err := s.service.TrainAndReload(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trainResponse{Status: "trained", Metrics: metrics})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	resp := historyResponse{Predictions: []historyEntry{}}
	if s.repository != nil {
		records, err := s.repository.RecentPredictions(r.Context(), queryInt(r, "limit", defaultHistory))
		if err != nil {
			s.writeError(w, err)
			return
		}
		for _, rec := range records {
			resp.Predictions = append(resp.Predictions, historyEntry{
				ID:          rec.ID,
				CreatedAt:   rec.CreatedAt,
				Prediction:  rec.Label.String(),
				Confidence:  rec.Confidence,
				TextPreview: rec.TextPreview,
			})
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeError maps the domain error taxonomy onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case domain.IsValidation(err):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrModelNotLoaded):
		status = http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrTrainingInProgress):
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
