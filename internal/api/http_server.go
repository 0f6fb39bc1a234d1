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

	"kladovka/internal/config"
	"kladovka/internal/database"
	"kladovka/internal/domain"
	"kladovka/internal/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Services собирает зависимости HTTP-сервера в одном месте,
// чтобы конструктор не разрастался позиционными аргументами.
type Services struct {
	Cells     domain.CellService
	Customers domain.CustomerService
	Rentals   domain.RentalService
	Auth      domain.AuthService
	Repo      domain.Repository
}

// HTTPServer отдает JSON API для витрины и админки.
type HTTPServer struct {
	cfg     config.APIConfig
	uploads config.UploadsConfig
	svc     Services
	server  *http.Server
	auth    *HTTPAuth
	log     zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, uploads config.UploadsConfig, svc Services, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{cfg: cfg, uploads: uploads, svc: svc}
	srv.auth = NewHTTPAuth(cfg)
	if logger != nil {
		srv.log = logger.With().Str("component", "http_api").Logger()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/cells", srv.handleCells)
	mux.HandleFunc("/api/cells/", srv.handleCellSubtree)
	mux.HandleFunc("/api/customers", srv.handleCustomers)
	mux.HandleFunc("/api/customers/", srv.handleCustomerByID)
	mux.HandleFunc("/api/rentals", srv.handleRentals)
	mux.HandleFunc("/api/rentals/", srv.handleRentalSubtree)
	mux.HandleFunc("/api/auth/session", srv.handleAuthSession)
	mux.HandleFunc("/api/auth/session/", srv.handleAuthConfirm)
	mux.HandleFunc("/api/auth/verify-token", srv.handleVerifyToken)
	mux.HandleFunc("/api/auth/me", srv.handleAuthMe)
	mux.HandleFunc("/healthz", srv.handleHealthz)
	mux.HandleFunc("/readyz", srv.handleReadyz)

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *HTTPServer) handleReadyz(w http.ResponseWriter, r *http.Request) {
	// Готовность подтверждаем чтением из БД.
	if _, err := s.svc.Repo.GetCells(r.Context(), database.CellFilter{}); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database is not ready")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.New().String()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		metrics.IncHTTP(endpointLabel(r.URL.Path))
		s.log.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

// endpointLabel сводит путь к шаблону без идентификаторов,
// чтобы не раздувать кардинальность метрик.
func endpointLabel(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, p := range parts {
		if _, err := strconv.ParseInt(p, 10, 64); err == nil {
			parts[i] = ":id"
		} else if _, err := uuid.Parse(p); err == nil {
			parts[i] = ":token"
		}
	}
	return "/" + strings.Join(parts, "/")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": message})
}

// writeDomainError транслирует ошибки уровня БД/сервисов в HTTP-статусы.
// Неожиданные ошибки логируются и маскируются общей 500-кой.
func (s *HTTPServer) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, database.ErrCellOccupied):
		writeError(w, http.StatusConflict, "cell is already occupied")
	case errors.Is(err, database.ErrCellHasRentals):
		writeError(w, http.StatusConflict, "cell has rentals and cannot be deleted")
	case errors.Is(err, database.ErrCustomerHasRentals):
		writeError(w, http.StatusConflict, "customer has active rentals")
	case errors.Is(err, database.ErrRentalNotActive):
		writeError(w, http.StatusConflict, "rental is not active")
	case errors.Is(err, database.ErrTokenInvalid):
		writeError(w, http.StatusUnauthorized, "token is invalid or expired")
	case errors.Is(err, database.ErrInvalidMonths), errors.Is(err, database.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error().Err(err).Msg("неожиданная ошибка при обработке запроса")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// pathParts разбирает хвост пути после префикса на сегменты.
func pathParts(path, prefix string) []string {
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id: %q", raw)
	}
	return id, nil
}

func decodeBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}
