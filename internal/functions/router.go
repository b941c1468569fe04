package functions

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"laundry-workers/internal/common/auth"
	"laundry-workers/internal/common/errors"
	"laundry-workers/internal/common/logger"
	"laundry-workers/internal/common/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxBodyBytes = 1 << 20

// TokenValidator resolves a bearer token to the caller.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*auth.TokenInfo, error)
}

// ReadinessCheck reports whether backing services are reachable.
type ReadinessCheck func(ctx context.Context) error

type Server struct {
	tokens TokenValidator
	ready  ReadinessCheck
	logger logger.Logger
}

// NewRouter mounts every function under /functions plus the health, readiness and metrics
// endpoints.
func NewRouter(fns []Function, tokens TokenValidator, ready ReadinessCheck, log logger.Logger) http.Handler {
	s := &Server{tokens: tokens, ready: ready, logger: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Get("/health", s.health)
	r.Get("/ready", s.readiness)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/functions", func(r chi.Router) {
		r.Use(s.authenticate)
		for _, fn := range fns {
			r.Post("/"+fn.Name, s.invoke(fn))
		}
	})
	return r
}

// cors allows any origin and answers preflight requests with an empty 200.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
		h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			s.writeError(w, r, "", errors.NewAuthenticationError("missing bearer token"))
			return
		}
		info, err := s.tokens.ValidateToken(r.Context(), strings.TrimSpace(token))
		if err != nil {
			s.writeError(w, r, "", err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), info)))
	})
}

func (s *Server) invoke(fn Function) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		if err := authorize(CallerFrom(r.Context()), fn.Roles); err != nil {
			s.writeError(w, r, fn.Name, err)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			s.writeError(w, r, fn.Name, errors.NewValidationError("read body: "+err.Error()))
			return
		}
		if len(strings.TrimSpace(string(body))) == 0 {
			body = []byte("{}")
		}

		if fn.Schema != nil {
			res, err := fn.Schema.ValidateBytes(body)
			if err != nil {
				s.writeError(w, r, fn.Name, errors.NewValidationError(err.Error()))
				return
			}
			if !res.Valid {
				s.writeError(w, r, fn.Name, errors.NewValidationError(res.Error()))
				return
			}
		}

		out, err := fn.Invoke(r.Context(), body)
		if err != nil {
			s.writeError(w, r, fn.Name, err)
			return
		}

		metrics.FunctionRequests.WithLabelValues(fn.Name, strconv.Itoa(http.StatusOK)).Inc()
		s.logger.Debug("function completed", map[string]interface{}{
			"function":  fn.Name,
			"requestId": middleware.GetReqID(r.Context()),
			"duration":  time.Since(start).String(),
		})
		render.Status(r, http.StatusOK)
		render.JSON(w, r, out)
	}
}

// writeError maps err to a status. Client errors carry the message, details and metadata;
// server errors return a generic message and keep the details in the log.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, name string, err error) {
	stdErr := errors.AsStandardError(err)
	status := errors.HTTPStatus(stdErr.Code)

	fields := map[string]interface{}{
		"function":  name,
		"requestId": middleware.GetReqID(r.Context()),
		"errorCode": string(stdErr.Code),
		"details":   stdErr.Details,
	}

	body := map[string]interface{}{}
	if status == http.StatusInternalServerError {
		s.logger.Error("function failed", fields)
		body["error"] = "Internal server error"
	} else {
		s.logger.Info("function rejected request", fields)
		for k, v := range stdErr.Metadata {
			body[k] = v
		}
		body["error"] = stdErr.Message
		body["code"] = string(stdErr.Code)
		if stdErr.Details != "" {
			body["details"] = stdErr.Details
		}
	}

	if name != "" {
		metrics.FunctionRequests.WithLabelValues(name, strconv.Itoa(status)).Inc()
	}
	render.Status(r, status)
	render.JSON(w, r, body)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) readiness(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			s.logger.Warn("readiness check failed", map[string]interface{}{"error": err.Error()})
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, map[string]string{"status": "unavailable"})
			return
		}
	}
	render.JSON(w, r, map[string]string{
		"status": "ready",
		"time":   time.Now().Format(time.RFC3339),
	})
}
