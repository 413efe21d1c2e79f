package api

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/preetimant/coursesensei/pkg/engine"
)

// Context keys
type contextKey string

const traceIDKey contextKey = "trace_id"

// MaxBodyBytes bounds the size of a fulfillment request body.
const MaxBodyBytes = 1 << 20

// OutcomeHeader carries the answer classification on webhook responses.
const OutcomeHeader = "X-CourseSensei-Outcome"

// Fulfiller answers intent requests.
type Fulfiller interface {
	Handle(ctx context.Context, req engine.Request) engine.Response
	Intents() []string
}

// Server encapsulates the HTTP webhook server
type Server struct {
	fulfiller Fulfiller
	server    *http.Server
	logger    *slog.Logger

	kb *KnowledgeBaseInfo

	// TLS Config
	tlsCertFile string
	tlsKeyFile  string

	// sha256 of the shared webhook token; empty disables auth
	tokenHash string
}

// NewServer creates a new webhook server instance
func NewServer(f Fulfiller, addr string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8090"
	}

	s := &Server{
		fulfiller: f,
		logger:    logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/health", s.handleHealth)
	mux.HandleFunc("/v1/intents", s.handleIntents)
	mux.HandleFunc("/webhook", s.withAuth(s.handleWebhook))
	mux.Handle("/metrics", promhttp.Handler())

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.withLogging(s.withRecovery(withSecureHeaders(withMetrics(mux)))),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	return s
}

// Handler returns the fully wrapped handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// SetTLS configures the server to use TLS
func (s *Server) SetTLS(certFile, keyFile string) {
	s.tlsCertFile = certFile
	s.tlsKeyFile = keyFile
}

// SetAuthToken requires callers of /webhook to present the token as a
// bearer credential. An empty token disables the check.
func (s *Server) SetAuthToken(token string) {
	if token == "" {
		s.tokenHash = ""
		return
	}
	s.tokenHash = hashToken(token)
}

// SetKnowledgeBase records the loaded knowledge base for health reports.
func (s *Server) SetKnowledgeBase(info KnowledgeBaseInfo) {
	s.kb = &info
}

// Start runs the HTTP server (blocking)
func (s *Server) Start() error {
	s.logger.Info("server started", "addr", s.server.Addr, "tls", s.tlsCertFile != "")
	var err error
	if s.tlsCertFile != "" && s.tlsKeyFile != "" {
		err = s.server.ListenAndServeTLS(s.tlsCertFile, s.tlsKeyFile)
	} else {
		err = s.server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("server stopping")
	return s.server.Shutdown(ctx)
}

// handleWebhook maps a fulfillment request onto the engine and back.
// Every decodable or undecodable request is answered with 200 so the agent
// platform always has a text to speak.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}
	traceID := getTraceID(r.Context())

	var req WebhookRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		s.logger.Warn("invalid webhook body", "trace_id", traceID, "error", err)
		w.Header().Set(OutcomeHeader, string(engine.OutcomeError))
		writeJSON(w, WebhookResponse{FulfillmentText: engine.MsgInternalError})
		return
	}

	resp := s.fulfiller.Handle(r.Context(), toEngineRequest(req))

	s.logger.Info("intent fulfilled",
		"trace_id", traceID,
		"intent", req.QueryResult.Intent.DisplayName,
		"outcome", resp.Outcome,
	)

	w.Header().Set(OutcomeHeader, string(resp.Outcome))
	writeJSON(w, WebhookResponse{
		FulfillmentText: resp.Text,
		OutputContexts:  fromEngineContexts(req.Session, resp.Contexts),
	})
}

func toEngineRequest(req WebhookRequest) engine.Request {
	qr := req.QueryResult
	contexts := make([]engine.Context, 0, len(qr.OutputContexts))
	for _, c := range qr.OutputContexts {
		contexts = append(contexts, engine.Context{
			Name:       shortContextName(c.Name),
			Lifespan:   c.LifespanCount,
			Parameters: c.Parameters,
		})
	}
	return engine.Request{
		Intent:   qr.Intent.DisplayName,
		Params:   qr.Parameters,
		Contexts: contexts,
	}
}

func fromEngineContexts(session string, contexts []engine.Context) []OutputContext {
	if len(contexts) == 0 {
		return nil
	}
	out := make([]OutputContext, 0, len(contexts))
	for _, c := range contexts {
		out = append(out, OutputContext{
			Name:          qualifiedContextName(session, c.Name),
			LifespanCount: c.Lifespan,
			Parameters:    c.Parameters,
		})
	}
	return out
}

// shortContextName strips the "<session>/contexts/" prefix.
func shortContextName(name string) string {
	if i := strings.LastIndex(name, "/contexts/"); i >= 0 {
		return name[i+len("/contexts/"):]
	}
	return name
}

func qualifiedContextName(session, name string) string {
	if session == "" {
		return name
	}
	return strings.TrimRight(session, "/") + "/contexts/" + name
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, HealthResponse{Status: "ok", KnowledgeBase: s.kb})
}

func (s *Server) handleIntents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, IntentsResponse{Intents: s.fulfiller.Intents()})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error":"internal_server_error"}`, http.StatusInternalServerError)
	}
}

// Middleware: Authentication
func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.tokenHash == "" {
			next(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, `{"error":"unauthorized","reason":"missing_token"}`, http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, `{"error":"unauthorized","reason":"invalid_token_format"}`, http.StatusUnauthorized)
			return
		}

		if subtle.ConstantTimeCompare([]byte(hashToken(parts[1])), []byte(s.tokenHash)) != 1 {
			http.Error(w, `{"error":"unauthorized","reason":"invalid_token"}`, http.StatusUnauthorized)
			return
		}

		next(w, r)
	}
}

// Middleware: Panic Recovery
func (s *Server) withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.Error("panic recovered",
					"trace_id", getTraceID(r.Context()),
					"path", r.URL.Path,
					"error", fmt.Sprint(err),
				)
				if r.URL.Path == "/webhook" {
					w.Header().Set(OutcomeHeader, string(engine.OutcomeError))
					writeJSON(w, WebhookResponse{FulfillmentText: engine.MsgInternalError})
					return
				}
				http.Error(w, `{"error":"internal_server_error"}`, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Middleware: Request Logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), traceIDKey, traceID)
		r = r.WithContext(ctx)

		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		w.Header().Set("X-Trace-ID", traceID)

		next.ServeHTTP(ww, r)

		s.logger.Info("http request",
			"trace_id", traceID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// Middleware: Prometheus request metrics
func withMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(ww, r)

		route := routeLabel(r.URL.Path)
		HTTPRequests.WithLabelValues(r.Method, route, fmt.Sprint(ww.status)).Inc()
		HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// routeLabel keeps the metric label set bounded.
func routeLabel(path string) string {
	switch path {
	case "/webhook", "/v1/health", "/v1/intents", "/metrics":
		return path
	default:
		return "other"
	}
}

// Middleware: Secure Headers
func withSecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		w.Header().Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")

		next.ServeHTTP(w, r)
	})
}

func getTraceID(ctx context.Context) string {
	if v, ok := ctx.Value(traceIDKey).(string); ok {
		return v
	}
	return ""
}

// statusWriter captures HTTP status code
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
