package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"notare/internal/cache"
	"notare/internal/chat"
	"notare/internal/log"
	"notare/internal/middleware/ratelimit"
	"notare/internal/middleware/security"
	"notare/internal/middleware/trace"
	"notare/internal/services"
	appweb "notare/web"
)

// ChatCookie carries the chat session ID.
const ChatCookie = "notare_chat"

const staticMaxAge = 3600

// Deps are the collaborators of the server. Journal is required.
type Deps struct {
	Journal *services.JournalService
	// Chat serves /chat. A nil hub disables the conversation panel.
	Chat   *chat.Hub
	Logger *log.Logger
	// Ping reports backend health on /readyz. Nil skips the check.
	Ping func(ctx context.Context) error

	RateLimitPerMinute int
	TrustedProxies     []string
	// CleanupInterval > 0 periodically expires rate limiter clients, idle
	// chat sessions and cached calendar lookups.
	CleanupInterval time.Duration
}

type Server struct {
	http.Server
	templates *template.Template
	journal   *services.JournalService
	chat      *chat.Hub
	ping      func(ctx context.Context) error
	logger    *log.Logger

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	caches           *cache.Manager
	appMetrics       *appMetrics

	shutdownOnce sync.Once
}

type appMetrics struct {
	uptime       time.Time
	writes       atomic.Int64
	writeErrors  atomic.Int64
	chatMessages atomic.Int64
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		journal:          deps.Journal,
		chat:             deps.Chat,
		ping:             deps.Ping,
		logger:           logger,
		securityDetector: security.NewDetector(),
		caches:           cache.NewManager(logger.Logger),
		appMetrics:       &appMetrics{uptime: time.Now()},
	}

	for _, cidr := range deps.TrustedProxies {
		if err := s.securityDetector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring invalid trusted proxy", "cidr", cidr, "error", err)
		}
	}
	s.rateLimiter = ratelimit.NewLimiter(ratelimit.Config{
		RequestsPerMinute: deps.RateLimitPerMinute,
		Exempt:            isOperational,
	})
	s.traceMiddleware = trace.NewMiddleware(logger, s.securityDetector.ExtractClientIP)

	s.caches.Register(s.rateLimiter)
	s.caches.Register(s.journal.LookupCache())
	if s.chat != nil {
		s.caches.Register(s.chat)
	}
	if deps.CleanupInterval > 0 {
		s.caches.StartCleanup(deps.CleanupInterval)
	}

	t, err := template.New("notare").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(staticMaxAge)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	page := func(h http.HandlerFunc) http.Handler { return security.NoStore(h) }

	mux.Handle("/", page(s.handleIndex))
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	// UI partials
	mux.Handle("/ui/calendar", page(s.handleCalendar))
	mux.Handle("/ui/mini-calendar", page(s.handleMiniCalendar))
	mux.Handle("/tasks", page(s.handleTasks))
	mux.Handle("/tasks/toggle", page(s.handleToggleTask))
	mux.Handle("/moods", page(s.handleMoods))
	mux.Handle("/entries", page(s.handleEntries))
	mux.Handle("/chat", page(s.handleChat))
	mux.Handle("/reports", page(s.handleReports))
	mux.Handle("/reports/export", page(s.handleReportExport))
	mux.Handle("/progress", page(s.handleProgress))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limited := s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, s.onRateLimited)

	var handler http.Handler = mux
	handler = limited(handler)
	handler = headers.Middleware(handler)
	handler = s.securityDetector.Middleware(handler)
	handler = log.ComponentMiddleware(log.ComponentHTTP)(handler)
	handler = s.traceMiddleware.Middleware(handler)
	s.Handler = handler

	return s
}

// Shutdown gracefully shuts down the server and its cleanup routine.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	s.requestLogger(r).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Muitas requisições, aguarde um minuto").Write(w)
}

func (s *Server) requestLogger(r *http.Request) *log.Logger {
	return log.FromContext(r.Context())
}

// isOperational matches probes and assets, which skip rate limiting.
func isOperational(r *http.Request) bool {
	switch r.URL.Path {
	case "/healthz", "/readyz", "/metrics":
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/static/")
}
