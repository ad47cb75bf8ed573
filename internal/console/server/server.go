package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xela07ax/cybermarket-dashboard/internal/console/handler"
	"go.uber.org/zap"
)

// ConsoleServer: локальная HTTP-поверхность клиента дашборда.
type ConsoleServer struct {
	router   *chi.Mux
	logger   *zap.Logger
	gatherer prometheus.Gatherer

	dashHandler     *handler.DashboardHandler // /api/v1/dashboard
	packagesHandler *handler.PackagesHandler  // /api/v1/packages
	ticketsHandler  *handler.TicketsHandler   // /api/v1/tickets
}

func NewConsoleServer(
	logger *zap.Logger,
	gatherer prometheus.Gatherer,
	dashH *handler.DashboardHandler,
	packagesH *handler.PackagesHandler,
	ticketsH *handler.TicketsHandler,
) *ConsoleServer {
	s := &ConsoleServer{
		router:          chi.NewRouter(),
		logger:          logger.Named("console-api"),
		gatherer:        gatherer,
		dashHandler:     dashH,
		packagesHandler: packagesH,
		ticketsHandler:  ticketsH,
	}

	s.routes()
	return s
}

func (s *ConsoleServer) routes() {
	r := s.router

	// --- 1. Инфраструктурные Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	// --- 2. Служебные роуты ---
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	// --- 3. Дашборд и списки ---
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/dashboard", s.dashHandler.GetSnapshot)
		r.Post("/dashboard/refetch", s.dashHandler.Refetch)

		if s.packagesHandler != nil {
			r.Get("/packages", s.packagesHandler.List)
			r.Post("/packages", s.packagesHandler.Create)
		}

		if s.ticketsHandler != nil {
			r.Route("/tickets", func(r chi.Router) {
				r.Get("/", s.ticketsHandler.List)
				r.Post("/", s.ticketsHandler.Create)
				r.Put("/{id}", s.ticketsHandler.Respond)
			})
		}
	})
}

// ServeHTTP позволяет использовать ConsoleServer как стандартный http.Handler
func (s *ConsoleServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestLogger пишет каждый запрос в zap вместе с request id из chi.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
