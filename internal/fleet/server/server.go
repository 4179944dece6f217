package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xela07ax/robofleet/internal/fleet/handler"
	"github.com/xela07ax/robofleet/internal/infra"
	"github.com/xela07ax/robofleet/internal/infra/auth"
	"github.com/xela07ax/robofleet/internal/stream"
	"go.uber.org/zap"
)

type FleetServer struct {
	router  *chi.Mux
	logger  *zap.Logger
	cfg     *infra.Config
	metrics *infra.Metrics

	// Интерфейс для проверки токенов (RS256)
	authValidator auth.TokenValidator

	// Обработчики бизнес-доменов
	authHandler  *handler.AuthHandler  // /api/auth
	robotHandler *handler.RobotHandler // /api/robots
	taskHandler  *handler.TaskHandler  // /api/tasks
	wsHandler    *stream.WSHandler     // /ws

	promRegistry *prometheus.Registry
}

// NewFleetServer инициализирует HTTP-поверхность реестра со всеми зависимостями
func NewFleetServer(
	cfg *infra.Config,
	logger *zap.Logger,
	metrics *infra.Metrics,
	validator auth.TokenValidator,
	authH *handler.AuthHandler,
	robotH *handler.RobotHandler,
	taskH *handler.TaskHandler,
	wsH *stream.WSHandler,
	promRegistry *prometheus.Registry,
) *FleetServer {
	s := &FleetServer{
		router:        chi.NewRouter(),
		logger:        logger.Named("fleet-api"),
		cfg:           cfg,
		metrics:       metrics,
		authValidator: validator,
		authHandler:   authH,
		robotHandler:  robotH,
		taskHandler:   taskH,
		wsHandler:     wsH,
		promRegistry:  promRegistry,
	}

	s.routes()
	return s
}

func (s *FleetServer) routes() {
	r := s.router

	// --- 1. Глобальные инфраструктурные Middleware (для всех) ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	limiter := newIPLimiter(s.cfg.Server.RateLimitRPS, s.cfg.Server.RateLimitBurst)
	r.Use(limiter.Middleware)

	// --- 2. ПУБЛИЧНЫЕ РОУТЫ (открыты для всех) ---
	r.Group(func(r chi.Router) {
		// Регистрация и логин доступны без токена
		r.Post("/api/auth/register", s.authHandler.Register)
		r.Post("/api/auth/token", s.authHandler.Login)

		// Realtime-подписка на поток мутаций
		r.Get("/ws", s.wsHandler.ServeHTTP)

		// Healthcheck для мониторинга
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		if s.promRegistry != nil {
			r.Method(http.MethodGet, "/metrics",
				promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}))
		}
	})

	// --- 3. ЗАЩИЩЕННЫЙ ПЕРИМЕТР (требует RS256 токен) ---
	r.Group(func(r chi.Router) {
		r.Use(auth.NewMiddleware(s.authValidator, s.logger))

		// Реестр роботов
		r.Route("/api/robots", func(r chi.Router) {
			r.Get("/", s.robotHandler.List)
			r.Post("/", s.robotHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.robotHandler.Get)
				r.Put("/", s.robotHandler.Update)
				r.Delete("/", s.robotHandler.Delete)
			})
		})

		// Задачи роботов
		r.Route("/api/tasks", func(r chi.Router) {
			r.Get("/", s.taskHandler.List)
			r.Post("/", s.taskHandler.Create)
			r.Get("/robot/{robotID}", s.taskHandler.ListByRobot)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.taskHandler.Get)
				r.Put("/", s.taskHandler.Update)
				r.Delete("/", s.taskHandler.Delete)
			})
		})
	})
}

// observe пишет латентность запроса в prometheus-гистограмму.
func (s *FleetServer) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		if s.metrics == nil {
			return
		}
		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.RequestDuration.
			WithLabelValues(route, r.Method, strconv.Itoa(ww.Status())).
			Observe(time.Since(start).Seconds())
	})
}

// ServeHTTP позволяет использовать FleetServer как стандартный http.Handler
func (s *FleetServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
