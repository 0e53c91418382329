package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/console/handler"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/engine"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/infra"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/infra/auth"
	"go.uber.org/zap"
)

type Server struct {
	router *chi.Mux
	logger *zap.Logger
	cfg    *infra.Config

	// Интерфейс для проверки токенов (RS256)
	authValidator auth.TokenValidator

	// Rate limiter публичной поверхности (Redis INCR + TTL)
	rateLimiter *engine.RateLimiter

	// Обработчики бизнес-доменов
	authHandler  *handler.AuthHandler  // /auth/token
	checkHandler *handler.CheckHandler // /v1/compliance
	ruleHandler  *handler.RuleHandler  // /v1/rules
	auditHandler *handler.AuditHandler // /v1/audit (Logs)
}

// NewServer инициализирует HTTP-сервер со всеми зависимостями
func NewServer(
	cfg *infra.Config,
	logger *zap.Logger,
	validator auth.TokenValidator,
	rateLimiter *engine.RateLimiter,
	authH *handler.AuthHandler,
	checkH *handler.CheckHandler,
	ruleH *handler.RuleHandler,
	auditH *handler.AuditHandler,
) *Server {
	s := &Server{
		router:        chi.NewRouter(),
		logger:        logger.Named("compliance-api"),
		cfg:           cfg,
		authValidator: validator,
		rateLimiter:   rateLimiter,
		authHandler:   authH,
		checkHandler:  checkH,
		ruleHandler:   ruleH,
		auditHandler:  auditH,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router

	// --- 1. Глобальные инфраструктурные Middleware (для всех) ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	// --- 2. ПУБЛИЧНЫЕ РОУТЫ (Открыты для всех) ---
	r.Group(func(r chi.Router) {
		// Логин должен быть доступен без токена
		r.Post("/auth/token", s.authHandler.Login)

		// Healthcheck для мониторинга
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		// Публичная поверхность проверки активов.
		// Запуск пайплайна дорогой (внешний AI-вызов), поэтому только он под лимитом
		r.Group(func(r chi.Router) {
			r.Use(s.rateLimiter.Middleware)
			r.Post("/v1/compliance/check", s.checkHandler.Check)
		})
		r.Get("/v1/compliance/{asset_id}", s.checkHandler.GetVerdict)
	})

	// --- 3. ЗАЩИЩЕННЫЙ ПЕРИМЕТР (Требуют RS256 токен + роль admin) ---
	r.Group(func(r chi.Router) {
		r.Use(auth.NewMiddleware(s.authValidator, s.logger))
		r.Use(auth.RequireRole("admin"))

		// Управление правилами шариатского скрининга
		r.Route("/v1/rules", func(r chi.Router) {
			r.Get("/", s.ruleHandler.List)    // Все правила (включая выключенные)
			r.Post("/", s.ruleHandler.Create) // Создание нового + Redis Publish
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.ruleHandler.Get)       // Детали правила
				r.Put("/", s.ruleHandler.Update)    // Редактирование (criteria/is_active)
				r.Delete("/", s.ruleHandler.Delete) // Удаление
			})
		})

		// Аудит и Логи (Observability)
		r.Get("/v1/audit", s.auditHandler.GetLogs)
	})
}

// corsMiddleware открывает API для браузерных клиентов с любых Origin.
// Preflight-запросы (OPTIONS) завершаются сразу, без прохода по роутам.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ServeHTTP позволяет использовать Server как стандартный http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
