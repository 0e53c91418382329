package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xela07ax/shariaai-compliance-prototype/internal/ai"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/audit"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/console/handler"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/console/server"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/console/service"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/engine"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/infra"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/infra/auth"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/repository/postgres"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/rules"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/scoring"
)

func main() {
	// 1. Конфигурация и логгер
	cfg, err := infra.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	// Контекст для управления жизненным циклом фоновых горутин.
	// При срабатывании SIGTERM cancel() остановит слушателей
	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Инфраструктура и ресурсы
	pool, err := postgres.Connect(appCtx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	// Репозитории
	assetRepo := postgres.NewAssetRepo(pool)
	ruleRepo := postgres.NewRuleRepo(pool)
	verdictRepo := postgres.NewVerdictRepo(pool)
	auditRepo := postgres.NewAuditRepo(pool)
	userRepo := postgres.NewUserRepo(pool)

	// 3. Метрики (отдельный листенер для Prometheus)
	reg := prometheus.NewRegistry()
	metrics := engine.NewMetrics(reg)

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		logger.Info("metrics listener started", zap.String("addr", cfg.Metrics.Addr))
		if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
			logger.Error("metrics listener stopped", zap.Error(err))
		}
	}()

	// 4. Журнал аудита (буферизация + пакетная запись в Postgres)
	journal := audit.NewJournal(
		auditRepo,
		logger,
		cfg.Checker.AuditBufferSize,
		cfg.Checker.AuditFlushInterval,
		metrics.AuditBufferFill,
	)
	journal.Start()

	// 5. Кэш правил с инвалидацией через Redis Pub/Sub
	ruleCache := rules.NewCache(ruleRepo, rdb, logger)
	if err := ruleCache.Init(appCtx); err != nil {
		logger.Fatal("failed to init rule cache", zap.Error(err))
	}
	go ruleCache.StartListener(appCtx)

	// 6. AI-слой: клиент -> защита (CB + лимитер) -> fallback
	aiClient := ai.NewOpenAIClient(cfg.OpenAI)
	aiGuard := ai.NewGuard(aiClient, cfg.Checker, func(open bool) {
		if open {
			metrics.BreakerState.Set(1)
		} else {
			metrics.BreakerState.Set(0)
		}
	})
	assessor := ai.NewAssessor(aiGuard, metrics.AIFallbackTotal, logger)

	// 7. Ядро пайплайна проверки
	evaluator := scoring.NewEvaluator(logger)
	checker := engine.NewChecker(
		assetRepo,
		ruleCache,
		verdictRepo,
		evaluator,
		assessor,
		journal,
		metrics,
		logger,
	)

	// 8. Аутентификация консоли (RS256)
	publicKey, err := auth.ParseRSAPublicKey(cfg.Auth.PublicKey)
	if err != nil {
		logger.Fatal("failed to parse auth public key", zap.Error(err))
	}
	privateKey, err := auth.ParseRSAPrivateKey(cfg.Auth.PrivateKey)
	if err != nil {
		logger.Fatal("failed to parse auth private key", zap.Error(err))
	}
	validator := auth.NewBaseValidator(publicKey)

	// 9. Сервисы и обработчики
	authService := service.NewAuthService(userRepo, privateKey, cfg.Auth.TokenTTL)
	ruleService := service.NewRuleService(ruleRepo, rdb, journal, logger)
	auditService := service.NewAuditService(auditRepo)

	authHandler := handler.NewAuthHandler(authService)
	checkHandler := handler.NewCheckHandler(checker, verdictRepo, logger)
	ruleHandler := handler.NewRuleHandler(ruleService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Rate limiter публичного эндпоинта проверки (Redis INCR + TTL)
	rateLimiter := engine.NewRateLimiter(
		engine.NewRedisLimiterStore(rdb),
		cfg.Checker.PublicRateLimit,
		cfg.Checker.PublicRateWindow,
		logger,
	)

	apiServer := server.NewServer(
		cfg,
		logger,
		validator,
		rateLimiter,
		authHandler,
		checkHandler,
		ruleHandler,
		auditHandler,
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      apiServer,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 10. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("compliance checker started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	<-stop // Ждем сигнал
	logger.Info("compliance checker stopping...")

	// Даем 5 секунд на завершение запросов
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	// Останавливаем фоновые горутины и дожимаем буфер аудита в БД
	cancel()
	journal.Stop()
	logger.Info("compliance checker exited properly")
}
