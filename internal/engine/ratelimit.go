package engine

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/infra"
	"go.uber.org/zap"
)

// LimiterStore — явно инжектируемое хранилище счетчиков окна.
// Никакого process-global состояния: в проде за интерфейсом стоит Redis,
// так лимит общий на все инстансы и переживает рестарты.
type LimiterStore interface {
	// Incr увеличивает счетчик ключа и выставляет TTL, возвращает новое значение
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

type RedisLimiterStore struct {
	rdb *redis.Client
}

func NewRedisLimiterStore(rdb *redis.Client) *RedisLimiterStore {
	return &RedisLimiterStore{rdb: rdb}
}

func (s *RedisLimiterStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	pipe := s.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// RateLimiter — фиксированное окно на клиента для публичного эндпоинта проверки
type RateLimiter struct {
	store  LimiterStore
	limit  int64
	window time.Duration
	logger *zap.Logger
}

func NewRateLimiter(store LimiterStore, limit int64, window time.Duration, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		store:  store,
		limit:  limit,
		window: window,
		logger: logger.Named("ratelimit"),
	}
}

// Middleware интегрирует лимитер в HTTP-пайплайн
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject := clientIP(r)
		window := time.Now().Truncate(rl.window)
		key := infra.RateLimitKey(subject, window)

		count, err := rl.store.Incr(r.Context(), key, rl.window)
		if err != nil {
			// Fail-open: лежащий Redis не должен останавливать проверки
			rl.logger.Warn("rate limit store unavailable, allowing request", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		if count > rl.limit {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{
				"error":   "rate limit exceeded",
				"details": "too many compliance checks, slow down",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP — ключ лимита. chi middleware.RealIP уже подменил RemoteAddr
// значением из X-Forwarded-For/X-Real-IP, если запрос шел через прокси.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
