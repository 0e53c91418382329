package ai

import (
	"context"
	"fmt"

	"github.com/sony/gobreaker"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/domain"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/infra"
	"golang.org/x/time/rate"
)

// Guard оборачивает вызов AI-провайдера в Circuit Breaker и клиентский
// rate limiter. Ретраев здесь нет: неудачный вызов сразу уходит наверх,
// где превращается в нейтральный fallback. Предохранитель нужен, чтобы при
// лежащем провайдере не жечь таймаут на каждом запросе проверки.
type Guard struct {
	next    Caller
	cb      *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

// NewGuard настраивает предохранитель по CheckerConfig.
// onStateChange (опционально) дергается при переключении CB — для метрик.
func NewGuard(next Caller, cfg infra.CheckerConfig, onStateChange func(open bool)) *Guard {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openai-assessor",
		MaxRequests: cfg.CBMaxRequests,
		Interval:    cfg.CBInterval,
		Timeout:     cfg.CBTimeout, // Время, через которое CB попробует "закрыться"
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > cfg.CBFailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if onStateChange != nil {
				onStateChange(to == gobreaker.StateOpen)
			}
		},
	})

	return &Guard{
		next:    next,
		cb:      cb,
		limiter: rate.NewLimiter(rate.Limit(cfg.AIRateLimit), cfg.AIRateBurst),
	}
}

func (g *Guard) Assess(ctx context.Context, asset *domain.Asset) (Analysis, error) {
	// 1. Rate Limiter (ждем слот, но не дольше дедлайна запроса)
	if err := g.limiter.Wait(ctx); err != nil {
		return Analysis{}, fmt.Errorf("ai rate limit exceeded: %w", err)
	}

	// 2. Circuit Breaker
	result, err := g.cb.Execute(func() (interface{}, error) {
		return g.next.Assess(ctx, asset)
	})
	if err != nil {
		return Analysis{}, err
	}

	return result.(Analysis), nil
}
