package ai

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/domain"
	"go.uber.org/zap"
)

// FallbackReason — текст причины при недоступности AI.
// Контракт API, менять нельзя.
const FallbackReason = "AI analysis unavailable - manual review recommended"

// Fallback — нейтральная оценка "анализ недоступен".
// Пайплайн обязан выдать вердикт даже при лежащем провайдере.
func Fallback() Analysis {
	return Analysis{Score: 0.5, Reasons: []string{FallbackReason}}
}

// Assessor — верхний слой AI-оценки: здесь умирают все ошибки.
// Сетевые сбои, не-2xx, битый JSON, открытый предохранитель — всё
// превращается в нейтральный fallback и никогда не роняет проверку.
type Assessor struct {
	next      Caller
	fallbacks prometheus.Counter // может быть nil в тестах
	logger    *zap.Logger
}

func NewAssessor(next Caller, fallbacks prometheus.Counter, logger *zap.Logger) *Assessor {
	return &Assessor{
		next:      next,
		fallbacks: fallbacks,
		logger:    logger.Named("ai-assessor"),
	}
}

func (a *Assessor) Analyze(ctx context.Context, asset *domain.Asset) Analysis {
	res, err := a.next.Assess(ctx, asset)
	if err != nil {
		a.logger.Warn("ai compliance analysis failed, using neutral fallback",
			zap.String("asset_id", asset.ID),
			zap.String("symbol", asset.Symbol),
			zap.Error(err))
		if a.fallbacks != nil {
			a.fallbacks.Inc()
		}
		return Fallback()
	}
	return res
}
