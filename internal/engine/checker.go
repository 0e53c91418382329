package engine

/*
Файл checker.go — оркестрация пайплайна шариатской проверки актива.

Последовательность: актив и активные правила → автоматический скрининг →
качественная AI-оценка → линейное слияние баллов → классификация →
upsert вердикта → запись в аудит. Ответ клиенту all-or-nothing: частичных
вердиктов не бывает, хотя внутри отдельные шаги (AI, аудит) переживают
собственные сбои.

Фатальны для запроса: отсутствие актива, недоступность хранилища правил,
сбой upsert-а вердикта. Нефатальны: падение отдельного правила (пропуск),
любой сбой AI (нейтральный fallback), сбой записи аудита (best-effort).
*/

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/ai"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/audit"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/domain"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/scoring"
	"go.uber.org/zap"
)

// Идентичность чекера для автоматических прогонов без инициатора
const (
	automatedChecker = "automated"
	systemActor      = "system"
)

// AssetSource — читающий доступ к каталогу активов.
// Возвращает nil, nil если актива нет (трактуется как 404).
type AssetSource interface {
	GetAssetByID(ctx context.Context, id string) (*domain.Asset, error)
}

// RuleSource — поставщик активных правил (кэш либо напрямую БД)
type RuleSource interface {
	ActiveRules(ctx context.Context) ([]domain.ComplianceRule, error)
}

// VerdictStore — единственная запись, чей сбой фатален для запроса
type VerdictStore interface {
	UpsertVerdict(ctx context.Context, v *domain.ComplianceVerdict) error
}

// Analyzer — AI-оценка. Ошибок не возвращает: слой сам гасит их fallback-ом
type Analyzer interface {
	Analyze(ctx context.Context, asset *domain.Asset) ai.Analysis
}

type Checker struct {
	assets    AssetSource
	rules     RuleSource
	verdicts  VerdictStore
	evaluator *scoring.Evaluator
	assessor  Analyzer
	journal   audit.Logger
	metrics   *Metrics
	logger    *zap.Logger
}

func NewChecker(
	assets AssetSource,
	rules RuleSource,
	verdicts VerdictStore,
	evaluator *scoring.Evaluator,
	assessor Analyzer,
	journal audit.Logger,
	metrics *Metrics,
	logger *zap.Logger,
) *Checker {
	return &Checker{
		assets:    assets,
		rules:     rules,
		verdicts:  verdicts,
		evaluator: evaluator,
		assessor:  assessor,
		journal:   journal,
		metrics:   metrics,
		logger:    logger.Named("checker"),
	}
}

// Run выполняет одну проверку. userID опционален: пустая строка означает
// системный запуск (планировщик, пайплайн ингеста).
func (c *Checker) Run(ctx context.Context, assetID, userID string) (*domain.CheckResult, error) {
	start := time.Now()
	metricStatus := "error"
	defer func() {
		c.metrics.CheckDuration.WithLabelValues(metricStatus).Observe(time.Since(start).Seconds())
	}()

	c.logger.Info("starting compliance check", zap.String("asset_id", assetID))

	// 1. Актив
	asset, err := c.assets.GetAssetByID(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("asset lookup: %w", err)
	}
	if asset == nil {
		return nil, domain.ErrAssetNotFound
	}

	// 2. Активные правила (сбой поставщика фатален: без правил вердикт
	// был бы чистым мнением модели, это ломает контракт весов)
	activeRules, err := c.rules.ActiveRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("compliance rules fetch: %w", err)
	}

	// 3-4. Скрининг правилами и AI-оценка.
	// Идут последовательно: эвалуатор — чистый in-memory проход, совмещать
	// его с многосекундным сетевым вызовом нет смысла.
	auto := c.evaluator.Evaluate(asset, activeRules)
	aiRes := c.assessor.Analyze(ctx, asset)

	// 5. Слияние и классификация
	finalScore := scoring.Combine(auto.Score, aiRes.Score)
	status := scoring.Classify(finalScore)

	reasons := make([]string, 0, len(auto.Reasons)+len(aiRes.Reasons))
	reasons = append(reasons, auto.Reasons...)
	reasons = append(reasons, aiRes.Reasons...)

	checkedBy := userID
	if checkedBy == "" {
		checkedBy = automatedChecker
	}
	now := time.Now().UTC()

	// 6. Вердикт. Единственная запись, чей сбой отдаем клиенту:
	// частично применённый результат хуже честной ошибки.
	verdict := &domain.ComplianceVerdict{
		AssetID:        assetID,
		Status:         status,
		Score:          finalScore,
		Reasons:        reasons,
		LastChecked:    now,
		CheckedBy:      checkedBy,
		AutomatedCheck: true,
	}
	if err := c.verdicts.UpsertVerdict(ctx, verdict); err != nil {
		return nil, fmt.Errorf("verdict upsert: %w", err)
	}

	// 7. Аудит — асинхронный и best-effort
	actor := userID
	if actor == "" {
		actor = systemActor
	}
	c.journal.Log(audit.Entry{
		ID:           uuid.New().String(),
		Actor:        actor,
		Action:       audit.ActionComplianceCheck,
		ResourceType: "asset",
		ResourceID:   assetID,
		Metadata: map[string]interface{}{
			"compliance_status": string(status),
			"compliance_score":  finalScore,
		},
		Timestamp: now,
	})

	metricStatus = string(status)
	c.metrics.ChecksTotal.WithLabelValues(string(status)).Inc()

	c.logger.Info("compliance check completed",
		zap.String("symbol", asset.Symbol),
		zap.String("status", string(status)),
		zap.Float64("score", finalScore))

	return &domain.CheckResult{
		AssetID:   assetID,
		Symbol:    asset.Symbol,
		Status:    status,
		Score:     finalScore,
		Reasons:   reasons,
		CheckedAt: now,
	}, nil
}
