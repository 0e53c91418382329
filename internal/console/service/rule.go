package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/audit"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/domain"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/infra"
	infraauth "github.com/xela07ax/shariaai-compliance-prototype/internal/infra/auth"
	"go.uber.org/zap"
)

// RuleRepository описывает требования сервиса к хранилищу правил
type RuleRepository interface {
	GetRuleByID(ctx context.Context, id string) (*domain.ComplianceRule, error)
	GetAllRules(ctx context.Context) ([]domain.ComplianceRule, error)
	CreateRule(ctx context.Context, rule *domain.ComplianceRule) error
	UpdateRule(ctx context.Context, rule *domain.ComplianceRule) error
	DeleteRule(ctx context.Context, id string) error
}

type RuleService struct {
	repo    RuleRepository
	rdb     *redis.Client
	journal audit.Logger
	logger  *zap.Logger
}

func NewRuleService(repo RuleRepository, rdb *redis.Client, journal audit.Logger, logger *zap.Logger) *RuleService {
	return &RuleService{
		repo:    repo,
		rdb:     rdb,
		journal: journal,
		logger:  logger.Named("rule-service"),
	}
}

func (s *RuleService) GetByID(ctx context.Context, id string) (*domain.ComplianceRule, error) {
	return s.repo.GetRuleByID(ctx, id)
}

// GetAll возвращает все правила (включая выключенные) для консоли
func (s *RuleService) GetAll(ctx context.Context) ([]domain.ComplianceRule, error) {
	return s.repo.GetAllRules(ctx)
}

// Create сохраняет правило и уведомляет инстансы чекера об обновлении
func (s *RuleService) Create(ctx context.Context, rule *domain.ComplianceRule) error {
	if err := s.repo.CreateRule(ctx, rule); err != nil {
		return err
	}
	s.auditMutation(ctx, audit.ActionCreate, rule.ID)
	return s.notifyUpdate(ctx)
}

// Update обновляет правило и инициирует инвалидацию кэша
func (s *RuleService) Update(ctx context.Context, rule *domain.ComplianceRule) error {
	if err := s.repo.UpdateRule(ctx, rule); err != nil {
		return err
	}
	s.auditMutation(ctx, audit.ActionUpdate, rule.ID)
	return s.notifyUpdate(ctx)
}

// Delete удаляет правило
func (s *RuleService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteRule(ctx, id); err != nil {
		return err
	}
	s.auditMutation(ctx, audit.ActionDelete, id)
	return s.notifyUpdate(ctx)
}

// notifyUpdate отправляет широковещательный сигнал в Redis.
// Все инстансы, подписанные на канал, перечитают таблицу правил в свой кэш.
func (s *RuleService) notifyUpdate(ctx context.Context) error {
	// Сигнал может быть простым "refresh": получатель сам перечитает всю таблицу
	if err := s.rdb.Publish(ctx, infra.RedisChanRuleUpdate, "refresh").Err(); err != nil {
		return fmt.Errorf("rule update broadcast failed: %w", err)
	}
	return nil
}

// auditMutation фиксирует административное изменение правил в журнале
func (s *RuleService) auditMutation(ctx context.Context, action, ruleID string) {
	actor := infraauth.UserID(ctx)
	if actor == "" {
		actor = "system"
	}
	s.logger.Info("rule mutation recorded",
		zap.String("action", action),
		zap.String("rule_id", ruleID),
		zap.String("actor", actor))
	s.journal.Log(audit.Entry{
		ID:           uuid.New().String(),
		Actor:        actor,
		Action:       action,
		ResourceType: "compliance_rule",
		ResourceID:   ruleID,
	})
}
