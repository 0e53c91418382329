package service

import (
	"context"
	"fmt"

	"github.com/xela07ax/shariaai-compliance-prototype/internal/audit"
)

// AuditLogProvider описывает контракт для чтения данных аудита.
// Используем структуру audit.Entry, чтобы сохранить единую модель данных.
type AuditLogProvider interface {
	FetchEntries(ctx context.Context, actor, resourceID string, limit int) ([]audit.Entry, error)
}

type AuditService struct {
	repo AuditLogProvider
}

func NewAuditService(repo AuditLogProvider) *AuditService {
	return &AuditService{
		repo: repo,
	}
}

// FetchLogs запрашивает записи журнала с фильтрацией.
// Логика фильтров (пустые строки или конкретные ID) инкапсулирована в репозитории.
func (s *AuditService) FetchLogs(ctx context.Context, actor, resourceID string, limit int) ([]audit.Entry, error) {
	logs, err := s.repo.FetchEntries(ctx, actor, resourceID, limit)
	if err != nil {
		return nil, fmt.Errorf("audit_service: failed to fetch logs: %w", err)
	}
	return logs, nil
}
