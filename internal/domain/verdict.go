package domain

import (
	"errors"
	"time"
)

// ComplianceStatus — итоговая классификация актива
type ComplianceStatus string

const (
	StatusHalal    ComplianceStatus = "halal"
	StatusHaram    ComplianceStatus = "haram"
	StatusDoubtful ComplianceStatus = "doubtful"

	// StatusPendingReview выставляется только поверхностью ручного ревью,
	// автоматический классификатор его никогда не возвращает
	StatusPendingReview ComplianceStatus = "pending_review"
)

// ComplianceVerdict — текущий вердикт по активу, строго 1:1 с Asset.
// Перезаписывается целиком при каждой проверке (upsert), история не ведется —
// за историей идем в audit_logs.
type ComplianceVerdict struct {
	AssetID string           `json:"asset_id"`
	Status  ComplianceStatus `json:"compliance_status"`
	Score   float64          `json:"compliance_score"` // всегда в [0,1]
	Reasons []string         `json:"compliance_reasons"`

	LastChecked    time.Time `json:"last_checked"`
	CheckedBy      string    `json:"checked_by"` // user id либо "automated"
	AutomatedCheck bool      `json:"automated_check"`
}

// CheckResult — ответ публичного эндпоинта проверки
type CheckResult struct {
	AssetID   string           `json:"asset_id"`
	Symbol    string           `json:"symbol"`
	Status    ComplianceStatus `json:"compliance_status"`
	Score     float64          `json:"compliance_score"`
	Reasons   []string         `json:"reasons"`
	CheckedAt time.Time        `json:"checked_at"`
}

// ErrAssetNotFound — единственная ошибка пайплайна, которую хендлер
// транслирует клиенту как 404, а не 500
var ErrAssetNotFound = errors.New("asset not found")
