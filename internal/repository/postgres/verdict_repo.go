package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/domain"
)

// VerdictRepo хранит текущие вердикты (asset_compliance).
// Инвариант "не более одного вердикта на актив" держится на уникальности
// asset_id и атомарном upsert-е: никаких check-then-insert гонок.
type VerdictRepo struct {
	pool *pgxpool.Pool
}

func NewVerdictRepo(pool *pgxpool.Pool) *VerdictRepo {
	return &VerdictRepo{pool: pool}
}

// UpsertVerdict — insert-or-replace по asset_id
func (r *VerdictRepo) UpsertVerdict(ctx context.Context, v *domain.ComplianceVerdict) error {
	query := `
		INSERT INTO asset_compliance (asset_id, compliance_status, compliance_score, compliance_reasons, last_checked, checked_by, automated_check)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (asset_id) DO UPDATE SET
			compliance_status  = EXCLUDED.compliance_status,
			compliance_score   = EXCLUDED.compliance_score,
			compliance_reasons = EXCLUDED.compliance_reasons,
			last_checked       = EXCLUDED.last_checked,
			checked_by         = EXCLUDED.checked_by,
			automated_check    = EXCLUDED.automated_check`

	_, err := r.pool.Exec(ctx, query,
		v.AssetID, v.Status, v.Score, v.Reasons, v.LastChecked, v.CheckedBy, v.AutomatedCheck)
	if err != nil {
		return fmt.Errorf("postgres: failed to upsert verdict: %w", err)
	}
	return nil
}

// GetVerdict возвращает текущий вердикт либо nil, если актив не проверялся
func (r *VerdictRepo) GetVerdict(ctx context.Context, assetID string) (*domain.ComplianceVerdict, error) {
	query := `
		SELECT asset_id, compliance_status, compliance_score, compliance_reasons, last_checked, checked_by, automated_check
		FROM asset_compliance
		WHERE asset_id = $1`

	v := &domain.ComplianceVerdict{}
	err := r.pool.QueryRow(ctx, query, assetID).Scan(
		&v.AssetID, &v.Status, &v.Score, &v.Reasons, &v.LastChecked, &v.CheckedBy, &v.AutomatedCheck,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return v, nil
}
