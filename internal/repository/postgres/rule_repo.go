package postgres

/*
Файл rule_repo.go отвечает за хранение правил шариатского скрининга.
Долговременное хранение — PostgreSQL; мгновенные проверки идут из
L1-кэша инстанса (internal/rules), который этот репозиторий кормит.
*/

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/domain"
)

type RuleRepo struct {
	pool *pgxpool.Pool
}

func NewRuleRepo(pool *pgxpool.Pool) *RuleRepo {
	return &RuleRepo{pool: pool}
}

const ruleColumns = `id, rule_name, rule_category, COALESCE(rule_description, ''),
	COALESCE(rule_criteria, '{}'::jsonb), is_active, COALESCE(rule_source, ''),
	created_at, updated_at`

func scanRule(row pgx.Row) (*domain.ComplianceRule, error) {
	rule := &domain.ComplianceRule{}
	err := row.Scan(
		&rule.ID, &rule.Name, &rule.Category, &rule.Description,
		&rule.Criteria, &rule.IsActive, &rule.Source,
		&rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rule, nil
}

// GetActiveRules выполняет "холодную загрузку" набора для кэша скорера.
// Порядок фиксирован по дате создания: вместе с детерминизмом эвалуатора
// это дает стабильный порядок причин в вердикте.
func (r *RuleRepo) GetActiveRules(ctx context.Context) ([]domain.ComplianceRule, error) {
	query := fmt.Sprintf(`SELECT %s FROM compliance_rules WHERE is_active = TRUE ORDER BY created_at, id`, ruleColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.ComplianceRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *rule)
	}
	return results, rows.Err()
}

// GetAllRules — полный список для консоли (включая выключенные)
func (r *RuleRepo) GetAllRules(ctx context.Context) ([]domain.ComplianceRule, error) {
	query := fmt.Sprintf(`SELECT %s FROM compliance_rules ORDER BY created_at, id`, ruleColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.ComplianceRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *rule)
	}
	return results, rows.Err()
}

func (r *RuleRepo) GetRuleByID(ctx context.Context, id string) (*domain.ComplianceRule, error) {
	query := fmt.Sprintf(`SELECT %s FROM compliance_rules WHERE id = $1`, ruleColumns)

	rule, err := scanRule(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Возвращаем nil для 404 в хендлере
		}
		return nil, err
	}
	return rule, nil
}

// CreateRule создает новое правило и возвращает присвоенный ID
func (r *RuleRepo) CreateRule(ctx context.Context, rule *domain.ComplianceRule) error {
	query := `
		INSERT INTO compliance_rules (id, rule_name, rule_category, rule_description, rule_criteria, is_active, rule_source)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		rule.Name, rule.Category, rule.Description, rule.Criteria, rule.IsActive, rule.Source,
	).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: failed to create rule: %w", err)
	}
	return nil
}

// UpdateRule обновляет содержимое и флаг активности существующего правила
func (r *RuleRepo) UpdateRule(ctx context.Context, rule *domain.ComplianceRule) error {
	query := `
		UPDATE compliance_rules
		SET rule_name = $1, rule_category = $2, rule_description = $3,
		    rule_criteria = $4, is_active = $5, rule_source = $6, updated_at = NOW()
		WHERE id = $7`

	ct, err := r.pool.Exec(ctx, query,
		rule.Name, rule.Category, rule.Description, rule.Criteria, rule.IsActive, rule.Source, rule.ID)
	if err != nil {
		return fmt.Errorf("postgres: failed to update rule: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return fmt.Errorf("postgres: rule not found")
	}
	return nil
}

// DeleteRule удаляет правило по ID
func (r *RuleRepo) DeleteRule(ctx context.Context, id string) error {
	query := `DELETE FROM compliance_rules WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete rule: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return fmt.Errorf("postgres: rule not found")
	}
	return nil
}
