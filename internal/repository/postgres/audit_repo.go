package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/audit"
)

type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

// WriteBatch — пакетная вставка записей журнала.
// Вызывается воркером audit.Journal, для HTTP-запросов путь неблокирующий.
func (r *AuditRepo) WriteBatch(ctx context.Context, entries []audit.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	// Количество колонок в таблице audit_logs
	numFields := 7
	placeholderStr := ""
	vals := make([]interface{}, 0, len(entries)*numFields)

	// Динамически строим запрос для пакетной вставки
	for i, e := range entries {
		p := i * numFields
		placeholderStr += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d),",
			p+1, p+2, p+3, p+4, p+5, p+6, p+7)

		metadata, _ := json.Marshal(e.Metadata)

		vals = append(vals,
			e.ID, e.Actor, e.Action, e.ResourceType, e.ResourceID, metadata, e.Timestamp,
		)
	}

	// Убираем лишнюю запятую в конце
	query := fmt.Sprintf(
		"INSERT INTO audit_logs (id, actor, action, resource_type, resource_id, metadata, created_at) VALUES %s",
		strings.TrimSuffix(placeholderStr, ","),
	)

	_, err := r.pool.Exec(ctx, query, vals...)
	return err
}

// FetchEntries — чтение журнала для консоли с фильтрацией.
// Пустые фильтры означают "без ограничения".
func (r *AuditRepo) FetchEntries(ctx context.Context, actor, resourceID string, limit int) ([]audit.Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := `
		SELECT id, actor, action, resource_type, resource_id, metadata, created_at
		FROM audit_logs
		WHERE ($1 = '' OR actor = $1)
		  AND ($2 = '' OR resource_id = $2)
		ORDER BY created_at DESC
		LIMIT $3`

	rows, err := r.pool.Query(ctx, query, actor, resourceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []audit.Entry
	for rows.Next() {
		var e audit.Entry
		var metadata []byte
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.ResourceType, &e.ResourceID, &metadata, &e.Timestamp); err != nil {
			return nil, err
		}
		if len(metadata) > 0 {
			_ = json.Unmarshal(metadata, &e.Metadata)
		}
		results = append(results, e)
	}
	return results, rows.Err()
}
