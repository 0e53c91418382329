package postgres

import (
	"context"
	"fmt"

	"github.com/avast/retry-go/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/infra"
	"go.uber.org/zap"
)

// Connect поднимает пул соединений и дожидается готовности базы.
// В контейнерных окружениях Postgres часто стартует параллельно с сервисом,
// поэтому первый Ping идет с ретраями и экспоненциальным бэкоффом.
func Connect(ctx context.Context, cfg infra.DatabaseConfig, logger *zap.Logger) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("postgres: invalid connection string: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pcfg.MinConns = cfg.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to create pool: %w", err)
	}

	r := retry.New(
		retry.Context(ctx),
		retry.Attempts(5),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("database not ready, retrying ping",
				zap.Uint("attempt", n+1),
				zap.Error(err))
		}),
	)
	if err := r.Do(func() error { return pool.Ping(ctx) }); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: database unreachable: %w", err)
	}

	return pool, nil
}
