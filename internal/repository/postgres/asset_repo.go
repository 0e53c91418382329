package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/domain"
)

// AssetRepo — читающий доступ к каталогу активов.
// Каталог наполняет внешний пайплайн ингеста, отсюда только SELECT.
type AssetRepo struct {
	pool *pgxpool.Pool
}

func NewAssetRepo(pool *pgxpool.Pool) *AssetRepo {
	return &AssetRepo{pool: pool}
}

func (r *AssetRepo) GetAssetByID(ctx context.Context, id string) (*domain.Asset, error) {
	query := `
		SELECT id, symbol, name, asset_type,
		       COALESCE(description, ''),
		       COALESCE(whitepaper_content, ''),
		       COALESCE(website_url, ''),
		       COALESCE(current_price, 0),
		       COALESCE(market_cap, 0),
		       COALESCE(volume_24h, 0),
		       COALESCE(price_change_24h, 0),
		       COALESCE(last_updated, NOW()),
		       COALESCE(created_at, NOW())
		FROM assets
		WHERE id = $1`

	a := &domain.Asset{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.Symbol, &a.Name, &a.AssetType,
		&a.Description, &a.WhitepaperContent, &a.WebsiteURL,
		&a.CurrentPrice, &a.MarketCap, &a.Volume24h, &a.PriceChange24h,
		&a.LastUpdated, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Возвращаем nil для 404 в хендлере
		}
		return nil, err
	}
	return a, nil
}
