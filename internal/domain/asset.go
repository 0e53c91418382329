package domain

import "time"

// AssetType — закрытый перечень классов активов, по которым работает скрининг
type AssetType string

const (
	AssetCrypto     AssetType = "crypto"
	AssetStock      AssetType = "stock"
	AssetHalal      AssetType = "halal_asset"
	AssetCommodity  AssetType = "commodity"
	AssetRealEstate AssetType = "real_estate"
)

// Asset — карточка актива из каталога.
// Заполняется внешним пайплайном сбора рыночных данных; для подсистемы
// комплаенса актив строго read-only.
type Asset struct {
	ID        string    `json:"id"` // UUID
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name"`
	AssetType AssetType `json:"asset_type"`

	// Текстовые материалы — основной вход для скрининга (ключевые слова + AI)
	Description       string `json:"description"`
	WhitepaperContent string `json:"whitepaper_content,omitempty"`
	WebsiteURL        string `json:"website_url,omitempty"`

	// Рыночные метаданные (в проверках не участвуют, отдаются как есть)
	CurrentPrice   float64 `json:"current_price"`
	MarketCap      float64 `json:"market_cap"`
	Volume24h      float64 `json:"volume_24h"`
	PriceChange24h float64 `json:"price_change_24h"`

	LastUpdated time.Time `json:"last_updated"`
	CreatedAt   time.Time `json:"created_at"`
}
