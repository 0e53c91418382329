package infra

import (
	"fmt"
	"time"
)

const (
	// RedisNamespace Базовый префикс для изоляции данных проекта в Redis
	RedisNamespace = "shariaai"
)

// Каналы Pub/Sub (события)
const (
	// RedisChanRuleUpdate — широковещательный сигнал "правила изменились".
	// Все инстансы чекера перечитывают таблицу compliance_rules в свой L1-кэш.
	RedisChanRuleUpdate = RedisNamespace + ":rules:update-signal"
)

// RateLimitKey строит ключ фиксированного окна для лимитера публичного API.
// Окно кодируется в ключе, TTL добивает мусор после закрытия окна.
func RateLimitKey(subject string, window time.Time) string {
	return fmt.Sprintf("%s:ratelimit:%s:%d", RedisNamespace, subject, window.Unix())
}
