package rules

/*
Файл cache.go — L1-кэш активных правил скрининга.

Правила меняются редко (администраторами), а читаются на каждой проверке,
поэтому держим их в памяти инстанса: холодная загрузка при старте плюс
инвалидация по широковещательному сигналу из Redis, который публикует
консольный сервис после любой мутации. При потере соединения подписка
переподнимается сама и первым делом синхронизирует состояние с БД.
*/

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/domain"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/infra"
	"go.uber.org/zap"
)

// Source — требование кэша к хранилищу правил
type Source interface {
	GetActiveRules(ctx context.Context) ([]domain.ComplianceRule, error)
}

type Cache struct {
	mu     sync.RWMutex
	rules  []domain.ComplianceRule
	loaded bool

	source Source
	rdb    *redis.Client
	logger *zap.Logger
}

func NewCache(source Source, rdb *redis.Client, logger *zap.Logger) *Cache {
	return &Cache{
		source: source,
		rdb:    rdb,
		logger: logger.Named("rule-cache"),
	}
}

// Init выполняет холодную загрузку при старте сервиса
func (c *Cache) Init(ctx context.Context) error {
	return c.Refresh(ctx)
}

// ActiveRules отдает копию текущего набора. Если кэш еще пуст (например,
// старт без Init), пробуем сходить в БД — ошибка здесь фатальна для запроса.
func (c *Cache) ActiveRules(ctx context.Context) ([]domain.ComplianceRule, error) {
	c.mu.RLock()
	if c.loaded {
		out := make([]domain.ComplianceRule, len(c.rules))
		copy(out, c.rules)
		c.mu.RUnlock()
		return out, nil
	}
	c.mu.RUnlock()

	if err := c.Refresh(ctx); err != nil {
		return nil, err
	}
	return c.ActiveRules(ctx)
}

// Refresh перечитывает активные правила из хранилища
func (c *Cache) Refresh(ctx context.Context) error {
	rules, err := c.source.GetActiveRules(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.rules = rules
	c.loaded = true
	c.mu.Unlock()

	c.logger.Info("rule cache refreshed", zap.Int("active_rules", len(rules)))
	return nil
}

// StartListener — "живучая" подписка на сигнал обновления правил.
// Обрабатывает переподключения: на каждом успешном коннекте синхронизируемся,
// чтобы не пропустить сигналы, отправленные пока нас не было.
func (c *Cache) StartListener(ctx context.Context) {
	for {
		pubsub := c.rdb.Subscribe(ctx, infra.RedisChanRuleUpdate)

		// Проверка успешности подписки
		if _, err := pubsub.Receive(ctx); err != nil {
			pubsub.Close()
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("failed to subscribe to rule updates", zap.Error(err))
			time.Sleep(5 * time.Second)
			continue
		}

		if err := c.Refresh(ctx); err != nil {
			c.logger.Error("rule sync failed on reconnect", zap.Error(err))
		}

		ch := pubsub.Channel()

	loop:
		for {
			select {
			case <-ctx.Done():
				pubsub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					break loop // Канал закрыт, идем на переподключение
				}
				c.logger.Debug("rule update signal received", zap.String("payload", msg.Payload))
				if err := c.Refresh(ctx); err != nil {
					// Старый набор остается рабочим, повторим на следующем сигнале
					c.logger.Error("rule cache refresh failed", zap.Error(err))
				}
			}
		}

		pubsub.Close()
		time.Sleep(1 * time.Second)
	}
}
