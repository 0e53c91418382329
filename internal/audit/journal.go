package audit

/*
Файл journal.go реализует буферизированную запись аудиторского следа.

Ключевые особенности архитектуры:
- Non-blocking Logging: события уходят в канал, Hot Path проверки не ждет БД.
  Аудит по контракту best-effort — его сбой не должен ронять запрос.
- Batching: накопление в памяти и пакетная вставка (Bulk Insert) в PostgreSQL
  по таймеру либо при достижении лимита пачки.
- Drain Pattern & Graceful Shutdown: при остановке канал запирается, воркер
  вычитывает остатки и делает финальный flush — записи не теряются при
  штатной перезагрузке.
*/

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Sink определяет, куда физически сохраняются записи
type Sink interface {
	// WriteBatch сохраняет пачку записей за один раз
	WriteBatch(ctx context.Context, entries []Entry) error
}

// Logger — интерфейс для продьюсеров аудита (движок проверки, консоль)
type Logger interface {
	Log(entry Entry)
}

const flushBatchSize = 100

type Journal struct {
	ch     chan Entry
	sink   Sink
	logger *zap.Logger
	wg     sync.WaitGroup

	flushInterval time.Duration
	fill          prometheus.Gauge // заполненность буфера, может быть nil

	isClosed int32 // Атомарный флаг (0 - открыт, 1 - закрыт)
}

func NewJournal(sink Sink, logger *zap.Logger, bufferSize int, flushInterval time.Duration, fill prometheus.Gauge) *Journal {
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	if flushInterval <= 0 {
		flushInterval = time.Second
	}
	return &Journal{
		ch:            make(chan Entry, bufferSize),
		sink:          sink,
		logger:        logger.With(zap.String("mod", "audit-journal")),
		flushInterval: flushInterval,
		fill:          fill,
	}
}

func (j *Journal) Start() {
	j.wg.Add(1)
	go j.worker()
}

// Stop «запирает» вход в канал и ждет, пока воркер всё допишет.
//
// Контракт остановки: все продьюсеры должны быть погашены ДО вызова Stop
// (main останавливает HTTP-сервер первым). Флаг с паузой прикрывает только
// Log-и, уже прошедшие проверку флага; конкурентный с close(ch) продьюсер —
// ошибка порядка остановки, а не этого кода.
func (j *Journal) Stop() {
	atomic.StoreInt32(&j.isClosed, 1)

	// Даем крошечную паузу, чтобы текущие Log успели проскочить
	time.Sleep(10 * time.Millisecond)

	j.logger.Info("stopping audit journal: closing channel and flushing buffer...")
	close(j.ch)
	j.wg.Wait()
	j.logger.Info("audit journal stopped gracefully")
}

func (j *Journal) Log(entry Entry) {
	// Таймстемп всегда проставлен
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	// Атомарно проверяем, не закрыт ли канал
	if atomic.LoadInt32(&j.isClosed) == 1 {
		j.logger.Warn("audit entry dropped: journal is stopping", zap.String("id", entry.ID))
		return
	}

	// Стратегия Load Shedding: при переполнении буфера запись уходит
	// хотя бы в обычный лог, запрос не блокируется
	select {
	case j.ch <- entry:
		if j.fill != nil {
			j.fill.Set(float64(len(j.ch)))
		}
	default:
		j.logger.Error("audit_buffer_overflow",
			zap.String("actor", entry.Actor),
			zap.String("action", entry.Action),
			zap.String("resource_id", entry.ResourceID),
		)
	}
}

func (j *Journal) worker() {
	defer j.wg.Done()

	batch := make([]Entry, 0, flushBatchSize)
	ticker := time.NewTicker(j.flushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) > 0 {
			// Background: основной контекст на shutdown уже может быть отменен
			if err := j.sink.WriteBatch(context.Background(), batch); err != nil {
				// Best-effort: потерю фиксируем в логах и живем дальше
				j.logger.Error("audit flush failed", zap.Int("batch", len(batch)), zap.Error(err))
			}
			batch = batch[:0]
		}
		if j.fill != nil {
			j.fill.Set(float64(len(j.ch)))
		}
	}

	for {
		select {
		case entry, ok := <-j.ch:
			if !ok {
				// Канал закрыт в Stop(): вычитали всё, финальный сброс и выход
				flush()
				j.logger.Info("audit worker finished")
				return
			}
			batch = append(batch, entry)
			if len(batch) >= flushBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}
