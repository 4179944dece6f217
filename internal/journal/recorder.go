package journal

/*
Файл recorder.go реализует журнал мутаций — накопитель записей о каждой
закоммиченной операции реестра с пакетной записью в PostgreSQL.

Ключевые особенности архитектуры:
- Non-blocking Logging: неблокирующий канал на пути коммита. Задержки
  записи в БД не влияют на время ответа CRUD-операций и циклы генераторов.
- Batching & Efficiency: накопление событий в памяти и пакетная запись
  (Bulk Insert) по таймеру или при достижении лимита (100 событий).
- Drain Pattern & Graceful Shutdown: при остановке буфер вычитывается
  полностью. sync.WaitGroup и закрытие канала гарантируют Final Flush.
*/

import (
	"context"
	"sync"
	"time"

	"github.com/xela07ax/robofleet/internal/infra"
	"go.uber.org/zap"
)

// StorageInterface определяет, куда физически сохраняются записи журнала
type StorageInterface interface {
	// WriteBatch сохраняет пачку событий за один раз
	WriteBatch(ctx context.Context, events []Event) error
}

type Recorder struct {
	ch      chan Event       // Буфер для асинхронности
	repo    StorageInterface // Интерфейс для Postgres
	logger  *zap.Logger
	metrics *infra.Metrics
	wg      sync.WaitGroup

	flushInterval time.Duration

	// Запирает вход в канал на время остановки: Record держит RLock,
	// Stop берет полный Lock и закрывает канал только когда все
	// начатые Record гарантированно завершились.
	closeMu sync.RWMutex
	closed  bool
}

func NewRecorder(repo StorageInterface, logger *zap.Logger, metrics *infra.Metrics, cfg infra.StreamConfig) *Recorder {
	bufSize := cfg.JournalBufferSize
	if bufSize <= 0 {
		bufSize = 10000
	}
	flushInterval := cfg.JournalFlushInterval
	if flushInterval <= 0 {
		flushInterval = 500 * time.Millisecond
	}

	return &Recorder{
		ch:            make(chan Event, bufSize),
		repo:          repo,
		logger:        logger.With(zap.String("mod", "journal")),
		metrics:       metrics,
		flushInterval: flushInterval,
	}
}

func (rec *Recorder) Start() {
	rec.wg.Add(1)
	go rec.worker()
}

// Stop «запирает» вход в канал и ждет, пока воркер всё допишет.
func (rec *Recorder) Stop() {
	// 1. Полный Lock дожидается завершения всех начатых Record,
	// после чего закрывать канал безопасно
	rec.closeMu.Lock()
	if rec.closed {
		rec.closeMu.Unlock()
		return
	}
	rec.closed = true
	rec.logger.Info("stopping journal: closing channel and flushing buffer...")
	close(rec.ch)
	rec.closeMu.Unlock()

	// 2. Drain Pattern: воркер вычитывает остатки и делает финальный сброс
	rec.wg.Wait()
	rec.logger.Info("journal stopped gracefully")
}

func (rec *Recorder) Record(event Event) {
	// Убеждаемся, что таймстемп всегда проставлен
	if event.At.IsZero() {
		event.At = time.Now()
	}

	// RLock исключает гонку с close(rec.ch) в Stop
	rec.closeMu.RLock()
	defer rec.closeMu.RUnlock()
	if rec.closed {
		rec.logger.Warn("journal event dropped: recorder is stopping", zap.String("id", event.ID))
		return
	}

	// Стратегия Load Shedding (сброс нагрузки)
	select {
	case rec.ch <- event:
		if rec.metrics != nil {
			rec.metrics.JournalBufferFill.Set(float64(len(rec.ch)))
		}
	default:
		// Канал переполнен (Backpressure) — фиксируем потерю в логгере,
		// но не блокируем путь коммита
		rec.logger.Error("journal_buffer_overflow",
			zap.String("kind", event.Kind),
			zap.String("entity_id", event.EntityID),
		)
	}
}

func (rec *Recorder) worker() {
	defer rec.wg.Done()

	batch := make([]Event, 0, 100)
	ticker := time.NewTicker(rec.flushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) > 0 {
			// Используем Background, так как основной контекст может быть уже закрыт
			if err := rec.repo.WriteBatch(context.Background(), batch); err != nil {
				rec.logger.Error("journal flush failed", zap.Error(err))
			}
			batch = batch[:0]
		}
		if rec.metrics != nil {
			rec.metrics.JournalBufferFill.Set(float64(len(rec.ch)))
		}
	}

	for {
		select {
		case event, ok := <-rec.ch:
			if !ok {
				// Канал закрыт в Stop(): вычитали остатки, финальный сброс, выходим
				flush()
				rec.logger.Info("journal worker finished")
				return
			}
			batch = append(batch, event)
			if len(batch) >= 100 {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}
