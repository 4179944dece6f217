package generator

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/xela07ax/robofleet/internal/domain"
	"github.com/xela07ax/robofleet/internal/infra"
	"go.uber.org/zap"
)

// Source порождает одну сущность за цикл. Возвращает
// domain.ErrEmptyPopulation когда выборка FK пуста — это не сбой,
// цикл просто пропускается.
type Source interface {
	Kind() string
	Emit(ctx context.Context) error
}

// Generator крутит бесконечный цикл с дрожащим интервалом,
// останавливается по отмене контекста.
type Generator struct {
	src     Source
	min     time.Duration
	max     time.Duration
	logger  *zap.Logger
	metrics *infra.Metrics
	rng     *rand.Rand
}

func New(src Source, min, max time.Duration, logger *zap.Logger, metrics *infra.Metrics) *Generator {
	if max < min {
		max = min
	}
	return &Generator{
		src:     src,
		min:     min,
		max:     max,
		logger:  logger.Named("generator").With(zap.String("kind", src.Kind())),
		metrics: metrics,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run блокируется до отмены ctx. Первый цикл тоже ждёт паузу,
// чтобы не ломиться в БД на старте сервиса.
func (g *Generator) Run(ctx context.Context) {
	g.logger.Info("generator started",
		zap.Duration("min_interval", g.min),
		zap.Duration("max_interval", g.max))

	timer := time.NewTimer(g.pause())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			g.logger.Info("generator stopped")
			return
		case <-timer.C:
		}

		g.cycle(ctx)
		timer.Reset(g.pause())
	}
}

func (g *Generator) cycle(ctx context.Context) {
	err := g.src.Emit(ctx)
	switch {
	case err == nil:
		g.metrics.GeneratorCycles.WithLabelValues(g.src.Kind(), "committed").Inc()
	case errors.Is(err, domain.ErrEmptyPopulation):
		// Некого назначить владельцем/исполнителем: таблица ещё пуста
		g.metrics.GeneratorCycles.WithLabelValues(g.src.Kind(), "skipped_empty").Inc()
		g.logger.Debug("cycle skipped, nothing to sample")
	case errors.Is(err, context.Canceled):
		return
	default:
		g.metrics.GeneratorCycles.WithLabelValues(g.src.Kind(), "failed").Inc()
		g.logger.Warn("cycle failed", zap.Error(err))
	}
}

// pause возвращает равномерную паузу из [min, max].
func (g *Generator) pause() time.Duration {
	if g.max == g.min {
		return g.min
	}
	return g.min + time.Duration(g.rng.Int63n(int64(g.max-g.min)))
}
