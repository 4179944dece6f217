package infra

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Latency: сколько времени заняла обработка HTTP-запроса
	RequestDuration *prometheus.HistogramVec

	// Traffic: закоммиченные мутации по виду сущности и действию
	MutationsTotal *prometheus.CounterVec

	// Broadcast: доставки подписчикам (delivered / dropped)
	DeliveriesTotal *prometheus.CounterVec

	// Saturation: текущее число живых WebSocket-подписчиков
	Subscribers prometheus.Gauge

	// Generators: исходы циклов (committed / skipped_empty / failed)
	GeneratorCycles *prometheus.CounterVec

	// Journal: заполненность буфера (backpressure)
	JournalBufferFill prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Null Object Pattern — если рег не передан, используем локальный, который никуда не подключен
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		RequestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fleet_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"route", "method", "status"}),

		MutationsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "fleet_mutations_total",
			Help: "Total number of committed entity mutations.",
		}, []string{"kind", "action"}),

		DeliveriesTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "fleet_deliveries_total",
			Help: "Broadcast delivery attempts by outcome.",
		}, []string{"outcome"}), // outcome: delivered, dropped

		Subscribers: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "fleet_subscribers",
			Help: "Current number of live realtime subscribers.",
		}),

		GeneratorCycles: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "fleet_generator_cycles_total",
			Help: "Generator cycle outcomes.",
		}, []string{"kind", "outcome"}), // outcome: committed, skipped_empty, failed

		JournalBufferFill: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "fleet_journal_buffer_utilization",
			Help: "Current number of events in the journal buffer.",
		}),
	}
}
