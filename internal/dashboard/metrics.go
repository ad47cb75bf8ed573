package dashboard

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Cycles: завершенные циклы по исходу (success, request_failed, request_aborted, identity_unavailable)
	Cycles *prometheus.CounterVec

	// Latency: длительность цикла целиком (статистика + профиль организации)
	CycleDuration prometheus.Histogram

	// Отброшенные триггеры (цикл уже в полете)
	SkippedTriggers *prometheus.CounterVec

	// Сервер прислал packages.total, не совпадающий с суммой по статусам
	TotalMismatch prometheus.Counter

	// Запросы профиля организации: found, absent, failed
	CompanyFetches *prometheus.CounterVec

	InFlight prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Null Object Pattern - Если рег не передан, используем локальный, который никуда не подключен
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		Cycles: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_fetch_cycles_total",
			Help: "Completed dashboard fetch cycles by outcome.",
		}, []string{"outcome"}),

		CycleDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_fetch_cycle_duration_seconds",
			Help:    "Histogram of dashboard fetch cycle durations.",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15},
		}),

		SkippedTriggers: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_skipped_triggers_total",
			Help: "Fetch triggers dropped because a cycle was already in flight.",
		}, []string{"trigger"}),

		TotalMismatch: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "dashboard_package_total_mismatch_total",
			Help: "Stats payloads whose packages.total disagreed with the per-status counts.",
		}),

		CompanyFetches: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_company_fetches_total",
			Help: "Organization profile fetches by result.",
		}, []string{"result"}),

		InFlight: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_fetch_in_flight",
			Help: "1 while a fetch cycle is running.",
		}),
	}
}
