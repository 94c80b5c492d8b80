package dialogue

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics структура для метрик Prometheus
type Metrics struct {
	MessagesTotal        prometheus.Counter
	ErrorsTotal          prometheus.Counter
	UpdateProcessingTime prometheus.Histogram
	BookingsCreated      prometheus.Counter
}

// NewMetrics создает новые метрики
func NewMetrics() *Metrics {
	return &Metrics{
		MessagesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_messages_total",
			Help: "Total number of handled messages",
		}),

		ErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_errors_total",
			Help: "Total number of handler panics",
		}),

		UpdateProcessingTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "telegram_bot_update_processing_time_seconds",
			Help:    "Time spent processing updates",
			Buckets: prometheus.DefBuckets,
		}),

		BookingsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_bookings_created_total",
			Help: "Total number of bookings created",
		}),
	}
}
