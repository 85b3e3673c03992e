package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Monitor holds the Prometheus collectors for the order system.
type Monitor struct {
	OrdersCreated   prometheus.Counter
	OrdersCompleted prometheus.Counter
	OrdersVoided    prometheus.Counter
	StatusUpdates   *prometheus.CounterVec
	KdsResets       prometheus.Counter
	LiveConnections prometheus.Gauge
	EventsPublished *prometheus.CounterVec
	EventsDropped   prometheus.Counter
}

// NewMonitor registers the collectors with the given registerer and
// returns the handle components publish through.
func NewMonitor(reg prometheus.Registerer) *Monitor {
	factory := promauto.With(reg)
	return &Monitor{
		OrdersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "mesob_orders_created_total",
			Help: "Number of orders created.",
		}),
		OrdersCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "mesob_orders_completed_total",
			Help: "Number of orders completed and paid.",
		}),
		OrdersVoided: factory.NewCounter(prometheus.CounterOpts{
			Name: "mesob_orders_voided_total",
			Help: "Number of orders voided.",
		}),
		StatusUpdates: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mesob_station_status_updates_total",
			Help: "Number of station status updates applied.",
		}, []string{"station"}),
		KdsResets: factory.NewCounter(prometheus.CounterOpts{
			Name: "mesob_kds_resets_total",
			Help: "Number of bulk KDS resets performed.",
		}),
		LiveConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mesob_live_connections",
			Help: "Currently connected live clients.",
		}),
		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mesob_events_published_total",
			Help: "Live events published, by event type.",
		}, []string{"event"}),
		EventsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "mesob_events_dropped_total",
			Help: "Live events dropped because a client buffer was full.",
		}),
	}
}
