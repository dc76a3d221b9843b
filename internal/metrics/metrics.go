package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "tictactoe"

// Metrics holds the collectors the backend exposes on /metrics.
type Metrics struct {
	RoomsActive      prometheus.Gauge
	PlayersConnected prometheus.Gauge
	RoomsCreated     prometheus.Counter
	MovesApplied     prometheus.Counter
}

// New - builds the collectors and registers them on the given registerer.
// Tests pass a private registry; the application passes the default one.
func New(reg prometheus.Registerer) *Metrics {
	that := &Metrics{
		RoomsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms_active",
			Help:      "Number of live rooms",
		}),
		PlayersConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "players_connected",
			Help:      "Number of open player connections",
		}),
		RoomsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rooms_created_total",
			Help:      "Total number of rooms created",
		}),
		MovesApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_applied_total",
			Help:      "Total number of accepted moves",
		}),
	}

	reg.MustRegister(
		that.RoomsActive,
		that.PlayersConnected,
		that.RoomsCreated,
		that.MovesApplied,
	)

	return that
}
