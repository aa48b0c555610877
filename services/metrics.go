package services

import "github.com/prometheus/client_golang/prometheus"

var (
	recordsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "art_seeder_records_total",
			Help: "Verarbeitete Quelldatensätze nach Art und Ergebnis.",
		},
		[]string{"kind", "outcome"},
	)
	edgesCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "art_seeder_edges_total",
			Help: "An die Zielplattform übermittelte synthetische Kanten.",
		},
		[]string{"kind"},
	)
	runsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "art_seeder_runs_total",
			Help: "Abgeschlossene Migrationsläufe nach Status.",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(recordsCounter, edgesCounter, runsCounter)
}
