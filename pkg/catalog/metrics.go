// pkg/catalog/metrics.go
package catalog

import "github.com/prometheus/client_golang/prometheus"

var (
	commitCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "shareable",
			Subsystem: "catalog",
			Name:      "commits_total",
			Help:      "Counter of published catalog snapshots.",
		})

	conflictCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "shareable",
			Subsystem: "catalog",
			Name:      "conflicts_total",
			Help:      "Counter of compare-and-swap publications that lost a race.",
		})

	objectGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "shareable",
			Subsystem: "catalog",
			Name:      "objects",
			Help:      "Number of catalog objects in the current snapshot.",
		}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(commitCounter)
	prometheus.MustRegister(conflictCounter)
	prometheus.MustRegister(objectGauge)
}

func observe(c *Catalog) {
	objectGauge.WithLabelValues("table").Set(float64(c.TableCount()))
	objectGauge.WithLabelValues("index").Set(float64(c.IndexCount()))
	objectGauge.WithLabelValues("view").Set(float64(c.views.Count()))
}
