package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	VenuePrice = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "arb_venue_price",
		Help: "Last normalized price per venue (base per quote); 0 when unavailable",
	}, []string{"venue"})

	VenueAvailable = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "arb_venue_available",
		Help: "1 if the venue produced a price in the last cycle",
	}, []string{"venue"})

	QuoterErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "arb_quoter_errors_total",
		Help: "Number of failed getAmountsOut calls",
	}, []string{"venue"})

	QuoteLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "arb_quoter_latency_seconds",
		Help:    "Time to obtain a DEX quote",
		Buckets: prometheus.DefBuckets,
	}, []string{"venue"})

	Opportunities = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "arb_opportunities_total",
		Help: "Opportunities detected, by buy and sell venue",
	}, []string{"buy", "sell"})

	LogWriteErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "arb_log_write_errors_total",
		Help: "Failed appends to the opportunity log",
	})

	CycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "arb_cycle_duration_seconds",
		Help:    "Duration of one sample/find/log cycle",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	})
)

func init() {
	prometheus.MustRegister(
		VenuePrice,
		VenueAvailable,
		QuoterErrors,
		QuoteLatency,
		Opportunities,
		LogWriteErrors,
		CycleDuration,
	)
}
