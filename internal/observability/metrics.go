// Package observability exposes Prometheus collectors for the relay server.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	webhooksReceivedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "notion_sync",
		Subsystem: "relay",
		Name:      "webhooks_received_total",
		Help:      "Number of webhook requests accepted for relaying.",
	}, []string{"route"})

	webhooksRejectedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "notion_sync",
		Subsystem: "relay",
		Name:      "webhooks_rejected_total",
		Help:      "Number of webhook requests rejected before relaying.",
	}, []string{"route", "reason"})

	relaysCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "notion_sync",
		Subsystem: "relay",
		Name:      "relays_total",
		Help:      "Number of downstream deliveries, partitioned by outcome.",
	}, []string{"outcome"})

	lastSyncGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "notion_sync",
		Subsystem: "relay",
		Name:      "last_successful_sync_timestamp_seconds",
		Help:      "Unix timestamp of the most recent sync run that finished without failures.",
	})
)

func init() {
	prometheus.MustRegister(webhooksReceivedCounter, webhooksRejectedCounter, relaysCounter, lastSyncGauge)
}

// RecordWebhookReceived counts a webhook accepted on the given route.
func RecordWebhookReceived(route string) {
	webhooksReceivedCounter.WithLabelValues(route).Inc()
}

// RecordWebhookRejected counts a webhook turned away before relaying.
func RecordWebhookRejected(route, reason string) {
	webhooksRejectedCounter.WithLabelValues(route, reason).Inc()
}

// RecordRelay counts one downstream delivery attempt.
func RecordRelay(delivered bool) {
	outcome := "failed"
	if delivered {
		outcome = "delivered"
	}
	relaysCounter.WithLabelValues(outcome).Inc()
}

// RecordSyncCompleted updates the clean-run watermark gauge.
func RecordSyncCompleted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	lastSyncGauge.Set(float64(ts.Unix()))
}
