// Package metrics exposes the prometheus collectors for ingest, realtime fan-out and notifications.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	IngestLines = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smartparking_ingest_lines_total",
		Help: "Hardware lines processed, by message kind and result.",
	}, []string{"kind", "result"})

	Broadcasts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smartparking_broadcasts_total",
		Help: "Realtime messages fanned out, by message type.",
	}, []string{"type"})

	EmailNotifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smartparking_email_notifications_total",
		Help: "Alert email attempts, by outcome.",
	}, []string{"status"})

	RealtimeClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "smartparking_realtime_clients",
		Help: "Currently connected realtime clients.",
	})
)
