package protocol

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var metricMessagesTx = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pixelctl_messages_tx_total",
	Help: "The total number of messages sent to the device",
}, []string{"action"})

var metricMessagesRx = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pixelctl_messages_rx_total",
	Help: "The total number of messages received from the device",
}, []string{"action"})

var metricConnectionState = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "pixelctl_connection_state",
	Help: "The state of the device connection (0 connecting, 1 open, 2 closed)",
})

var metricDispatchTime = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "pixelctl_dispatch_seconds",
	Help:    "How long a chunked pixel upload takes from first to last chunk",
	Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
})
