// Package metrics holds the Prometheus collectors shared by the widget
// packages. They register on the default registry; `widgetkit serve`
// exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Renders = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "widgetkit_renders_total",
			Help: "Render passes by family and outcome",
		},
		[]string{"family", "outcome"},
	)

	RenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "widgetkit_render_duration_seconds",
			Help:    "Time spent resolving and painting one surface",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"family"},
	)

	Truncations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "widgetkit_truncated_children_total",
			Help: "Children dropped by container capacity limits",
		},
		[]string{"kind"},
	)

	Taps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "widgetkit_taps_total",
			Help: "Taps recorded, by whether they toggled persisted state",
		},
		[]string{"toggled"},
	)

	QueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "widgetkit_pending_actions",
			Help: "Pending actions seen at the last drain",
		},
		[]string{"group"},
	)

	DuplicateActions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "widgetkit_duplicate_actions_total",
			Help: "Action deliveries suppressed as repeats",
		},
	)

	ConfigWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "widgetkit_config_writes_total",
			Help: "SetConfig calls by result (written, unchanged, failed)",
		},
		[]string{"result"},
	)

	Reloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "widgetkit_reloads_total",
			Help: "Surface reloads by outcome (ok, failed, deferred)",
		},
		[]string{"outcome"},
	)

	ImageCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "widgetkit_image_cache_total",
			Help: "Image cache lookups by result (memory, disk, fetched, stale, miss)",
		},
		[]string{"result"},
	)

	ActiveSurfaces = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "widgetkit_active_surfaces",
			Help: "Registered render surfaces",
		},
	)
)
