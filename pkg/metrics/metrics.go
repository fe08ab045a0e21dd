// Package metrics provides Prometheus instrumentation for framepipe components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for framepipe components.
type Registry struct {
	// Encoder Metrics
	FramesSubmitted *prometheus.CounterVec
	FramesAccepted  *prometheus.CounterVec
	FramesRejected  *prometheus.CounterVec
	QueueDepth      *prometheus.GaugeVec
	QueueCapacity   *prometheus.GaugeVec
	EncodeDuration  *prometheus.HistogramVec
	ArtifactBytes   *prometheus.CounterVec
	Outcomes        *prometheus.CounterVec

	// Scope Metrics
	ScopeWorkersActive  *prometheus.GaugeVec
	ScopeWorkerFailures *prometheus.CounterVec
	ScopeWorkerDuration *prometheus.HistogramVec

	// Artifact Store Metrics
	BlobsStored  *prometheus.GaugeVec
	BlobsRevoked *prometheus.CounterVec
}

// DefaultRegistry is the default metrics registry used by framepipe components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	cfg := DefaultConfig()
	cfg.Registry = reg
	return NewRegistryWithConfig(cfg)
}

// NewRegistryWithConfig creates a metrics registry from cfg. A nil
// cfg.Registry selects prometheus.DefaultRegisterer and an empty namespace
// selects "framepipe".
func NewRegistryWithConfig(cfg Config) *Registry {
	reg := cfg.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	ns := cfg.Namespace
	if ns == "" {
		ns = Namespace
	}
	factory := promauto.With(reg)
	labels := cfg.Labels

	return &Registry{
		// Encoder Metrics
		FramesSubmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "encoder",
				Name:        "frames_submitted_total",
				Help:        "Total number of SubmitFrame calls",
				ConstLabels: labels,
			},
			[]string{"encoder_name"},
		),

		FramesAccepted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "encoder",
				Name:        "frames_accepted_total",
				Help:        "Total number of frames accepted into the queue",
				ConstLabels: labels,
			},
			[]string{"encoder_name"},
		),

		FramesRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "encoder",
				Name:        "frames_rejected_total",
				Help:        "Total number of rejected frames by reason",
				ConstLabels: labels,
			},
			[]string{"encoder_name", "reason"},
		),

		QueueDepth: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   ns,
				Subsystem:   "encoder",
				Name:        "queue_depth",
				Help:        "Number of frames waiting to be encoded",
				ConstLabels: labels,
			},
			[]string{"encoder_name"},
		),

		QueueCapacity: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   ns,
				Subsystem:   "encoder",
				Name:        "queue_capacity",
				Help:        "Capacity of the frame queue",
				ConstLabels: labels,
			},
			[]string{"encoder_name"},
		),

		EncodeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   ns,
				Subsystem:   "encoder",
				Name:        "encode_duration_seconds",
				Help:        "Time spent draining and encoding one animation",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: labels,
			},
			[]string{"encoder_name"},
		),

		ArtifactBytes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "encoder",
				Name:        "artifact_bytes_total",
				Help:        "Total bytes of published artifacts",
				ConstLabels: labels,
			},
			[]string{"encoder_name"},
		),

		Outcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "encoder",
				Name:        "outcomes_total",
				Help:        "Total number of finished encoders by outcome",
				ConstLabels: labels,
			},
			[]string{"encoder_name", "outcome"},
		),

		// Scope Metrics
		ScopeWorkersActive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   ns,
				Subsystem:   "scope",
				Name:        "workers_active",
				Help:        "Number of scoped workers that have not exited",
				ConstLabels: labels,
			},
			[]string{"scope_name"},
		),

		ScopeWorkerFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "scope",
				Name:        "worker_failures_total",
				Help:        "Total number of scoped workers that failed or panicked",
				ConstLabels: labels,
			},
			[]string{"scope_name"},
		),

		ScopeWorkerDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   ns,
				Subsystem:   "scope",
				Name:        "worker_duration_seconds",
				Help:        "Lifetime of scoped workers",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: labels,
			},
			[]string{"scope_name"},
		),

		// Artifact Store Metrics
		BlobsStored: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   ns,
				Subsystem:   "blobstore",
				Name:        "blobs",
				Help:        "Number of artifacts currently held",
				ConstLabels: labels,
			},
			[]string{"store_name"},
		),

		BlobsRevoked: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "blobstore",
				Name:        "revoked_total",
				Help:        "Total number of revoked artifacts by reason",
				ConstLabels: labels,
			},
			[]string{"store_name", "reason"},
		),
	}
}
