// Package metrics provides Prometheus instrumentation for framepipe components.
//
// # Overview
//
// The metrics package provides instrumentation for:
//   - Encoders (frames submitted, accepted and rejected, queue depth, encode time, outcomes)
//   - Scopes (active workers, failures, worker lifetime)
//   - Artifact stores (held blobs, revocations)
//
// # Quick Start
//
// Components take a *Registry through an option:
//
//	reg := metrics.NewRegistry(prometheus.NewRegistry())
//	enc, err := encoder.New(encoder.WithMetrics(reg, "preview"))
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.Handler())
//	log.Fatal(http.ListenAndServe(":8080", nil))
//
// # Available Metrics
//
//   - framepipe_encoder_frames_submitted_total
//   - framepipe_encoder_frames_accepted_total
//   - framepipe_encoder_frames_rejected_total{reason="queue_full|closed|invalid|failed"}
//   - framepipe_encoder_queue_depth
//   - framepipe_encoder_queue_capacity
//   - framepipe_encoder_encode_duration_seconds
//   - framepipe_encoder_artifact_bytes_total
//   - framepipe_encoder_outcomes_total{outcome="finished|failed"}
//   - framepipe_scope_workers_active
//   - framepipe_scope_worker_failures_total
//   - framepipe_scope_worker_duration_seconds
//   - framepipe_blobstore_blobs
//   - framepipe_blobstore_revoked_total{reason="revoked|expired"}
//
// Every metric carries the instance name label of its component
// (encoder_name, scope_name or store_name).
//
// # Configuration
//
//	config := metrics.Config{
//		Enabled:   true,
//		Registry:  prometheus.NewRegistry(),
//		Namespace: "myapp",
//		Labels:    prometheus.Labels{"version": "1.0"},
//	}
//	reg := metrics.NewRegistryWithConfig(config)
//
// Metrics are updated only when operations occur; no background goroutines
// are started.
package metrics
