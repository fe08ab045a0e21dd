package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Example_basicUsage demonstrates basic metrics configuration.
func Example_basicUsage() {
	// Create a separate registry for this test
	registry := NewRegistry(prometheus.NewRegistry())

	registry.FramesSubmitted.WithLabelValues("preview").Add(12)
	registry.FramesAccepted.WithLabelValues("preview").Add(10)
	registry.FramesRejected.WithLabelValues("preview", "queue_full").Add(2)

	fmt.Printf("accepted: %.0f\n", testutil.ToFloat64(registry.FramesAccepted.WithLabelValues("preview")))
	fmt.Printf("rejected: %.0f\n", testutil.ToFloat64(registry.FramesRejected.WithLabelValues("preview", "queue_full")))

	// Output:
	// accepted: 10
	// rejected: 2
}

// Example_customRegistry demonstrates using a custom namespace and constant labels.
func Example_customRegistry() {
	promRegistry := prometheus.NewRegistry()

	registry := NewRegistryWithConfig(Config{
		Enabled:   true,
		Registry:  promRegistry,
		Namespace: "myapp",
		Labels:    prometheus.Labels{"version": "1.0"},
	})
	registry.Outcomes.WithLabelValues("preview", "finished").Inc()

	families, _ := promRegistry.Gather()
	for _, mf := range families {
		fmt.Println(mf.GetName())
	}

	// Output:
	// myapp_encoder_outcomes_total
}

// Example_configuration demonstrates different metrics configurations.
func Example_configuration() {
	defaultConfig := DefaultConfig()
	fmt.Printf("Default enabled: %v\n", defaultConfig.Enabled)
	fmt.Printf("Default namespace: %s\n", defaultConfig.Namespace)

	customConfig := Config{
		Enabled:   false,
		Namespace: "myapp",
	}
	fmt.Printf("Custom enabled: %v\n", customConfig.Enabled)
	fmt.Printf("Custom namespace: %s\n", customConfig.Namespace)

	// Output:
	// Default enabled: true
	// Default namespace: framepipe
	// Custom enabled: false
	// Custom namespace: myapp
}
