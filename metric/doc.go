// Package metric provides Prometheus-based metrics collection and an HTTP
// server for thermoflow observability.
//
// The package offers a centralized metrics registry managing both core
// platform metrics (component status, errors, health) and component-specific
// metrics registered by the hub, scheduler and observer surfaces. An HTTP
// server exposes the registry in Prometheus format alongside a simple health
// endpoint.
//
// Components follow the nil-registry = nil-feature pattern: when no registry
// is provided, their newMetrics constructors return nil and every metric
// update is skipped.
package metric
