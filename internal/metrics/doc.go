// Package metrics collects Prometheus metrics for course lookups and HTTP requests.
package metrics
