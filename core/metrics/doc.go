// Package metrics defines the sink interface used by the pipeline to report
// chunk and run statistics. The Prometheus implementation lives in
// infra/metrics.
package metrics
