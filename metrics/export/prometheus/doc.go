// Package prometheus renders gatehouse counters in the Prometheus text
// exposition format without taking a dependency on the Prometheus client
// library. The exporter reads immutable snapshots, so serving /metrics never
// contends with the hot path.
package prometheus
