// Package metrics records build observations for annodoc.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics cost nothing unless a caller asks for them. The
// PrometheusRecorder keeps its collectors in a private registry that can be
// exported in the Prometheus text format with WriteTextfile, for example to a
// node_exporter textfile collector directory.
package metrics
