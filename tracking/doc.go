// Package tracking records the parameters and metrics of one comparison run
// and hands them to a Sink as a single unit.
//
// A Run accepts each parameter and metric name once. Sinks never see a
// partially built run: the caller fills the run completely, then calls
// Record.
//
// Sinks live in subpackages: mlflow (MLflow REST API), pushgateway
// (Prometheus Pushgateway) and postgres. LogSink and MemorySink are provided
// here.
package tracking
