package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRequestsTotal    = "locdiff.requests.total"
	metricRequestDuration  = "locdiff.request.duration.seconds"
	metricErrorsTotal      = "locdiff.errors.total"
	metricInflightRequests = "locdiff.inflight.requests"

	attrOp     = "op"
	attrStatus = "status"

	// StatusOK and StatusError are the request status attribute values.
	StatusOK    = "ok"
	StatusError = "error"
)

// durationBucketBoundaries spans quick inline counts to whole-history trends.
var durationBucketBoundaries = []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300}

// REDMetrics holds the Rate, Error, Duration instruments for tool calls.
type REDMetrics struct {
	requestsTotal    metric.Int64Counter
	requestDuration  metric.Float64Histogram
	errorsTotal      metric.Int64Counter
	inflightRequests metric.Int64UpDownCounter
}

// NewREDMetrics creates RED instruments from mt.
func NewREDMetrics(mt metric.Meter) (*REDMetrics, error) {
	in := &instruments{meter: mt}

	rm := &REDMetrics{
		requestsTotal:    in.count(metricRequestsTotal, "Tool calls handled", "{request}"),
		requestDuration:  in.seconds(metricRequestDuration, "Tool call duration"),
		errorsTotal:      in.count(metricErrorsTotal, "Tool calls that failed", "{error}"),
		inflightRequests: in.gauge(metricInflightRequests, "Tool calls in progress", "{request}"),
	}

	if in.err != nil {
		return nil, in.err
	}

	return rm, nil
}

// RecordRequest records one completed request.
func (rm *REDMetrics) RecordRequest(ctx context.Context, op, status string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String(attrOp, op), attribute.String(attrStatus, status))

	rm.requestsTotal.Add(ctx, 1, attrs)
	rm.requestDuration.Record(ctx, duration.Seconds(), attrs)

	if status == StatusError {
		rm.errorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrOp, op)))
	}
}

// TrackInflight increments the in-flight gauge and returns its decrement.
func (rm *REDMetrics) TrackInflight(ctx context.Context, op string) func() {
	attrs := metric.WithAttributes(attribute.String(attrOp, op))
	rm.inflightRequests.Add(ctx, 1, attrs)

	return func() {
		rm.inflightRequests.Add(ctx, -1, attrs)
	}
}
