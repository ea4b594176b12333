package observability

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// instruments creates a family of instruments on one meter and keeps the
// first creation error, so constructors check once at the end.
type instruments struct {
	meter metric.Meter
	err   error
}

// track returns inst and remembers err when it is the first failure.
func track[T any](in *instruments, name string, inst T, err error) T {
	if err != nil && in.err == nil {
		in.err = fmt.Errorf("create instrument %s: %w", name, err)
	}

	return inst
}

func (in *instruments) count(name, desc, unit string) metric.Int64Counter {
	c, err := in.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))

	return track(in, name, c, err)
}

func (in *instruments) gauge(name, desc, unit string) metric.Int64UpDownCounter {
	g, err := in.meter.Int64UpDownCounter(name, metric.WithDescription(desc), metric.WithUnit(unit))

	return track(in, name, g, err)
}

// seconds creates a duration histogram on durationBucketBoundaries.
func (in *instruments) seconds(name, desc string) metric.Float64Histogram {
	h, err := in.meter.Float64Histogram(name,
		metric.WithDescription(desc),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)

	return track(in, name, h, err)
}
