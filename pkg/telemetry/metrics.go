package telemetry

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/prohmpiriya/community-events"

// MetricOpts describes an instrument
type MetricOpts struct {
	Name        string
	Description string
	Unit        string
}

// Meter returns the service meter from the global provider
func Meter() metric.Meter {
	return otel.Meter(meterName)
}

// NewCounter creates an int64 counter. Instrument creation only fails on an
// invalid name, in which case a no-op counter is returned.
func NewCounter(opts MetricOpts) metric.Int64Counter {
	c, err := Meter().Int64Counter(opts.Name,
		metric.WithDescription(opts.Description),
		metric.WithUnit(opts.Unit),
	)
	if err != nil {
		c, _ = noop.NewMeterProvider().Meter(meterName).Int64Counter(opts.Name)
	}
	return c
}

// NewHistogram creates a float64 histogram
func NewHistogram(opts MetricOpts) metric.Float64Histogram {
	h, err := Meter().Float64Histogram(opts.Name,
		metric.WithDescription(opts.Description),
		metric.WithUnit(opts.Unit),
	)
	if err != nil {
		h, _ = noop.NewMeterProvider().Meter(meterName).Float64Histogram(opts.Name)
	}
	return h
}
