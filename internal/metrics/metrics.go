package metrics

import (
	"context"
	"sync"

	"github.com/prohmpiriya/community-events/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	// Participation counters
	ParticipationsCreated   metric.Int64Counter
	ParticipationsCancelled metric.Int64Counter
	CapacityRejections      metric.Int64Counter

	// Error tracking counters
	ErrorsTotal     metric.Int64Counter
	TxRetriesTotal  metric.Int64Counter
	PublishFailures metric.Int64Counter

	// Histograms
	OperationDuration metric.Float64Histogram

	initOnce sync.Once
)

// Init creates the instruments against the current global meter provider.
// Call it after telemetry.Init.
func Init() {
	initOnce.Do(initMetrics)
}

func initMetrics() {
	ParticipationsCreated = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "participations_created_total",
		Description: "Total number of participations created",
		Unit:        "1",
	})
	ParticipationsCancelled = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "participations_cancelled_total",
		Description: "Total number of participations cancelled",
		Unit:        "1",
	})
	CapacityRejections = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "participation_capacity_rejections_total",
		Description: "Participation attempts refused because an event or session was full",
		Unit:        "1",
	})
	ErrorsTotal = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "participation_errors_total",
		Description: "Failed participation operations by error kind",
		Unit:        "1",
	})
	TxRetriesTotal = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "participation_tx_retries_total",
		Description: "Transactions retried after a serialization failure or deadlock",
		Unit:        "1",
	})
	PublishFailures = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "participation_publish_failures_total",
		Description: "Domain events that could not be published",
		Unit:        "1",
	})
	OperationDuration = telemetry.NewHistogram(telemetry.MetricOpts{
		Name:        "participation_operation_duration_seconds",
		Description: "Duration of participation operations",
		Unit:        "s",
	})
}

// RecordCreated records a created participation
func RecordCreated(ctx context.Context, eventID, participationType string) {
	if ParticipationsCreated != nil {
		ParticipationsCreated.Add(ctx, 1, metric.WithAttributes(
			attribute.String("event_id", eventID),
			attribute.String("type", participationType),
		))
	}
}

// RecordCancelled records a cancelled participation
func RecordCancelled(ctx context.Context, eventID, participationType string) {
	if ParticipationsCancelled != nil {
		ParticipationsCancelled.Add(ctx, 1, metric.WithAttributes(
			attribute.String("event_id", eventID),
			attribute.String("type", participationType),
		))
	}
}

// RecordCapacityRejection records a request refused for lack of seats.
// code is EVENT_FULL or SESSION_FULL.
func RecordCapacityRejection(ctx context.Context, eventID, code string) {
	if CapacityRejections != nil {
		CapacityRejections.Add(ctx, 1, metric.WithAttributes(
			attribute.String("event_id", eventID),
			attribute.String("code", code),
		))
	}
}

// RecordError records a failed operation
func RecordError(ctx context.Context, kind, operation string) {
	if ErrorsTotal != nil {
		ErrorsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("kind", kind),
			attribute.String("operation", operation),
		))
	}
}

// RecordTxRetry records one retried transaction
func RecordTxRetry(ctx context.Context, operation string) {
	if TxRetriesTotal != nil {
		TxRetriesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
	}
}

// RecordPublishFailure records an event that was not published
func RecordPublishFailure(ctx context.Context, eventType string) {
	if PublishFailures != nil {
		PublishFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("event_type", eventType)))
	}
}

// RecordDuration records how long an operation took
func RecordDuration(ctx context.Context, operation string, durationSeconds float64) {
	if OperationDuration != nil {
		OperationDuration.Record(ctx, durationSeconds, metric.WithAttributes(attribute.String("operation", operation)))
	}
}
