package service

import (
	"context"
	"errors"

	"github.com/prohmpiriya/community-events/internal/domain"
	"github.com/prohmpiriya/community-events/internal/metrics"
	"github.com/prohmpiriya/community-events/pkg/logger"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// fail classifies err at the service boundary. Domain errors are returned
// as is; anything else is logged with the operation and replaced by
// domain.ErrUnexpected so infrastructure detail never reaches callers.
func fail(ctx context.Context, op string, err error, fields ...zap.Field) error {
	if err == nil {
		return nil
	}

	span := trace.SpanFromContext(ctx)
	kind := domain.KindOf(err)
	metrics.RecordError(ctx, string(kind), op)
	span.SetStatus(codes.Error, string(kind))

	var de *domain.Error
	if errors.As(err, &de) && kind != domain.KindUnexpected {
		return de
	}
	if errors.Is(err, domain.ErrUnexpected) {
		return domain.ErrUnexpected
	}

	span.RecordError(err)
	fields = append(fields, zap.String("operation", op), zap.Error(err))
	logger.Get().ErrorContext(ctx, "unexpected error", fields...)
	return domain.ErrUnexpected
}

// validationError turns a dto Validate message into a validation failure
func validationError(msg string) error {
	return domain.ErrInvalidInput.WithMessage("%s", msg)
}
