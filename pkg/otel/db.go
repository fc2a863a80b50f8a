package otel

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// DBSpan starts a client span for a database operation.
func DBSpan(ctx context.Context, operation string, query string) (context.Context, trace.Span) {
	ctx, span := Tracer().Start(ctx, "db."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.DBSystemKey.String("postgresql"),
			semconv.DBOperationKey.String(operation),
			attribute.String("db.statement", query),
		),
	)
	return ctx, span
}

// WrapDBError records a database error on the span. pgx.ErrNoRows is a
// domain outcome, not a failure.
func WrapDBError(span trace.Span, err error) {
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Ok, "no rows")
		} else {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	} else {
		span.SetStatus(codes.Ok, "")
	}
}

// WithDBSpan runs fn inside a traced database span.
func WithDBSpan(ctx context.Context, operation string, query string, fn func(context.Context) error) error {
	ctx, span := DBSpan(ctx, operation, query)
	defer span.End()

	err := fn(ctx)
	WrapDBError(span, err)
	return err
}
