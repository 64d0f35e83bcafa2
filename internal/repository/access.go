package repository

import (
	"context"
	"fmt"

	apperrors "github.com/novocode/novocode-api/pkg/errors"
	"github.com/novocode/novocode-api/pkg/logger"
	"github.com/novocode/novocode-api/pkg/metrics"
	"github.com/novocode/novocode-api/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Path names the access path that produced a result.
type Path string

const (
	PathPrimary  Path = "primary"
	PathFallback Path = "fallback"
	PathDefault  Path = "default"
	PathFailed   Path = "failed"
)

// Source is one implementation of a logical read or write.
type Source[T any] func(ctx context.Context) (T, error)

// Read runs primary (if the gate reports it healthy), then fallback, and
// returns def when both fail. It never returns an error.
func Read[T any](ctx context.Context, gate *HealthGate, operation string, primary, fallback Source[T], def T) T {
	result, _ := ReadServed(ctx, gate, operation, primary, fallback, def)
	return result
}

// ReadServed is Read that also reports which path served the result.
func ReadServed[T any](ctx context.Context, gate *HealthGate, operation string, primary, fallback Source[T], def T) (T, Path) {
	result, path, err := run(ctx, gate, operation, primary, fallback, false)
	if err != nil {
		logger.Error("All data paths failed, serving default",
			zap.String("operation", operation),
			zap.String("path", string(PathDefault)),
			zap.Error(err))
		metrics.DataAccessTotal.WithLabelValues(operation, string(PathDefault)).Inc()
		return def, PathDefault
	}
	return result, path
}

// Exec dispatches like Read but reports failure instead of defaulting. It is
// used for writes and for reads whose caller cannot act on a made-up value.
// Definitive answers from the primary (not found, conflict, invalid input)
// are returned as is without consulting the fallback.
func Exec[T any](ctx context.Context, gate *HealthGate, operation string, primary, fallback Source[T]) (T, error) {
	result, _, err := run(ctx, gate, operation, primary, fallback, true)
	if err != nil {
		metrics.DataAccessTotal.WithLabelValues(operation, string(PathFailed)).Inc()
		if apperrors.IsDefinitive(err) {
			return result, err
		}
		logger.Error("All data paths failed",
			zap.String("operation", operation),
			zap.Error(err))
		return result, fmt.Errorf("%s: %w: %w", operation, apperrors.ErrUnavailable, err)
	}
	return result, nil
}

// ExecErr adapts Exec to operations that return no value.
func ExecErr(ctx context.Context, gate *HealthGate, operation string, primary, fallback func(ctx context.Context) error) error {
	_, err := Exec(ctx, gate, operation,
		func(ctx context.Context) (struct{}, error) { return struct{}{}, primary(ctx) },
		func(ctx context.Context) (struct{}, error) { return struct{}{}, fallback(ctx) },
	)
	return err
}

func run[T any](ctx context.Context, gate *HealthGate, operation string, primary, fallback Source[T], stopOnDefinitive bool) (result T, path Path, err error) {
	ctx, span := tracing.StartSpan(ctx, "data."+operation, attribute.String("data.operation", operation))
	defer func() {
		span.SetAttributes(attribute.String("data.path", string(path)))
		tracing.EndSpan(span, err)
	}()

	return dispatch(ctx, gate, operation, primary, fallback, stopOnDefinitive)
}

func dispatch[T any](ctx context.Context, gate *HealthGate, operation string, primary, fallback Source[T], stopOnDefinitive bool) (T, Path, error) {
	if gate.Healthy(ctx) {
		result, err := call(ctx, operation, PathPrimary, primary)
		if err == nil {
			logger.Debug("Data access served",
				zap.String("operation", operation),
				zap.String("path", string(PathPrimary)))
			metrics.DataAccessTotal.WithLabelValues(operation, string(PathPrimary)).Inc()
			return result, PathPrimary, nil
		}
		if stopOnDefinitive && apperrors.IsDefinitive(err) {
			return result, PathPrimary, err
		}
		logger.Warn("Primary store call failed, trying fallback",
			zap.String("operation", operation),
			zap.Error(err))
	} else {
		logger.Debug("Primary store marked unhealthy, using fallback",
			zap.String("operation", operation))
	}

	result, err := call(ctx, operation, PathFallback, fallback)
	if err != nil {
		if !apperrors.IsDefinitive(err) {
			logger.Warn("Fallback store call failed",
				zap.String("operation", operation),
				zap.Error(err))
		}
		var zero T
		return zero, PathFallback, err
	}

	logger.Info("Data access served",
		zap.String("operation", operation),
		zap.String("path", string(PathFallback)))
	metrics.DataAccessTotal.WithLabelValues(operation, string(PathFallback)).Inc()
	return result, PathFallback, nil
}

// call runs src and turns a panic into an error for that path.
func call[T any](ctx context.Context, operation string, path Path, src Source[T]) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Data path panicked",
				zap.String("operation", operation),
				zap.String("path", string(path)),
				zap.Any("panic", r),
				zap.Stack("stack"))
			var zero T
			result, err = zero, fmt.Errorf("%s path panicked: %v", path, r)
		}
	}()
	return src(ctx)
}
