package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/eskrenkovic/mediator-go"

	"go.uber.org/zap"
)

const LoggerContextKey contextKey = "logger"

// WithLogger stores logger in ctx for LogError and friends.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// Logger returns the request logger, decorated with the correlation id when present.
func Logger(ctx context.Context) *zap.Logger {
	logger, ok := ctx.Value(LoggerContextKey).(*zap.Logger)
	if !ok || logger == nil {
		logger = zap.L()
	}

	if correlationID, ok := ctx.Value(CorrelationIDContextKey).(string); ok && correlationID != "" {
		logger = logger.With(zap.String("correlation_id", correlationID))
	}

	return logger
}

func LogError(ctx context.Context, msg string, fields ...zap.Field) {
	Logger(ctx).Error(msg, fields...)
}

func LoggerHTTPMiddleware(logger *zap.Logger) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithLogger(r.Context(), logger)))
		}
	}
}

var _ mediator.PipelineBehavior = (*RequestLoggingBehavior)(nil)

type RequestLoggingBehavior struct {
	Logger *zap.Logger
}

func (b *RequestLoggingBehavior) Handle(
	ctx context.Context,
	request interface{},
	next mediator.RequestHandlerFunc,
) (interface{}, error) {
	var logFields []zap.Field

	correlationID := ctx.Value(CorrelationIDContextKey)
	if correlationID != nil && correlationID != "" {
		logFields = append(logFields, zap.Any("correlation_id", correlationID))
	}

	if request != nil {
		logFields = append(logFields, zap.String("request_type", fmt.Sprintf("%T", request)))
		logFields = append(logFields, zap.Any("request_body", request))
	}

	b.Logger.Info("processing request", logFields...)

	return next(ctx, request)
}

var _ mediator.PipelineBehavior = (*HandlerErrorLoggingBehavior)(nil)

type HandlerErrorLoggingBehavior struct {
	Logger *zap.Logger
}

func (b *HandlerErrorLoggingBehavior) Handle(
	ctx context.Context,
	request interface{},
	next mediator.RequestHandlerFunc,
) (interface{}, error) {
	response, err := next(ctx, request)
	if err != nil {
		fields := []zap.Field{
			zap.String("request_type", fmt.Sprintf("%T", request)),
			zap.Error(err),
		}

		// Client errors are expected traffic.
		var commandErr CommandError
		if errors.As(err, &commandErr) && commandErr.StatusCode < 500 {
			b.Logger.Info("handler rejected request", fields...)
		} else {
			b.Logger.Error("handler returned error", fields...)
		}
	}

	return response, err
}
