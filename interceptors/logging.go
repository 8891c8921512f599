package interceptors

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
)

// fieldNames maps middleware keys onto the names the HTTP request log uses.
var fieldNames = map[string]string{
	"grpc.service":   "service",
	"grpc.method":    "method",
	"grpc.code":      "status_code",
	"grpc.time_ms":   "latency_ms",
	"grpc.duration":  "latency",
	"peer.address":   "client_ip",
	"grpc.component": "component",
}

// InterceptorLogger writes middleware events through l.
func InterceptorLogger(l *zap.Logger) logging.Logger {
	return logging.LoggerFunc(func(ctx context.Context, lvl logging.Level, msg string, fields ...any) {
		zf := zapFields(fields)
		switch lvl {
		case logging.LevelDebug:
			l.Debug(msg, zf...)
		case logging.LevelInfo:
			l.Info(msg, zf...)
		case logging.LevelError:
			l.Error(msg, zf...)
		default:
			l.Warn(msg, zf...)
		}
	})
}

// zapFields turns key/value pairs into zap fields. A trailing key without
// a value and non-string keys are skipped.
func zapFields(kv []any) []zap.Field {
	out := make([]zap.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		if name, ok := fieldNames[key]; ok {
			key = name
		}
		out = append(out, zap.Any(key, kv[i+1]))
	}
	return out
}

// CodeToLevel keeps the expected outcomes of access checks (denied,
// unauthenticated, unknown route) at info and reserves error for failures
// of the service itself.
func CodeToLevel(code codes.Code) logging.Level {
	switch code {
	case codes.OK, codes.InvalidArgument, codes.NotFound, codes.Unauthenticated, codes.PermissionDenied:
		return logging.LevelInfo
	case codes.Internal, codes.Unknown, codes.DataLoss, codes.Unimplemented, codes.Unavailable:
		return logging.LevelError
	default:
		return logging.LevelWarn
	}
}

// ZapLoggingInterceptor logs one line per finished call, tagged with the
// caller's user_id once authenticated.
func ZapLoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	opts := []logging.Option{
		logging.WithLogOnEvents(logging.FinishCall),
		logging.WithDurationField(logging.DurationToDurationField),
		logging.WithFieldsFromContext(func(ctx context.Context) logging.Fields {
			if id, ok := GetUserIDFromContext(ctx); ok {
				return logging.Fields{"user_id", id}
			}
			return nil
		}),
		logging.WithLevels(CodeToLevel),
	}
	return logging.UnaryServerInterceptor(InterceptorLogger(logger), opts...)
}
