// Package log carries a cdr.dev/slog logger through a context.
package log

import (
	"context"
	"os"
	"testing"

	"cdr.dev/slog"
	"cdr.dev/slog/sloggers/sloghuman"
	"cdr.dev/slog/sloggers/slogtest"
)

var _default = Make(false)

type loggerKey struct{}

// Make returns a human readable logger writing to stderr.
func Make(debug bool) slog.Logger {
	l := slog.Make(sloghuman.Sink(os.Stderr)).Named("plantimg")
	if debug {
		l = l.Leveled(slog.LevelDebug)
	}
	return l
}

func from(ctx context.Context) slog.Logger {
	l, ok := ctx.Value(loggerKey{}).(slog.Logger)
	if !ok {
		return _default
	}
	return l
}

func With(ctx context.Context, l slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// WithTB calls With with the result of slogtest.Make.
func WithTB(ctx context.Context, t testing.TB, opts *slogtest.Options) context.Context {
	return With(ctx, slogtest.Make(t, opts).Leveled(slog.LevelDebug))
}

func Debug(ctx context.Context, msg string, fields ...slog.Field) {
	slog.Helper()
	from(ctx).Debug(ctx, msg, fields...)
}

func Info(ctx context.Context, msg string, fields ...slog.Field) {
	slog.Helper()
	from(ctx).Info(ctx, msg, fields...)
}

func Warn(ctx context.Context, msg string, fields ...slog.Field) {
	slog.Helper()
	from(ctx).Warn(ctx, msg, fields...)
}

func Error(ctx context.Context, msg string, fields ...slog.Field) {
	slog.Helper()
	from(ctx).Error(ctx, msg, fields...)
}

// Fatal logs at fatal level and exits.
func Fatal(ctx context.Context, msg string, fields ...slog.Field) {
	slog.Helper()
	from(ctx).Fatal(ctx, msg, fields...)
}
