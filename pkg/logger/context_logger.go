package logger

import "context"

type ctxKey struct{}

// FromContext returns the logger stored by WithLogger, or a default
// stderr logger at INFO when the context carries none
func FromContext(ctx context.Context) Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(Logger); ok {
			return l
		}
	}
	return DefaultLogger()
}

// WithLogger returns a copy of ctx carrying l
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}
