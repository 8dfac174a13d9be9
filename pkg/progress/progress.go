package progress

import "context"

// Reporter receives human readable step labels while a long operation runs.
type Reporter func(step string)

type ctxKey struct{}

// WithReporter attaches r to ctx.
func WithReporter(ctx context.Context, r Reporter) context.Context {
	if r == nil {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, r)
}

// Report forwards step to the reporter in ctx, if any.
func Report(ctx context.Context, step string) {
	if r, ok := ctx.Value(ctxKey{}).(Reporter); ok {
		r(step)
	}
}
