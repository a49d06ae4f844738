package obs

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// RequestID returns the request id carried by ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// Time logs an operation's duration when the returned func runs, tagging the
// request id and any error the operation finished with.
//
//	defer obs.Time(ctx, log, "optimizer.Optimize")(&err)
func Time(ctx context.Context, log zerolog.Logger, name string) func(errp *error) {
	start := time.Now()

	return func(errp *error) {
		ev := log.Debug()
		if errp != nil && *errp != nil {
			ev = log.Warn().Err(*errp)
		}
		ev.Str("req_id", RequestID(ctx)).
			Str("op", name).
			Int64("dur_ms", time.Since(start).Milliseconds()).
			Msg("op finished")
	}
}
