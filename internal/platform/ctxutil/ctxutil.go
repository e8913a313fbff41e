package ctxutil

import (
	"context"

	"github.com/yungbote/creatorai-backend/internal/domain/usage"
)

type (
	traceDataKey   struct{}
	requestDataKey struct{}
)

// TraceData carries correlation ids for logs and response headers.
type TraceData struct {
	TraceID   string
	RequestID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if td, ok := ctx.Value(traceDataKey{}).(*TraceData); ok {
		return td
	}
	return nil
}

// RequestData is the caller resolved by the auth middleware. Usage is the snapshot
// taken when the request started; it is not refreshed mid-request.
type RequestData struct {
	UserID    string
	SessionID string
	Plan      usage.Plan
	Usage     usage.Snapshot
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}

// Default returns context.Background() when ctx is nil.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
