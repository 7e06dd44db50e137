package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey string

const (
	clientKey    ctxKey = "client"
	requestIDKey ctxKey = "request_id"
)

// Client is the network identity of whoever performs the current request.
type Client struct {
	IP        string
	XFF       string
	UserAgent string
}

// WithClient stores the client network identity in the context.
func WithClient(ctx context.Context, c Client) context.Context {
	return context.WithValue(ctx, clientKey, c)
}

// ClientFromCtx extracts the client network identity from the context.
// Returns the zero Client and false if absent.
func ClientFromCtx(ctx context.Context) (Client, bool) {
	c, ok := ctx.Value(clientKey).(Client)
	return c, ok
}

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromCtx extracts the request ID from the context.
// Returns an empty string if absent.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// NewRequestID returns a fresh random request ID.
func NewRequestID() string {
	return uuid.NewString()
}
