// Package kit carries the small cross-transport plumbing shared by the
// HTTP and MCP surfaces: the transport-agnostic endpoint shape and request
// context enrichment.
package kit

import "context"

// Endpoint is a transport-agnostic operation: decoded request in, response
// value out. HTTP handlers and MCP tools both wrap Endpoints.
type Endpoint func(ctx context.Context, req any) (any, error)

type contextKey string

const (
	// RequestIDKey is the context key for the per-request ID.
	RequestIDKey contextKey = "kit_request_id"

	// TransportKey is the context key for the transport name ("http", "mcp").
	TransportKey contextKey = "kit_transport"
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(RequestIDKey).(string)
	return v
}

func WithTransport(ctx context.Context, t string) context.Context {
	return context.WithValue(ctx, TransportKey, t)
}

func GetTransport(ctx context.Context) string {
	if v, ok := ctx.Value(TransportKey).(string); ok {
		return v
	}
	return "http"
}
