package notify

import "context"

type clientIDKey struct{}

// WithClientID returns ctx tagged with the anonymous client id that issued
// the current request.
func WithClientID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, clientIDKey{}, id)
}

// ClientIDFrom returns the client id stored by WithClientID, or "".
func ClientIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(clientIDKey{}).(string)
	return id
}
