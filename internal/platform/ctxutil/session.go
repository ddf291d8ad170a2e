package ctxutil

import "context"

type sessionDataKey struct{}

// SessionData identifies the configurator session a request was authorized for.
type SessionData struct {
	SessionID string
}

func WithSessionData(ctx context.Context, sd *SessionData) context.Context {
	return context.WithValue(ctx, sessionDataKey{}, sd)
}

func GetSessionData(ctx context.Context) *SessionData {
	if sd, ok := ctx.Value(sessionDataKey{}).(*SessionData); ok {
		return sd
	}
	return nil
}
