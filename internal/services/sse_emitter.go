package services

import (
	"context"

	domain "github.com/Spirits-Studio/zakeke-lite/internal/domain/configurator"
	"github.com/Spirits-Studio/zakeke-lite/internal/realtime"
	"github.com/Spirits-Studio/zakeke-lite/internal/realtime/bus"
)

type SSEEmitter interface {
	Emit(ctx context.Context, msg realtime.SSEMessage) error
}

type HubEmitter struct{ Hub *realtime.SSEHub }

func (e *HubEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) error {
	e.Hub.Broadcast(msg)
	return nil
}

// RedisEmitter publishes through the bus; every instance's forwarder feeds its own hub.
type RedisEmitter struct{ Bus bus.Bus }

func (e *RedisEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) error {
	return e.Bus.Publish(ctx, msg)
}

// OutboundPoster delivers session envelopes to the parent page over SSE.
type OutboundPoster struct {
	Emitter SSEEmitter
}

func (p *OutboundPoster) Post(ctx context.Context, sessionID string, env domain.Envelope) error {
	return p.Emitter.Emit(ctx, realtime.SSEMessage{
		Channel: sessionID,
		Event:   env.CustomMessageType,
		Data:    env,
	})
}
