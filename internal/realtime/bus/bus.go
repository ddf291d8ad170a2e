package bus

import (
	"context"

	"github.com/Spirits-Studio/zakeke-lite/internal/realtime"
)

// Bus fans outbound session messages out to every service instance, so whichever
// instance holds the parent's event stream can deliver them.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}
