package realtime

import (
	"github.com/google/uuid"

	"github.com/Spirits-Studio/zakeke-lite/internal/platform/logger"
)

// SSEClient is one open event stream. A parent page bridge holds one per session.
type SSEClient struct {
	ID        uuid.UUID
	SessionID string
	Channels  map[string]bool
	Outbound  chan SSEMessage
	done      chan struct{}
	Logger    *logger.Logger
}
