package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Spirits-Studio/zakeke-lite/internal/platform/logger"
)

const (
	outboundBuffer = 16
	// maxPending bounds what a channel keeps while nobody is listening.
	maxPending = 32
)

// SSEMessage carries one outbound envelope. Channel is the session id and Event the
// envelope's customMessageType.
type SSEMessage struct {
	Channel string `json:"channel"`
	Event   string `json:"event"`
	Data    any    `json:"data,omitempty"`
}

type SSEHub struct {
	mu            sync.RWMutex
	logger        *logger.Logger
	subscriptions map[string]map[*SSEClient]bool
	pending       map[string][]SSEMessage
	heartbeat     time.Duration
}

func NewSSEHub(log *logger.Logger) *SSEHub {
	if log == nil {
		log = logger.Nop()
	}
	return &SSEHub{
		logger:        log.With("component", "SSEHub"),
		subscriptions: make(map[string]map[*SSEClient]bool),
		pending:       make(map[string][]SSEMessage),
		heartbeat:     15 * time.Second,
	}
}

func (hub *SSEHub) NewSSEClient(sessionID string) *SSEClient {
	id := uuid.New()
	return &SSEClient{
		ID:        id,
		SessionID: sessionID,
		Channels:  make(map[string]bool),
		Outbound:  make(chan SSEMessage, outboundBuffer),
		done:      make(chan struct{}),
		Logger:    hub.logger.With("client_id", id.String()),
	}
}

// AddChannel subscribes the client and hands it whatever was queued while the channel
// had no listener.
func (hub *SSEHub) AddChannel(client *SSEClient, channel string) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	channel = strings.TrimSpace(channel)
	if channel == "" {
		return
	}

	client.Channels[channel] = true

	clients, exists := hub.subscriptions[channel]
	if !exists {
		clients = make(map[*SSEClient]bool)
		hub.subscriptions[channel] = clients
	}
	clients[client] = true

	backlog := hub.pending[channel]
	delete(hub.pending, channel)
	for _, msg := range backlog {
		select {
		case client.Outbound <- msg:
		default:
			hub.logger.Warn("Dropping queued SSE message; outbound buffer full", "client_id", client.ID, "event", msg.Event)
		}
	}

	hub.logger.Debug("SSE client subscribed", "client_id", client.ID, "channel", channel, "replayed", len(backlog))
}

func (hub *SSEHub) RemoveChannel(client *SSEClient, channel string) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	channel = strings.TrimSpace(channel)
	if channel == "" {
		return
	}
	delete(client.Channels, channel)

	if subMap, ok := hub.subscriptions[channel]; ok {
		delete(subMap, client)
		if len(subMap) == 0 {
			delete(hub.subscriptions, channel)
		}
	}
	hub.logger.Debug("SSE client unsubscribed from channel", "client_id", client.ID, "channel", channel)
}

func (hub *SSEHub) RemoveClient(client *SSEClient) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	for ch := range client.Channels {
		if subMap, ok := hub.subscriptions[ch]; ok {
			delete(subMap, client)
			if len(subMap) == 0 {
				delete(hub.subscriptions, ch)
			}
		}
	}
	client.Channels = make(map[string]bool)
	hub.logger.Debug("SSE client unsubscribed from all channels", "client_id", client.ID)
}

// Broadcast delivers to every subscriber without blocking. With no subscriber the
// message is queued for the next one, oldest dropped first.
func (hub *SSEHub) Broadcast(msg SSEMessage) {
	if msg.Channel == "" {
		return
	}
	hub.mu.Lock()
	defer hub.mu.Unlock()

	clientsMap := hub.subscriptions[msg.Channel]
	if len(clientsMap) == 0 {
		q := append(hub.pending[msg.Channel], msg)
		if len(q) > maxPending {
			q = q[len(q)-maxPending:]
		}
		hub.pending[msg.Channel] = q
		return
	}
	for c := range clientsMap {
		select {
		case c.Outbound <- msg:
		default:
			hub.logger.Warn("Dropping SSE message; outbound buffer full", "client_id", c.ID, "event", msg.Event)
		}
	}
}

// Subscribers reports how many clients listen on channel.
func (hub *SSEHub) Subscribers(channel string) int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	return len(hub.subscriptions[channel])
}

// Forget drops anything queued for channel.
func (hub *SSEHub) Forget(channel string) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	delete(hub.pending, channel)
}

// ServeHTTP streams the client's messages as SSE events named after the message type,
// each carrying the JSON envelope.
func (hub *SSEHub) ServeHTTP(w http.ResponseWriter, r *http.Request, client *SSEClient) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported!", http.StatusInternalServerError)
		return
	}
	ctx := r.Context()

	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(hub.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			hub.logger.Debug("SSE client context done", "client_id", client.ID, "err", ctx.Err())
			return
		case <-client.done:
			return
		case <-heartbeat.C:
			_, _ = fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case msg, ok := <-client.Outbound:
			if !ok {
				return
			}
			jsonBytes, err := json.Marshal(msg.Data)
			if err != nil {
				hub.logger.Warn("Failed to marshal SSE message", "event", msg.Event, "error", err)
				continue
			}
			_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, jsonBytes)
			flusher.Flush()
		}
	}
}

// CloseClient ends the client's stream and unsubscribes it. Safe to call twice.
func (hub *SSEHub) CloseClient(client *SSEClient) {
	hub.RemoveClient(client)
	hub.mu.Lock()
	defer hub.mu.Unlock()
	select {
	case <-client.done:
		return
	default:
	}
	close(client.done)
	close(client.Outbound)
}
