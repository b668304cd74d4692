package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"legal-rag-be/internal/pkg/logger"
	"legal-rag-be/pkg/rag/progress"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	module       = "Hub"
	redisChannel = "progress_events"
	publishWait  = 2 * time.Second

	outboundBufferSize = 256
)

// clusterMessage travels over redis so an instance without the client can
// hand the event to the instance holding the socket.
type clusterMessage struct {
	Origin         string          `json:"origin"`
	TargetClientID string          `json:"target_client_id"`
	Message        json.RawMessage `json:"message"`
}

// Hub is the registry of progress listeners keyed by client id. It is safe
// for concurrent use and implements progress.Sink.
type Hub struct {
	clients sync.Map // client id -> *Client

	// Redis connection for cross-instance delivery, nil when single instance
	rdb        *redis.Client
	instanceID string
	// outbound keeps relayed events in Send order; one goroutine drains it.
	outbound chan []byte

	logger logger.ILogger
}

var _ progress.Sink = (*Hub)(nil)

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		rdb:        rdb,
		instanceID: uuid.NewString(),
		outbound:   make(chan []byte, outboundBufferSize),
		logger:     log,
	}
}

// Register adds c. A previous listener with the same id is closed and
// replaced.
func (h *Hub) Register(c *Client) {
	if prev, loaded := h.clients.Swap(c.ID, c); loaded {
		prev.(*Client).close()
	}
	h.logger.Info(module, "Client registered", map[string]interface{}{"client_id": c.ID})
}

// Unregister removes c if it is still the current listener for its id.
func (h *Hub) Unregister(c *Client) {
	if h.clients.CompareAndDelete(c.ID, c) {
		h.logger.Info(module, "Client unregistered", map[string]interface{}{"client_id": c.ID})
	}
	c.close()
}

func (h *Hub) Lookup(clientID string) (*Client, bool) {
	v, ok := h.clients.Load(clientID)
	if !ok {
		return nil, false
	}
	return v.(*Client), true
}

// Send never blocks. A local listener whose buffer is full is dropped;
// an unknown id is queued for the other instances and published by Run in
// Send order.
func (h *Hub) Send(clientID string, event progress.Event) {
	if clientID == "" {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error(module, "Failed to encode progress event", map[string]interface{}{"error": err.Error()})
		return
	}

	if h.deliverLocal(clientID, data) {
		return
	}

	if h.rdb == nil {
		return
	}
	payload, _ := json.Marshal(clusterMessage{
		Origin:         h.instanceID,
		TargetClientID: clientID,
		Message:        data,
	})
	select {
	case h.outbound <- payload:
	default:
		h.logger.Warn(module, "Relay queue full, dropping progress event", map[string]interface{}{"client_id": clientID})
	}
}

func (h *Hub) deliverLocal(clientID string, data []byte) bool {
	c, ok := h.Lookup(clientID)
	if !ok {
		return false
	}
	if !c.trySend(data) {
		h.logger.Warn(module, "Client buffer full or closed, dropping listener", map[string]interface{}{"client_id": clientID})
		h.Unregister(c)
	}
	return true
}

// Run publishes queued events and relays events published by other
// instances until ctx is done. It is a no-op without redis.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb == nil {
		return
	}

	go h.publishLoop(ctx)

	pubsub := h.rdb.Subscribe(ctx, redisChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var payload clusterMessage
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				h.logger.Warn(module, "Redis message parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			if payload.Origin == h.instanceID {
				continue
			}
			h.deliverLocal(payload.TargetClientID, payload.Message)
		}
	}
}

func (h *Hub) publishLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case payload := <-h.outbound:
			pubCtx, cancel := context.WithTimeout(ctx, publishWait)
			err := h.rdb.Publish(pubCtx, redisChannel, payload).Err()
			cancel()
			if err != nil {
				h.logger.Warn(module, "Redis publish failed", map[string]interface{}{"error": err.Error()})
			}
		}
	}
}
