package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Client is one websocket connection subscribed to a set of topics.
type Client struct {
	Conn        *websocket.Conn
	Send        chan []byte
	Topics      []string
	PrincipalID string
}

type broadcastMsg struct {
	Topic string
	Data  []byte
}

// Hub fans messages out to the clients of each topic.
type Hub struct {
	topics     map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastMsg
	stop       chan struct{}
	mu         sync.RWMutex
	logger     *zap.Logger
}

// NewHub creates an idle hub; call Run to start it.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		topics:     make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastMsg, 64),
		stop:       make(chan struct{}),
		logger:     logger.Named("realtime"),
	}
}

// Run serves register, unregister and broadcast requests until Stop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			for _, clients := range h.topics {
				for c := range clients {
					h.dropLocked(c)
				}
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			for _, topic := range c.Topics {
				if h.topics[topic] == nil {
					h.topics[topic] = make(map[*Client]bool)
				}
				h.topics[topic][c] = true
			}
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			h.dropLocked(c)
			h.mu.Unlock()

		case m := <-h.broadcast:
			h.mu.Lock()
			for c := range h.topics[m.Topic] {
				select {
				case c.Send <- m.Data:
				default:
					h.logger.Warn("dropping slow client", zap.String("principal_id", c.PrincipalID))
					h.dropLocked(c)
				}
			}
			h.mu.Unlock()
		}
	}
}

// dropLocked removes c from every topic and closes its send channel once.
func (h *Hub) dropLocked(c *Client) {
	found := false
	for _, topic := range c.Topics {
		if clients := h.topics[topic]; clients != nil && clients[c] {
			delete(clients, c)
			found = true
			if len(clients) == 0 {
				delete(h.topics, topic)
			}
		}
	}
	if found {
		close(c.Send)
	}
}

// Stop terminates Run and disconnects all clients.
func (h *Hub) Stop() {
	close(h.stop)
}

// Register adds c to its topics.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.stop:
	}
}

// Unregister removes c.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.stop:
	}
}

// Broadcast queues data for every client of topic.
func (h *Hub) Broadcast(topic string, data []byte) {
	select {
	case h.broadcast <- broadcastMsg{Topic: topic, Data: data}:
	case <-h.stop:
	}
}

// Clients returns how many clients are subscribed to topic.
func (h *Hub) Clients(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// Subscribe joins the redis channel and waits for the confirmation.
func (h *Hub) Subscribe(ctx context.Context, client *redis.Client, channel string) (*redis.PubSub, error) {
	sub := client.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}
	h.logger.Info("subscribed to realtime channel", zap.String("channel", channel))
	return sub, nil
}

// Relay forwards envelopes from sub to the hub until ctx ends.
func (h *Hub) Relay(ctx context.Context, sub *redis.PubSub) {
	defer sub.Close()
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				h.logger.Warn("invalid realtime payload", zap.Error(err))
				continue
			}
			if env.Topic == "" {
				continue
			}
			h.Broadcast(env.Topic, []byte(msg.Payload))
		}
	}
}
