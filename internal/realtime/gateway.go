package realtime

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/spec-kit/hotel-service/internal/auth"
	"github.com/spec-kit/hotel-service/internal/domain"
	"github.com/spec-kit/hotel-service/internal/repository"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 64
)

// Gateway upgrades authenticated HTTP requests to websocket clients of a Hub.
type Gateway struct {
	hub      *Hub
	resolver *auth.Resolver
	bookings repository.BookingRepository
	origins  []string
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewGateway builds a gateway. An origins list containing "*" accepts any origin.
func NewGateway(hub *Hub, resolver *auth.Resolver, bookings repository.BookingRepository, origins []string, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Gateway{
		hub:      hub,
		resolver: resolver,
		bookings: bookings,
		origins:  origins,
		logger:   logger.Named("gateway"),
	}
	g.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     g.checkOrigin,
	}
	return g
}

// Handler returns the gateway's routes wrapped in CORS handling.
func (g *Gateway) Handler() http.Handler {
	router := httprouter.New()
	router.GET("/ws", g.ServeWS)
	router.GET("/health/live", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusNoContent)
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   g.origins,
		AllowedMethods:   []string{http.MethodGet},
		AllowedHeaders:   []string{"Authorization"},
		AllowCredentials: false,
	})
	return c.Handler(router)
}

// ServeWS authenticates the caller and joins it to its topics.
// Query: token (or Authorization header) and booking_id.
func (g *Gateway) ServeWS(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	}
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	principal, err := g.resolver.Resolve(r.Context(), token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	topics, status, err := g.topicsFor(r.Context(), principal, r.URL.Query().Get("booking_id"))
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Debug("upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		Conn:        conn,
		Send:        make(chan []byte, sendBuffer),
		Topics:      topics,
		PrincipalID: principal.ID(),
	}
	g.hub.Register(client)
	go g.writePump(client)
	go g.readPump(client)
}

func (g *Gateway) topicsFor(ctx context.Context, p *auth.Principal, bookingID string) ([]string, int, error) {
	var topics []string
	if p.SubjectType == domain.SubjectTypeStaff {
		topics = append(topics, StaffTopic, StaffMemberTopic(p.Staff.ID))
	}

	if bookingID == "" {
		if len(topics) == 0 {
			return nil, http.StatusBadRequest, errors.New("booking_id is required")
		}
		return topics, 0, nil
	}

	booking, err := g.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, http.StatusNotFound, errors.New("booking not found")
		}
		return nil, http.StatusInternalServerError, errors.New("booking lookup failed")
	}
	if p.SubjectType == domain.SubjectTypeUser && booking.UserID != p.User.ID {
		return nil, http.StatusForbidden, errors.New("booking belongs to another guest")
	}
	return append(topics, BookingTopic(booking.ID)), 0, nil
}

func (g *Gateway) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range g.origins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

func (g *Gateway) writePump(c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only services control frames; chat is posted over HTTP so it is persisted.
func (g *Gateway) readPump(c *Client) {
	defer func() {
		g.hub.Unregister(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(4096)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
