package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitClients(t *testing.T, hub *Hub, topic string, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Clients(topic) == n }, time.Second, 5*time.Millisecond)
}

func TestHubRegisterBroadcastUnregister(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Stop()

	guest := &Client{Send: make(chan []byte, 4), Topics: []string{BookingTopic("b1")}}
	staff := &Client{Send: make(chan []byte, 4), Topics: []string{StaffTopic, BookingTopic("b1")}}
	hub.Register(guest)
	hub.Register(staff)
	waitClients(t, hub, BookingTopic("b1"), 2)

	hub.Broadcast(StaffTopic, []byte("staff-only"))
	hub.Broadcast(BookingTopic("b1"), []byte("both"))

	assert.Equal(t, "staff-only", string(<-staff.Send))
	assert.Equal(t, "both", string(<-staff.Send))
	assert.Equal(t, "both", string(<-guest.Send))

	hub.Unregister(guest)
	waitClients(t, hub, BookingTopic("b1"), 1)
	_, open := <-guest.Send
	assert.False(t, open)
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Stop()

	slow := &Client{Send: make(chan []byte), Topics: []string{StaffTopic}}
	hub.Register(slow)
	waitClients(t, hub, StaffTopic, 1)

	hub.Broadcast(StaffTopic, []byte("x"))
	waitClients(t, hub, StaffTopic, 0)
}

func TestRelayFromRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	hub := NewHub(nil)
	go hub.Run()
	defer hub.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub, err := hub.Subscribe(ctx, rdb, "hotel:test")
	require.NoError(t, err)
	go hub.Relay(ctx, sub)

	client := &Client{Send: make(chan []byte, 4), Topics: []string{BookingTopic("b7")}}
	hub.Register(client)
	waitClients(t, hub, BookingTopic("b7"), 1)

	pub := NewPublisher(rdb, "hotel:test")
	require.NoError(t, pub.Publish(ctx, BookingTopic("b7"), "chat.message", map[string]string{"body": "towels please"}))
	require.NoError(t, pub.Publish(ctx, BookingTopic("other"), "chat.message", map[string]string{"body": "ignored"}))

	select {
	case raw := <-client.Send:
		var env Envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		assert.Equal(t, "chat.message", env.Type)
		assert.JSONEq(t, `{"body":"towels please"}`, string(env.Data))
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for relayed message")
	}

	select {
	case raw := <-client.Send:
		t.Fatalf("unexpected message %s", raw)
	case <-time.After(50 * time.Millisecond):
	}
}
