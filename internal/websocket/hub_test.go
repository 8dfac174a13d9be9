package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"bpmn-interview-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func attach(t *testing.T, h *Hub, sessionID string, buffer int) *Client {
	t.Helper()
	c := &Client{Hub: h, SessionID: sessionID, Send: make(chan []byte, buffer)}
	h.register <- c
	require.Eventually(t, func() bool { return h.Clients(sessionID) > 0 }, time.Second, time.Millisecond)
	return c
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case raw := <-c.Send:
		var m Message
		require.NoError(t, json.Unmarshal(raw, &m))
		return m
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
		return Message{}
	}
}

func TestHubDeliversPerSession(t *testing.T) {
	h := NewHub(nil, logger.NewNopLogger())
	go h.Run()
	defer h.Stop()

	a := attach(t, h, "a", 4)
	b := attach(t, h, "b", 4)

	h.Notify("a", "progress", map[string]interface{}{"step": "Safety check..."})

	got := receive(t, a)
	assert.Equal(t, "progress", got.Type)
	assert.Equal(t, "a", got.SessionID)
	assert.Equal(t, "Safety check...", got.Data.(map[string]interface{})["step"])
	assert.Empty(t, b.Send)
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	h := NewHub(nil, logger.NewNopLogger())
	go h.Run()
	defer h.Stop()

	c := attach(t, h, "s", 1)
	h.Notify("s", "progress", nil)
	h.Notify("s", "done", nil)

	assert.Equal(t, "progress", receive(t, c).Type)
	assert.Empty(t, c.Send)
	assert.Equal(t, 1, h.Clients("s"))
}

func TestHubUnregister(t *testing.T) {
	h := NewHub(nil, logger.NewNopLogger())
	go h.Run()
	defer h.Stop()

	c := attach(t, h, "s", 1)
	h.unregister <- c

	require.Eventually(t, func() bool { return h.Clients("s") == 0 }, time.Second, time.Millisecond)
	_, open := <-c.Send
	assert.False(t, open)
}
