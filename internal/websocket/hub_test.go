package websocket

import (
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(hub *Hub, id string, userID int, locale string) *Client {
	return &Client{
		ID:           id,
		userID:       userID,
		targetLocale: locale,
		mode:         ModeTranslate,
		send:         make(chan []byte, 4),
		hub:          hub,
		logger:       hub.logger,
	}
}

func TestHubRegistryKeepsPerUserLists(t *testing.T) {
	hub := NewHub(logrus.New())

	a := testClient(hub, "a", 1, "fr")
	b := testClient(hub, "b", 1, "fr")
	c := testClient(hub, "c", 2, "ar")

	hub.addClient(a)
	hub.addClient(b)
	hub.addClient(c)

	stats := hub.Stats()
	assert.Equal(t, 3, stats.ConnectedClients)
	assert.Equal(t, int64(3), stats.TotalConnections)

	users := hub.ActiveUsers()
	require.Len(t, users, 2)

	byID := make(map[int]ActiveUser)
	for _, u := range users {
		byID[u.UserID] = u
	}
	assert.Equal(t, 2, byID[1].Connections)
	assert.Equal(t, "fr", byID[1].Language)
	assert.Equal(t, 1, byID[2].Connections)
}

func TestHubRemoveClient(t *testing.T) {
	hub := NewHub(logrus.New())

	a := testClient(hub, "a", 1, "fr")
	b := testClient(hub, "b", 1, "fr")
	hub.addClient(a)
	hub.addClient(b)

	hub.removeClient(a)
	assert.Equal(t, 1, hub.Stats().ConnectedClients)

	// The send channel of the removed client is closed
	_, open := <-a.send
	assert.False(t, open)

	users := hub.ActiveUsers()
	require.Len(t, users, 1)
	assert.Equal(t, 1, users[0].Connections)

	// The last channel of a user removes the user entirely
	hub.removeClient(b)
	assert.Empty(t, hub.ActiveUsers())
	assert.Equal(t, 0, hub.Stats().ConnectedClients)
}

func TestHubRemoveUnknownClient(t *testing.T) {
	hub := NewHub(logrus.New())

	stray := testClient(hub, "x", 9, "en")
	hub.removeClient(stray)
	assert.Equal(t, 0, hub.Stats().ConnectedClients)
}

func TestHubMessageCounter(t *testing.T) {
	hub := NewHub(logrus.New())
	hub.messageHandled()
	hub.messageHandled()
	assert.Equal(t, int64(2), hub.Stats().MessagesHandled)
}

func TestMessageShapes(t *testing.T) {
	raw, err := json.Marshal(TranslateResponse{
		OriginalText:   "Hello",
		TranslatedText: "Bonjour",
		TargetLanguage: "fr",
		Status:         "success",
	})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "source_language")

	raw, err = json.Marshal(ErrorResponse{Error: "Invalid JSON format", Status: "error"})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"error":"Invalid JSON format"`)
}
