package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mindwell-care/mindwell-backend-go/internal/core/translation"
	"github.com/sirupsen/logrus"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

// Channel modes
const (
	ModeTranslate = "translate"
	ModeDetect    = "detect"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one realtime translation channel: a sequential message
// loop that receives a frame, dispatches it to the translator and
// sends one reply, until the peer disconnects.
type Client struct {
	ID string

	userID       int
	targetLocale string
	mode         string

	conn *websocket.Conn
	send chan []byte

	hub        *Hub
	translator *translation.Translator
	logger     *logrus.Logger
}

// Serve upgrades the connection and starts the channel. The caller has
// already authenticated the user; targetLocale is the channel's
// default target, normally the user's consented locale.
func Serve(hub *Hub, translator *translation.Translator, w http.ResponseWriter, r *http.Request, userID int, targetLocale, mode string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.logger.WithError(err).Error("Failed to upgrade realtime translation connection")
		return
	}

	client := &Client{
		ID:           uuid.New().String(),
		userID:       userID,
		targetLocale: targetLocale,
		mode:         mode,
		conn:         conn,
		send:         make(chan []byte, 64),
		hub:          hub,
		translator:   translator,
		logger:       hub.logger,
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// ClosePolicyViolation rejects an unauthenticated connection attempt
// with a policy-violation close code.
func ClosePolicyViolation(w http.ResponseWriter, r *http.Request, reason string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason),
		time.Now().Add(writeWait),
	)
	conn.Close()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.WithError(err).Error("Realtime translation connection error")
			}
			break
		}

		// One request, one reply; malformed input answers an error
		// frame and the loop continues
		c.reply(c.handleMessage(message))
		c.hub.messageHandled()
	}
}

// handleMessage validates and dispatches one frame, returning the
// reply payload.
func (c *Client) handleMessage(raw []byte) interface{} {
	var req TranslateRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return ErrorResponse{Error: "Invalid JSON format", Status: "error"}
	}
	if req.Text == "" {
		return ErrorResponse{Error: "Invalid request format", Status: "error"}
	}

	ctx := context.Background()

	if c.mode == ModeDetect {
		detected, err := c.translator.DetectLanguage(ctx, req.Text)
		if err != nil || detected == "" {
			return ErrorResponse{Error: "Language detection failed", Status: "error"}
		}
		return DetectResponse{
			Text:             req.Text,
			DetectedLanguage: detected,
			LanguageName:     c.languageName(detected),
			Status:           "success",
		}
	}

	target := req.TargetLanguage
	if target == "" {
		target = c.targetLocale
	}

	if err := c.translator.ValidateLocales(target, req.SourceLanguage); err != nil {
		return ErrorResponse{Error: err.Error(), Status: "error"}
	}

	translated, err := c.translator.TranslateText(ctx, req.Text, target, req.SourceLanguage)
	if err != nil {
		return ErrorResponse{Error: "Translation failed", Status: "error"}
	}

	return TranslateResponse{
		OriginalText:   req.Text,
		TranslatedText: translated,
		SourceLanguage: req.SourceLanguage,
		TargetLanguage: target,
		Status:         "success",
	}
}

func (c *Client) reply(payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		c.logger.WithError(err).Error("Failed to encode realtime translation reply")
		return
	}
	select {
	case c.send <- raw:
	default:
		// Send buffer full, drop the connection
		c.hub.unregister <- c
	}
}

func (c *Client) languageName(code string) string {
	if c.translator == nil {
		return code
	}
	return c.translator.LanguageName(code)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
