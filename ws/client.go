package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"campustalk_backend/internal/logger"
	"campustalk_backend/internal/realtime"
	"campustalk_backend/internal/services"
	"campustalk_backend/internal/services/dto"

	"github.com/gorilla/websocket"
	"gorm.io/gorm"
)

const (
	sendBuffer = 64

	// Clients ping on this interval; the server side treats a ping as a
	// presence heartbeat.
	heartbeatInterval = 30 * time.Second
)

type IncomingMessage struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan any

	manager    *Manager
	db         *gorm.DB
	readStatus services.ReadStatusService
	presence   services.PresenceService

	mu       sync.Mutex
	subs     map[string]*realtime.Subscription
	closed   bool
	done     chan struct{}
	shutdown sync.Once
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // origin is enforced by the gateway
	},
}

func ServeWS(
	manager *Manager,
	w http.ResponseWriter,
	r *http.Request,
	userID string,
	db *gorm.DB,
	readStatus services.ReadStatusService,
	presence services.PresenceService,
) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("ws upgrade failed", "error", err)
		return
	}

	client := &Client{
		UserID:     userID,
		Conn:       conn,
		Send:       make(chan any, sendBuffer),
		manager:    manager,
		db:         db,
		readStatus: readStatus,
		presence:   presence,
		subs:       make(map[string]*realtime.Subscription),
		done:       make(chan struct{}),
	}

	// Every client always listens on its own user channel.
	client.subscribe(realtime.UserChannel(userID))

	manager.register <- client

	go client.readPump()
	go client.writePump()
}

func (c *Client) subscribe(channel string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if _, ok := c.subs[channel]; ok {
		return
	}
	sub := c.manager.bus.Subscribe(channel)
	c.subs[channel] = sub

	go func() {
		for event := range sub.C {
			select {
			case c.Send <- event:
			case <-c.done:
				return
			default:
				logger.Warn("ws send buffer full, dropping event",
					"user_id", c.UserID, "channel", channel)
			}
		}
	}()
}

func (c *Client) unsubscribe(channel string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sub, ok := c.subs[channel]; ok {
		sub.Unsubscribe()
		delete(c.subs, channel)
	}
}

// teardown cancels every subscription exactly once, no matter how many
// paths race into it. Send stays open; writePump exits via done.
func (c *Client) teardown() {
	c.shutdown.Do(func() {
		c.mu.Lock()
		c.closed = true
		for _, sub := range c.subs {
			sub.Unsubscribe()
		}
		c.subs = make(map[string]*realtime.Subscription)
		c.mu.Unlock()
		close(c.done)
	})
}

func (c *Client) readPump() {
	defer func() {
		c.manager.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetPongHandler(func(string) error {
		c.touchPresence()
		return nil
	})

	for {
		_, msgBytes, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("ws read error", "user_id", c.UserID, "error", err)
			}
			break
		}

		var msg IncomingMessage
		if err := json.Unmarshal(msgBytes, &msg); err != nil {
			logger.Warn("ws malformed message", "user_id", c.UserID, "error", err)
			continue
		}
		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(heartbeatInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case msg := <-c.Send:
			if err := c.Conn.WriteJSON(msg); err != nil {
				logger.Warn("ws write error", "user_id", c.UserID, "error", err)
				return
			}
		case <-ticker.C:
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(msg IncomingMessage) {
	ctx := context.Background()

	switch msg.Action {
	case "subscribe":
		var payload struct {
			Channel string `json:"channel"`
		}
		if err := json.Unmarshal(msg.Data, &payload); err != nil || payload.Channel == "" {
			logger.Warn("ws invalid subscribe payload", "user_id", c.UserID)
			return
		}
		c.subscribe(payload.Channel)

	case "unsubscribe":
		var payload struct {
			Channel string `json:"channel"`
		}
		if err := json.Unmarshal(msg.Data, &payload); err != nil || payload.Channel == "" {
			return
		}
		c.unsubscribe(payload.Channel)

	case "mark_as_read":
		var req dto.MarkAsReadRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			logger.Warn("ws invalid mark_as_read payload", "user_id", c.UserID)
			return
		}
		if _, err := c.readStatus.MarkAsRead(ctx, c.db, c.UserID, &req); err != nil {
			logger.Warn("ws mark_as_read failed", "user_id", c.UserID, "error", err)
		}

	case "heartbeat":
		c.touchPresence()

	default:
		logger.Warn("ws unhandled action", "user_id", c.UserID, "action", msg.Action)
	}
}

func (c *Client) touchPresence() {
	if err := c.presence.Heartbeat(context.Background(), c.db, c.UserID); err != nil {
		logger.Warn("ws heartbeat failed", "user_id", c.UserID, "error", err)
	}
}
