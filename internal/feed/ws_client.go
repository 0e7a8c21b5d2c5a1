package feed

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nagarajgmcs24/fwdproject/internal/appstate"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// WebSocketClient implements Client over a gorilla/websocket connection.
// Inbound frames are JSON appstate.Action values; every applied action is
// answered with the new state.
type WebSocketClient struct {
	ID     string
	Conn   *websocket.Conn
	Hub    *Hub
	Send   chan Message
	Logger *zap.Logger

	mu        sync.Mutex
	state     appstate.State
	done      chan struct{}
	closeOnce sync.Once
}

// NewWebSocketClient wraps conn with the initial view state.
func NewWebSocketClient(id string, conn *websocket.Conn, hub *Hub, initial appstate.State) *WebSocketClient {
	return &WebSocketClient{
		ID:     id,
		Conn:   conn,
		Hub:    hub,
		Send:   make(chan Message, 256),
		Logger: hub.Logger,
		state:  initial,
		done:   make(chan struct{}),
	}
}

func (c *WebSocketClient) GetClientID() string            { return c.ID }
func (c *WebSocketClient) GetSendChannel() chan<- Message { return c.Send }

func (c *WebSocketClient) State() appstate.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *WebSocketClient) Apply(a appstate.Action) appstate.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = appstate.Transition(c.state, a)
	return c.state
}

// Run starts the read and write pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close stops writePump, which closes the connection. Safe to call more
// than once.
func (c *WebSocketClient) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *WebSocketClient) readPump() {
	defer func() {
		select {
		case c.Hub.UnregisterCh <- c:
		case <-c.done:
		case <-c.Hub.Done():
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Logger.Warn("feed read failed", zap.String("client_id", c.ID), zap.Error(err))
			}
			break
		}

		var action appstate.Action
		if err := json.Unmarshal(message, &action); err != nil {
			c.Logger.Debug("invalid action from feed client", zap.String("client_id", c.ID), zap.Error(err))
			continue
		}

		select {
		case c.Send <- Message{Type: MessageState, State: c.Apply(action)}:
		case <-c.done:
			return
		default:
		}
	}
}

func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
