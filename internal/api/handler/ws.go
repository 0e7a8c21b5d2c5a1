package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/nagarajgmcs24/fwdproject/internal/appstate"
	"github.com/nagarajgmcs24/fwdproject/internal/feed"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The portal is served from other origins; the feed carries no private data.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeFeed upgrades the connection and registers it with the feed hub.
// ?ward_id= and ?lang= seed the initial view state.
func (h *Handler) ServeFeed(c *gin.Context) {
	initial := appstate.Initial()
	if wardID := c.Query("ward_id"); wardID != "" {
		initial = appstate.Transition(initial, appstate.Action{Type: appstate.ActionSelectWard, Value: wardID})
	}
	initial = appstate.Transition(initial, appstate.Action{Type: appstate.ActionSetLanguage, Value: lang(c)})

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.Logger.Debug("feed upgrade failed", zap.Error(err))
		return
	}

	client := feed.NewWebSocketClient(uuid.NewString(), conn, h.Hub, initial)
	client.Send <- feed.Message{Type: feed.MessageState, State: initial}

	if !h.Hub.Register(c.Request.Context(), client) {
		h.Logger.Debug("feed hub stopped, dropping connection")
		client.Close()
		conn.Close()
		return
	}
	client.Run()
}
