package feed

import (
	"context"
	"encoding/json"

	"github.com/nagarajgmcs24/fwdproject/internal/models"
	"go.uber.org/zap"
)

// StartPubSubListener forwards complaint events from Redis into EventCh.
func (h *Hub) StartPubSubListener(ctx context.Context) {
	pubsub := h.Events.SubscribeToEvents(ctx)

	go func() {
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
				var event models.ComplaintEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					h.Logger.Warn("invalid complaint event payload", zap.Error(err))
					continue
				}
				select {
				case h.EventCh <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
}
