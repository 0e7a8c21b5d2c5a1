package feed

import (
	"context"
	"sync"

	"github.com/nagarajgmcs24/fwdproject/internal/appstate"
	"github.com/nagarajgmcs24/fwdproject/internal/metrics"
	"github.com/nagarajgmcs24/fwdproject/internal/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// EventSource opens the subscription complaint events arrive on.
type EventSource interface {
	SubscribeToEvents(ctx context.Context) *redis.PubSub
}

// Hub tracks connected clients and fans complaint events out to them.
// All client bookkeeping happens on the Run goroutine.
type Hub struct {
	Clients map[string]Client

	RegisterCh   chan Client
	UnregisterCh chan Client
	EventCh      chan models.ComplaintEvent

	Events  EventSource
	Metrics *metrics.Collector
	Logger  *zap.Logger

	stopped  chan struct{}
	stopOnce sync.Once
}

// NewHub creates a hub. events may be nil, in which case only events pushed
// to EventCh are delivered.
func NewHub(events EventSource, collector *metrics.Collector, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		Clients:      make(map[string]Client),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		EventCh:      make(chan models.ComplaintEvent, 64),
		Events:       events,
		Metrics:      collector,
		Logger:       logger,
		stopped:      make(chan struct{}),
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.stopped
}

// Register hands a client to the hub. It reports false when the hub has
// stopped or ctx ends before Run accepts the client.
func (h *Hub) Register(ctx context.Context, client Client) bool {
	select {
	case h.RegisterCh <- client:
		return true
	case <-h.stopped:
		return false
	case <-ctx.Done():
		return false
	}
}

// Run processes registrations and events until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer h.stopOnce.Do(func() { close(h.stopped) })

	if h.Events != nil {
		h.StartPubSubListener(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			for id, client := range h.Clients {
				client.Close()
				delete(h.Clients, id)
			}
			h.Metrics.SetFeedClients(0)
			return

		case client := <-h.RegisterCh:
			h.Clients[client.GetClientID()] = client
			h.Metrics.SetFeedClients(len(h.Clients))
			h.Logger.Debug("feed client registered", zap.String("client_id", client.GetClientID()))

		case client := <-h.UnregisterCh:
			h.remove(client)

		case event := <-h.EventCh:
			h.handleEvent(event)
		}
	}
}

func (h *Hub) remove(client Client) {
	id := client.GetClientID()
	if _, ok := h.Clients[id]; !ok {
		return
	}
	delete(h.Clients, id)
	client.Close()
	h.Metrics.SetFeedClients(len(h.Clients))
	h.Logger.Debug("feed client unregistered", zap.String("client_id", id))
}

// handleEvent updates the state of every client interested in the event's
// ward and sends it the result.
//
// Created and updated complaints bump the refresh count. A succeeded
// submission moves clients still on that ward's report form to the
// complaint list.
func (h *Hub) handleEvent(event models.ComplaintEvent) {
	for _, client := range h.Clients {
		current := client.State()
		if current.SelectedWardID != "" && current.SelectedWardID != event.WardID {
			continue
		}

		var action appstate.Action
		switch event.Type {
		case models.EventComplaintCreated, models.EventComplaintUpdated:
			action = appstate.Action{Type: appstate.ActionComplaintSubmitted}
		case models.EventSubmissionSucceeded:
			if current.View != appstate.ViewReport || current.SelectedWardID != event.WardID {
				continue
			}
			action = appstate.Action{Type: appstate.ActionShowComplaints}
		default:
			continue
		}

		ev := event
		msg := Message{Type: MessageEvent, State: client.Apply(action), Event: &ev}
		select {
		case client.GetSendChannel() <- msg:
		default:
			h.Logger.Warn("feed client too slow, dropping", zap.String("client_id", client.GetClientID()))
			h.remove(client)
		}
	}
}
