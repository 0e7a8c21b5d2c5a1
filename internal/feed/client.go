// Package feed pushes complaint-list refresh signals to connected portal
// clients. Events arrive over Redis pub/sub so every instance sees
// submissions made on any other instance.
package feed

import (
	"github.com/nagarajgmcs24/fwdproject/internal/appstate"
	"github.com/nagarajgmcs24/fwdproject/internal/models"
)

// Message types written to clients.
const (
	MessageState = "state"
	MessageEvent = "event"
)

// Message is what a client receives: its new view state and, when the
// change was caused by a complaint event, that event.
type Message struct {
	Type  string                 `json:"type"`
	State appstate.State         `json:"state"`
	Event *models.ComplaintEvent `json:"event,omitempty"`
}

// Client is one connected portal session.
type Client interface {
	// GetClientID returns the unique identifier of the session.
	GetClientID() string
	// State returns the current view state.
	State() appstate.State
	// Apply runs the state transition for a and stores the result.
	Apply(a appstate.Action) appstate.State

	// GetSendChannel returns the channel the hub writes messages to.
	GetSendChannel() chan<- Message

	Run()
	Close()
}
