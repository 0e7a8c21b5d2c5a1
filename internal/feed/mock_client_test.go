package feed_test

import (
	"sync"

	"github.com/nagarajgmcs24/fwdproject/internal/appstate"
	"github.com/nagarajgmcs24/fwdproject/internal/feed"
)

type MockClient struct {
	id          string
	mu          sync.Mutex
	state       appstate.State
	closed      bool
	RecvChannel chan feed.Message
}

func newMockClient(id string, state appstate.State) *MockClient {
	return &MockClient{
		id:          id,
		state:       state,
		RecvChannel: make(chan feed.Message, 10),
	}
}

func (c *MockClient) GetClientID() string { return c.id }

func (c *MockClient) State() appstate.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *MockClient) Apply(a appstate.Action) appstate.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = appstate.Transition(c.state, a)
	return c.state
}

func (c *MockClient) GetSendChannel() chan<- feed.Message { return c.RecvChannel }

func (c *MockClient) Run() {}

func (c *MockClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *MockClient) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
