package server

import (
	"errors"
	"sync"

	"github.com/born-ml/digits/internal/nn"
	"github.com/born-ml/digits/internal/serialization"
)

// modelCache holds the most recently loaded network.
//
// The cached network is read-only. It is replaced whenever the modification
// time of either snapshot document changes, so a finished training run is
// picked up by the next request without a restart.
type modelCache struct {
	store *serialization.Store

	mu    sync.Mutex
	net   *nn.Network
	stamp serialization.Stamp
}

func newModelCache(store *serialization.Store) *modelCache {
	return &modelCache{store: store}
}

// Get returns the current network, reloading it if the documents changed.
// Returns serialization.ErrNoModel when no trained model exists.
func (c *modelCache) Get() (*nn.Network, error) {
	stamp, err := c.store.Stamp()
	if err != nil {
		c.reset()
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.net != nil && c.stamp.Equal(stamp) {
		return c.net, nil
	}

	net, _, err := c.store.Load()
	if err != nil {
		if errors.Is(err, serialization.ErrNoModel) {
			c.net = nil
		}
		return nil, err
	}
	c.net = net
	c.stamp = stamp
	return net, nil
}

func (c *modelCache) reset() {
	c.mu.Lock()
	c.net = nil
	c.stamp = serialization.Stamp{}
	c.mu.Unlock()
}
