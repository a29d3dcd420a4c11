package coordinator

import (
	"github.com/berfenger/econet2mqtt/internal/core/port"
	"github.com/berfenger/econet2mqtt/pkg/econet300"

	"go.uber.org/zap"
)

// DataCoordinator keeps the latest controller snapshot and pushes every
// refresh to its listeners. It is not safe for concurrent use; the
// coordinator actor owns it.
type DataCoordinator struct {
	data              econet300.Params
	lastUpdateSuccess bool
	lastError         error
	listeners         []*listener
	logger            *zap.Logger
}

type listener struct {
	fn func()
}

func NewDataCoordinator(logger *zap.Logger) *DataCoordinator {
	return &DataCoordinator{
		data:   econet300.Params{},
		logger: logger,
	}
}

func (c *DataCoordinator) Data() econet300.Params {
	return c.data
}

func (c *DataCoordinator) HasData(key string) bool {
	_, ok := c.data[key]
	return ok
}

func (c *DataCoordinator) LastUpdateSuccess() bool {
	return c.lastUpdateSuccess
}

func (c *DataCoordinator) LastError() error {
	return c.lastError
}

// Update replaces the snapshot and notifies listeners in registration order.
func (c *DataCoordinator) Update(data econet300.Params) {
	if data == nil {
		data = econet300.Params{}
	}
	c.data = data
	c.lastUpdateSuccess = true
	c.lastError = nil
	c.logger.Debug("coordinator: data updated", zap.Int("keys", len(data)), zap.Int("listeners", len(c.listeners)))
	c.notify()
}

// SetUpdateError keeps the previous snapshot but marks it stale.
func (c *DataCoordinator) SetUpdateError(err error) {
	c.lastUpdateSuccess = false
	c.lastError = err
	c.logger.Debug("coordinator: update failed", zap.Error(err))
	c.notify()
}

func (c *DataCoordinator) AddListener(fn func()) func() {
	l := &listener{fn: fn}
	c.listeners = append(c.listeners, l)
	return func() {
		for i := range c.listeners {
			if c.listeners[i] == l {
				c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
				return
			}
		}
	}
}

// Snapshot returns a copy that can leave the owning actor.
func (c *DataCoordinator) Snapshot() econet300.Params {
	snapshot := make(econet300.Params, len(c.data))
	for k, v := range c.data {
		snapshot[k] = v
	}
	return snapshot
}

func (c *DataCoordinator) notify() {
	// listeners may remove themselves while being notified
	listeners := make([]*listener, len(c.listeners))
	copy(listeners, c.listeners)
	for _, l := range listeners {
		l.fn()
	}
}

// ensure interface compliance
var _ port.DataCoordinator = (*DataCoordinator)(nil)
