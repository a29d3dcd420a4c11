package coordinator

import (
	"errors"
	"testing"

	"github.com/berfenger/econet2mqtt/pkg/econet300"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestUpdateNotifiesListeners(t *testing.T) {

	assert := assert.New(t)

	c := NewDataCoordinator(zap.NewNop())
	assert.False(c.LastUpdateSuccess(), "no data yet")
	assert.False(c.HasData("tempCO"))

	var calls []string
	c.AddListener(func() { calls = append(calls, "a") })
	removeB := c.AddListener(func() { calls = append(calls, "b") })

	c.Update(econet300.Params{"tempCO": 55.3})
	assert.True(c.LastUpdateSuccess())
	assert.True(c.HasData("tempCO"))
	assert.Equal([]string{"a", "b"}, calls, "registration order")

	removeB()
	c.Update(econet300.Params{"tempCO": 56.0})
	assert.Equal([]string{"a", "b", "a"}, calls, "removed listener not called")
	assert.Equal(56.0, c.Data()["tempCO"])
}

func TestSetUpdateErrorKeepsSnapshot(t *testing.T) {

	assert := assert.New(t)

	c := NewDataCoordinator(zap.NewNop())
	c.Update(econet300.Params{"tempCO": 55.3})

	notified := 0
	c.AddListener(func() { notified++ })

	err := errors.New("timeout")
	c.SetUpdateError(err)
	assert.False(c.LastUpdateSuccess())
	assert.ErrorIs(c.LastError(), err)
	assert.Equal(55.3, c.Data()["tempCO"], "stale data kept")
	assert.Equal(1, notified)

	c.Update(nil)
	assert.True(c.LastUpdateSuccess())
	assert.NoError(c.LastError())
	assert.NotNil(c.Data())
	assert.False(c.HasData("tempCO"))
}

func TestListenerRemovesItself(t *testing.T) {

	c := NewDataCoordinator(zap.NewNop())

	calls := 0
	var remove func()
	remove = c.AddListener(func() {
		calls++
		remove()
	})

	c.Update(econet300.Params{})
	c.Update(econet300.Params{})
	assert.Equal(t, 1, calls)
}

func TestSnapshotIsCopy(t *testing.T) {

	c := NewDataCoordinator(zap.NewNop())
	c.Update(econet300.Params{"mode": 2.0})

	snapshot := c.Snapshot()
	snapshot["mode"] = 5.0
	assert.Equal(t, 2.0, c.Data()["mode"])
}
