package actor

import (
	"errors"
	"sync"
	"testing"
	"time"

	adactor "github.com/berfenger/econet2mqtt/internal/adapter/actor"
	"github.com/berfenger/econet2mqtt/internal/core/domain"
	"github.com/berfenger/econet2mqtt/internal/util"
	"github.com/berfenger/econet2mqtt/internal/util/actorutil"
	"github.com/berfenger/econet2mqtt/pkg/econet300"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type recordedEvents struct {
	mu     sync.Mutex
	events map[string]domain.SensorUpdateEvent
}

func recordEvents(es *eventstream.EventStream) *recordedEvents {
	r := &recordedEvents{events: map[string]domain.SensorUpdateEvent{}}
	es.Subscribe(func(evt any) {
		if ev, ok := evt.(domain.SensorUpdateEvent); ok {
			r.mu.Lock()
			r.events[ev.SensorId()] = ev
			r.mu.Unlock()
		}
	})
	return r
}

func (r *recordedEvents) get(id string) (domain.SensorUpdateEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev, ok := r.events[id]
	return ev, ok
}

func TestCoordinatorActor(t *testing.T) {

	assert := assert.New(t)

	cfg := util.LoadTestConfig()
	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	api := &econet300.TestReader{}
	es := &eventstream.EventStream{}
	events := recordEvents(es)

	econetPID := context.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return adactor.NewEconetActor(api, 2*time.Second, logger)
	}))
	pid := context.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return NewCoordinatorActor(&cfg, econetPID, api, es, logger)
	}))

	// stashed until the platform is set up
	result, err := context.RequestFuture(pid, domain.GetEntitiesRequest{}, 5*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	entities := result.(domain.GetEntitiesResponse)
	assert.Equal(domain.CONTROLLER_NAME, entities.Controller.Name)
	assert.Equal("ecoMAX 860P3-O", entities.Controller.Model)
	assert.Equal("http://econet.test", entities.Controller.ConfigurationURL)
	// connectivity + 27 controller sensors + 4 mixer sensors
	assert.Len(entities.Sensors, 32)
	assert.Equal(domain.SENSOR_ID_CONTROLLER_CONNECTIVITY, entities.Sensors[0].Id)

	var mixerDevices int
	for _, s := range entities.Sensors {
		if s.Device.ViaDevice == entities.Controller.Id {
			mixerDevices++
		}
	}
	assert.Equal(4, mixerDevices)

	ev, ok := events.get("temp_co")
	if assert.True(ok, "initial state written") {
		assert.Equal(55.3, ev.(domain.FloatSensorUpdateEvent).Value)
		assert.Equal(1, ev.(domain.FloatSensorUpdateEvent).Decimals)
	}
	ev, ok = events.get("mode")
	if assert.True(ok) {
		assert.Equal("work", ev.(domain.TextSensorUpdateEvent).Value)
	}
	ev, ok = events.get("lambda_level")
	if assert.True(ok) {
		assert.Equal(12.5, ev.(domain.FloatSensorUpdateEvent).Value)
	}
	ev, ok = events.get("module_b_soft_ver")
	if assert.True(ok) {
		assert.Equal(domain.PAYLOAD_NONE, ev.(domain.TextSensorUpdateEvent).Value)
	}
	assert.Eventually(func() bool {
		ev, ok := events.get(domain.SENSOR_ID_CONTROLLER_CONNECTIVITY)
		return ok && ev.(domain.BinarySensorUpdateEvent).Value
	}, 2*time.Second, 50*time.Millisecond)

	result, err = context.RequestFuture(pid, domain.GetDataSnapshotRequest{}, 2*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	snapshot := result.(domain.GetDataSnapshotResponse)
	assert.True(snapshot.LastUpdateSuccess)
	assert.Equal(55.3, snapshot.Data["tempCO"])
	assert.Equal("2L7SDPN6KQ38CIH2401K01", snapshot.Data[econet300.KEY_UID])

	result, err = context.RequestFuture(pid, domain.ActorHealthRequest{}, 2*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	assert.True(result.(domain.ActorHealthResponse).Healthy)

	context.Stop(pid)
	context.Stop(econetPID)

	as.Shutdown()
}

func TestCoordinatorActorControllerDown(t *testing.T) {

	assert := assert.New(t)

	cfg := util.LoadTestConfig()
	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	api := &econet300.TestReader{Err: errors.New("no route to host")}
	es := &eventstream.EventStream{}
	events := recordEvents(es)

	econetPID := context.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return adactor.NewEconetActor(api, 2*time.Second, logger)
	}))
	pid := context.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return NewCoordinatorActor(&cfg, econetPID, api, es, logger)
	}))

	assert.Eventually(func() bool {
		ev, ok := events.get(domain.SENSOR_ID_CONTROLLER_CONNECTIVITY)
		return ok && !ev.(domain.BinarySensorUpdateEvent).Value
	}, 3*time.Second, 50*time.Millisecond)

	result, err := context.RequestFuture(pid, domain.ActorHealthRequest{}, 2*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	health := result.(domain.ActorHealthResponse)
	assert.False(health.Healthy)
	assert.Equal("waiting_controller", health.State)

	_, ok := events.get("temp_co")
	assert.False(ok, "no entities without a controller")

	context.Stop(pid)
	context.Stop(econetPID)

	as.Shutdown()
}

func TestCoordinatorActorRejectsRequestsWhileControllerDown(t *testing.T) {

	assert := assert.New(t)

	cfg := util.LoadTestConfig()
	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	api := &econet300.TestReader{Err: errors.New("controller down")}
	es := &eventstream.EventStream{}

	econetPID := context.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return adactor.NewEconetActor(api, 2*time.Second, logger)
	}))
	coord := NewCoordinatorActor(&cfg, econetPID, api, es, logger)
	pid := context.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return coord
	}))

	// callers that gave up long ago must not pile up in the actor
	for i := 0; i < 200; i++ {
		context.RequestFuture(pid, domain.GetEntitiesRequest{}, time.Millisecond)
		context.RequestFuture(pid, domain.GetDataSnapshotRequest{}, time.Millisecond)
	}

	result, err := context.RequestFuture(pid, domain.GetEntitiesRequest{}, 2*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	entities := result.(domain.GetEntitiesResponse)
	assert.ErrorIs(entities.GetResponseError(), domain.ErrNotReady)
	assert.Empty(entities.Sensors)

	result, err = context.RequestFuture(pid, domain.GetDataSnapshotRequest{}, 2*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	assert.ErrorIs(result.(domain.GetDataSnapshotResponse).GetResponseError(), domain.ErrNotReady)

	result, err = context.RequestFuture(pid, domain.ActorHealthRequest{}, 2*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	assert.False(result.(domain.ActorHealthResponse).Healthy)
	assert.Equal(0, coord.stash.Len(), "nothing stashed while waiting for the controller")

	context.Stop(pid)
	context.Stop(econetPID)

	as.Shutdown()
}
