package actor

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/berfenger/econet2mqtt/internal/core/domain"
	"github.com/berfenger/econet2mqtt/internal/util"
	"github.com/berfenger/econet2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type recordedMessages struct {
	mu       sync.Mutex
	payloads map[string]string
	retained map[string]bool
}

func newRecordedMessages() *recordedMessages {
	return &recordedMessages{
		payloads: map[string]string{},
		retained: map[string]bool{},
	}
}

func (r *recordedMessages) sink(topic, payload string, retain bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads[topic] = payload
	r.retained[topic] = retain
}

func (r *recordedMessages) get(topic string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	payload, ok := r.payloads[topic]
	return payload, ok
}

func TestMQTTActor(t *testing.T) {

	assert := assert.New(t)

	cfg := util.LoadTestConfig()

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)

	context := as.Root

	es := &eventstream.EventStream{}
	recorded := newRecordedMessages()

	props := actor.PropsFromProducer(func() actor.Actor { return NewTestMQTTActor(&cfg, es, recorded.sink, logger) })
	pid := context.Spawn(props)

	result, err := context.RequestFuture(pid, domain.ActorHealthRequest{}, 2*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp, ok := result.(domain.ActorHealthResponse)
	assert.True(ok)
	assert.True(resp.Healthy)

	precision := 1
	es.Publish(domain.StateUpdateEvent("temp_co", 55.34, &precision))
	es.Publish(domain.StateUpdateEvent("mode", "work", nil))
	es.Publish(domain.StateUpdateEvent("temp_upper_buffer", nil, nil))
	es.Publish(domain.ControllerConnectivityUpdateEvent(true))
	es.Publish("not a sensor event")

	assert.Eventually(func() bool {
		_, ok := recorded.get("econet/binary_sensor/controller_connectivity/state")
		return ok
	}, 2*time.Second, 50*time.Millisecond)

	payload, _ := recorded.get("econet/sensor/temp_co/state")
	assert.Equal("55.3", payload)
	payload, _ = recorded.get("econet/sensor/mode/state")
	assert.Equal("work", payload)
	payload, _ = recorded.get("econet/sensor/temp_upper_buffer/state")
	assert.Equal("None", payload)
	payload, _ = recorded.get("econet/binary_sensor/controller_connectivity/state")
	assert.Equal("on", payload)

	context.Stop(pid)

	time.Sleep(200 * time.Millisecond)

	as.Shutdown()
}

func TestMQTTActorDiscovery(t *testing.T) {

	assert := assert.New(t)

	cfg := util.LoadTestConfig()

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)

	context := as.Root

	recorded := newRecordedMessages()

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewTestMQTTActor(&cfg, &eventstream.EventStream{}, recorded.sink, logger)
	})
	pid := context.Spawn(props)

	bridge := domain.BridgeDevice(cfg.MQTT.BaseTopic)
	result, err := context.RequestFuture(pid, domain.PublishDiscoveryRequest{
		Sensors: domain.BridgeSensors(bridge),
	}, 2*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	assert.False(result.(domain.PublishDiscoveryResponse).HasResponseError())

	topic := "homeassistant/binary_sensor/" + bridge.Id + "/bridge/config"
	payload, ok := recorded.get(topic)
	if assert.True(ok, "discovery document published") {
		var doc map[string]any
		assert.NoError(json.Unmarshal([]byte(payload), &doc))
		assert.Equal("econet/bridge/state", doc["state_topic"])
		assert.Equal("online", doc["payload_on"])
	}
	recorded.mu.Lock()
	assert.True(recorded.retained[topic], "discovery is retained")
	recorded.mu.Unlock()

	context.Stop(pid)

	as.Shutdown()
}

func TestFormatFloat(t *testing.T) {

	assert := assert.New(t)

	assert.Equal("55.3", formatFloat(55.34, 1))
	assert.Equal("60", formatFloat(60, 0))
	assert.Equal("12.5", formatFloat(12.5, -1))
	assert.Equal("-58", formatFloat(-58, -1))
}
