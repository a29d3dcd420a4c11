package actor

import (
	"sync"
	"testing"
	"time"

	adactor "github.com/berfenger/econet2mqtt/internal/adapter/actor"
	"github.com/berfenger/econet2mqtt/internal/core/domain"
	"github.com/berfenger/econet2mqtt/internal/util"
	"github.com/berfenger/econet2mqtt/pkg/econet300"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type discoveryCounter struct {
	mu     sync.Mutex
	topics map[string]int
}

func (c *discoveryCounter) sink(topic, payload string, retain bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topics[topic]++
}

func (c *discoveryCounter) count(topic string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.topics[topic]
}

func TestMasterActor(t *testing.T) {

	as := actor.NewActorSystem()
	context := as.Root

	cfg := util.LoadTestConfig()
	logCfg := zap.NewDevelopmentConfig()
	logCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	logger := zap.Must(logCfg.Build())

	api := &econet300.TestReader{}
	published := &discoveryCounter{topics: map[string]int{}}

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewMasterOfPuppetsActor(cfg, api, func() *adactor.EconetActor {
			return adactor.NewEconetActor(api, 2*time.Second, logger)
		}, func(es *eventstream.EventStream) *adactor.MQTTActor {
			return adactor.NewTestMQTTActor(&cfg, es, published.sink, logger)
		}, logger)
	})
	pid, err := context.SpawnNamed(props, domain.ACTOR_ID_MASTER)
	if err != nil {
		t.Error(err)
		return
	}

	time.Sleep(2 * time.Second)

	res, err := context.RequestFuture(pid, domain.ActorHealthRequest{}, 10*time.Second).Result()
	if err != nil {
		t.Error(err)
	}
	healthResp, ok := res.(domain.ActorHealthResponse)
	assert.True(t, ok)
	assert.True(t, healthResp.Healthy, "healthy is true")

	res, err = context.RequestFuture(pid, domain.GetDataSnapshotRequest{}, 5*time.Second).Result()
	if err != nil {
		t.Error(err)
	}
	snapshot, ok := res.(domain.GetDataSnapshotResponse)
	assert.True(t, ok)
	assert.Equal(t, 55.3, snapshot.Data["tempCO"])

	sys := econet300.SampleSysParams()
	controller := domain.ControllerDevice(sys, api.Host())
	tempTopic := "homeassistant/sensor/" + controller.Id + "/temp_co/config"
	assert.Eventually(t, func() bool {
		return published.count(tempTopic) == 1
	}, 5*time.Second, 100*time.Millisecond, "discovery published")
	assert.Eventually(t, func() bool {
		return published.count("econet/sensor/temp_co/state") > 0
	}, 5*time.Second, 100*time.Millisecond, "state published")

	// Home Assistant birth message
	context.Send(pid, domain.HomeAssistantStatusEvent{Online: true})
	assert.Eventually(t, func() bool {
		return published.count(tempTopic) == 2
	}, 5*time.Second, 100*time.Millisecond, "discovery republished")

	context.Send(pid, domain.HomeAssistantStatusEvent{Online: false})
	context.Send(pid, domain.RepublishDiscoveryRequest{})
	assert.Eventually(t, func() bool {
		return published.count(tempTopic) == 3
	}, 5*time.Second, 100*time.Millisecond, "scheduled republish")

	context.Stop(pid)

	as.Shutdown()
}
