package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/berfenger/econet2mqtt/internal/core/domain"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type probe struct {
	received chan any
}

func (p *probe) Receive(ctx actor.Context) {
	if msg, ok := ctx.Message().(domain.RepublishDiscoveryRequest); ok {
		p.received <- msg
	}
}

func spawnProbe(as *actor.ActorSystem) (*actor.PID, chan any) {
	received := make(chan any, 16)
	pid := as.Root.Spawn(actor.PropsFromProducer(func() actor.Actor { return &probe{received: received} }))
	return pid, received
}

func TestRepublishDiscoveryJob(t *testing.T) {

	assert := assert.New(t)

	as := actor.NewActorSystem()
	defer as.Shutdown()
	pid, received := spawnProbe(as)

	job := NewRepublishDiscoveryJob(as.Root, pid, zap.NewNop())
	assert.Contains(job.Description(), REPUBLISH_DISCOVERY_JOB)
	assert.NoError(job.Execute(context.Background()))

	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Error("republish request not delivered")
	}
}

func TestStartScheduler(t *testing.T) {

	assert := assert.New(t)

	as := actor.NewActorSystem()
	defer as.Shutdown()
	pid, received := spawnProbe(as)

	job := NewRepublishDiscoveryJob(as.Root, pid, zap.NewNop())

	sched, err := StartScheduler(context.Background(), 0, job)
	assert.NoError(err)
	assert.Nil(sched, "disabled")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sched, err = StartScheduler(ctx, 200*time.Millisecond, job)
	if !assert.NoError(err) {
		return
	}
	defer sched.Stop()

	for i := 0; i < 2; i++ {
		select {
		case <-received:
		case <-time.After(3 * time.Second):
			t.Error("job did not run")
			return
		}
	}
}
