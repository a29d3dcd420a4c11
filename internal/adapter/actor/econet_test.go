package actor

import (
	"errors"
	"testing"
	"time"

	"github.com/berfenger/econet2mqtt/internal/core/domain"
	"github.com/berfenger/econet2mqtt/internal/util/actorutil"
	"github.com/berfenger/econet2mqtt/pkg/econet300"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestGetSysParamsEconetActor(t *testing.T) {

	assert := assert.New(t)

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewEconetActor(&econet300.TestReader{}, 2*time.Second, logger)
	})
	pid := context.Spawn(props)

	result, err := context.RequestFuture(pid, domain.GetSysParamsRequest{}, 5*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp := result.(domain.GetSysParamsResponse)

	assert.False(resp.HasResponseError())
	assert.Equal("2L7SDPN6KQ38CIH2401K01", resp.SysParams.UID, "controller uid")
	assert.Equal("ecoMAX 860P3-O", resp.SysParams.ControllerID, "controller model")

	result, err = context.RequestFuture(pid, domain.GetRegParamsRequest{}, 5*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	regResp := result.(domain.GetRegParamsResponse)
	assert.Equal(55.3, regResp.Params["tempCO"])

	context.Stop(pid)

	as.Shutdown()
}

func TestGetRegParamsErrorEconetActor(t *testing.T) {

	assert := assert.New(t)

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	readErr := errors.New("connection refused")
	props := actor.PropsFromProducer(func() actor.Actor {
		return NewEconetActor(&econet300.TestReader{Err: readErr}, 2*time.Second, logger)
	})
	pid := context.Spawn(props)

	result, err := context.RequestFuture(pid, domain.GetRegParamsRequest{}, 5*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp := result.(domain.GetRegParamsResponse)
	assert.True(resp.HasResponseError())
	assert.Nil(resp.Params)

	// the actor keeps serving after a failed request
	result, err = context.RequestFuture(pid, domain.ActorHealthRequest{}, 2*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	health := result.(domain.ActorHealthResponse)
	assert.True(health.Healthy)
	assert.Equal(domain.ACTOR_ID_ECONET, health.Id)

	context.Stop(pid)

	as.Shutdown()
}
