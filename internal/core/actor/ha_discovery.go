package actor

import (
	"errors"
	"fmt"
	"time"

	"github.com/berfenger/econet2mqtt/internal/config"
	"github.com/berfenger/econet2mqtt/internal/core/domain"
	"github.com/berfenger/econet2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/scheduler"
	"go.uber.org/zap"
)

const (
	entitiesRequestTimeout = 10 * time.Second
	entitiesRetryInterval  = 5 * time.Second
)

type HADiscoveryActor struct {
	config             *config.Config
	behavior           actor.Behavior
	stash              *actorutil.Stash
	scheduler          *scheduler.TimerScheduler
	econetActor        *actor.PID
	mqttActor          *actor.PID
	coordinatorActor   *actor.PID
	econetActorHealthy bool
	mqttActorHealthy   bool
	healthyRecv        int
	published          int

	logger *zap.Logger
}

type entitiesRetryTick struct {
}

func NewHADiscoveryActor(config *config.Config, econetActor, mqttActor, coordinatorActor *actor.PID, logger *zap.Logger) *HADiscoveryActor {
	act := &HADiscoveryActor{
		config:           config,
		econetActor:      econetActor,
		mqttActor:        mqttActor,
		coordinatorActor: coordinatorActor,
		behavior:         actor.NewBehavior(),
		stash:            &actorutil.Stash{},
		logger:           actorutil.ActorLogger(domain.ACTOR_ID_HA_DISCOVERY, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *HADiscoveryActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *HADiscoveryActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("hadiscovery@starting started")
		state.scheduler = scheduler.NewTimerScheduler(ctx)

		// Check econet and MQTT actor healthy
		state.healthyRecv = 0
		state.econetActorHealthy = false
		state.mqttActorHealthy = false
		actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.econetActor, domain.ActorHealthRequest{}, 2*time.Second), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_ECONET,
				Healthy: false,
			}
		})
		actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.mqttActor, domain.ActorHealthRequest{}, 2*time.Second), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_MQTT,
				Healthy: false,
			}
		})
		state.behavior.Become(state.WaitingHealthyReceive)
	case *actor.Restarting:
	default:
		state.logger.Debug("hadiscovery@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *HADiscoveryActor) WaitingHealthyReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthResponse:
		state.logger.Debug("hadiscovery@healthcheck ActorHealthResponse", zap.String("sender", msg.Id), zap.Bool("healthy", msg.Healthy))
		state.healthyRecv++
		if msg.Healthy {
			switch msg.Id {
			case domain.ACTOR_ID_ECONET:
				state.econetActorHealthy = true
			case domain.ACTOR_ID_MQTT:
				state.mqttActorHealthy = true
			}
		}
		if state.healthyRecv == 2 {
			if !state.econetActorHealthy || !state.mqttActorHealthy {
				panic(errors.New("MQTT actor or econet actor are not healthy"))
			}
			state.requestEntities(ctx)
			state.behavior.Become(state.WaitingEntitiesReceive)
		}
	case domain.RepublishDiscoveryRequest:
		state.logger.Debug("hadiscovery@healthcheck discovery pending, republish ignored")
	default:
		state.logger.Debug("hadiscovery@healthcheck: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *HADiscoveryActor) WaitingEntitiesReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.GetEntitiesResponse:
		if msg.HasResponseError() {
			// ErrNotReady until the coordinator has refreshed the controller once
			state.logger.Warn("hadiscovery@entities controller entities not ready, retrying", zap.Error(msg.GetResponseError()))
			state.scheduler.SendOnce(entitiesRetryInterval, ctx.Self(), entitiesRetryTick{})
			return
		}
		state.logger.Debug("hadiscovery@entities GetEntitiesResponse", zap.Int("sensors", len(msg.Sensors)))

		ctx.Send(state.mqttActor, domain.PublishDiscoveryRequest{
			Sensors: state.discoverySensors(msg),
		})
		state.published++
		state.behavior.Become(state.DoneReceive)
		state.stash.UnstashAll(ctx)
	case entitiesRetryTick:
		state.requestEntities(ctx)
	case domain.RepublishDiscoveryRequest:
		state.logger.Debug("hadiscovery@entities discovery pending, republish ignored")
	default:
		state.logger.Debug("hadiscovery@entities: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *HADiscoveryActor) DoneReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.RepublishDiscoveryRequest:
		state.logger.Info("hadiscovery@done republishing discovery")
		state.requestEntities(ctx)
		state.behavior.Become(state.WaitingEntitiesReceive)
	case domain.ActorHealthRequest:
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_HA_DISCOVERY,
			Healthy: true,
			State:   fmt.Sprintf("published_%d", state.published),
		})
	default:
		state.logger.Debug("hadiscovery@done: default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *HADiscoveryActor) requestEntities(ctx actor.Context) {
	actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.coordinatorActor, domain.GetEntitiesRequest{}, entitiesRequestTimeout), func(err error) any {
		return domain.GetEntitiesResponse{
			ActorResponseMixIn: domain.ActorResponseMixIn{
				ResponseError: err,
			},
		}
	})
}

// discoverySensors lists the bridge sensors followed by the controller
// entities. Only the first sensor of each device carries the full device
// info.
func (state *HADiscoveryActor) discoverySensors(msg domain.GetEntitiesResponse) []domain.GenericSensor {
	bridgeDevice := domain.BridgeDevice(state.config.MQTT.BaseTopic)
	sensors := domain.BridgeSensors(bridgeDevice)

	seen := map[string]bool{bridgeDevice.Id: true}
	for _, s := range msg.Sensors {
		if s.Device.Id == msg.Controller.Id && s.Device.ViaDevice == "" {
			s.Device.ViaDevice = bridgeDevice.Id
		}
		if seen[s.Device.Id] {
			s.Device = domain.IdDevice(s.Device)
		}
		seen[s.Device.Id] = true
		sensors = append(sensors, s)
	}
	return sensors
}
