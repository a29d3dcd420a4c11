package actor

import (
	"fmt"
	"time"

	"github.com/berfenger/econet2mqtt/internal/config"
	"github.com/berfenger/econet2mqtt/internal/core/coordinator"
	"github.com/berfenger/econet2mqtt/internal/core/domain"
	"github.com/berfenger/econet2mqtt/internal/core/sensor"
	. "github.com/berfenger/econet2mqtt/internal/util/actorutil"
	"github.com/berfenger/econet2mqtt/pkg/econet300"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/asynkron/protoactor-go/scheduler"
	"go.uber.org/zap"
)

// CoordinatorActor owns the data coordinator and every sensor entity.
// It sets the sensor platform up once the controller answers and then
// refreshes the snapshot every poll interval.
type CoordinatorActor struct {
	behavior  actor.Behavior
	stash     *Stash
	scheduler *scheduler.TimerScheduler

	config      *config.Config
	econetActor *actor.PID
	api         econet300.Reader
	eventStream *eventstream.EventStream

	coordinator      *coordinator.DataCoordinator
	sysParams        *econet300.SysParams
	controllerDevice domain.Device
	entities         []sensor.Entity
	removers         []func()

	logger *zap.Logger
}

type pollTick struct {
}

type sysParamsRetryTick struct {
}

type firstRefreshRetryTick struct {
}

// eventStreamWriter turns entity state writes into sensor update events.
type eventStreamWriter struct {
	eventStream *eventstream.EventStream
}

func (w eventStreamWriter) WriteState(entity sensor.Entity) {
	w.eventStream.Publish(domain.StateUpdateEvent(entity.ObjectId(), entity.NativeValue(),
		entity.Description().SuggestedDisplayPrecision))
}

func NewCoordinatorActor(config *config.Config, econetActor *actor.PID, api econet300.Reader, eventStream *eventstream.EventStream, logger *zap.Logger) *CoordinatorActor {
	act := &CoordinatorActor{
		config:      config,
		econetActor: econetActor,
		api:         api,
		eventStream: eventStream,
		behavior:    actor.NewBehavior(),
		stash:       &Stash{},
		logger:      ActorLogger(domain.ACTOR_ID_COORDINATOR, logger),
	}
	act.coordinator = coordinator.NewDataCoordinator(act.logger)
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *CoordinatorActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *CoordinatorActor) pollInterval() time.Duration {
	return time.Duration(state.config.MonitorConfig.PollIntervalMillis) * time.Millisecond
}

func (state *CoordinatorActor) requestTimeout() time.Duration {
	return time.Duration(state.config.Econet.TimeoutMillis)*time.Millisecond + 2*time.Second
}

func (state *CoordinatorActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("coordinator@starting started")
		state.scheduler = scheduler.NewTimerScheduler(ctx)
		state.requestSysParams(ctx)
		state.behavior.Become(state.WaitingSysParamsReceive)
	case domain.GetEntitiesRequest, domain.GetDataSnapshotRequest:
		state.respondNotReady(ctx, msg.(domain.ActorRequest))
	case *actor.Restarting:
		state.unregisterEntities()
	default:
		state.logger.Debug("coordinator@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *CoordinatorActor) WaitingSysParamsReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.GetSysParamsResponse:
		if msg.HasResponseError() || msg.SysParams == nil {
			state.logger.Warn("coordinator@waitingSysParams controller not ready, retrying", zap.Error(msg.GetResponseError()))
			state.eventStream.Publish(domain.ControllerConnectivityUpdateEvent(false))
			state.scheduler.SendOnce(state.pollInterval(), ctx.Self(), sysParamsRetryTick{})
			return
		}
		state.logger.Info("coordinator@waitingSysParams controller found",
			zap.String("uid", msg.SysParams.UID), zap.String("model", msg.SysParams.ControllerID))
		state.sysParams = msg.SysParams
		state.controllerDevice = domain.ControllerDevice(msg.SysParams, state.api.Host())
		state.requestRegParams(ctx)
		state.behavior.Become(state.WaitingFirstRefreshReceive)
	case sysParamsRetryTick:
		state.requestSysParams(ctx)
	case domain.ActorHealthRequest:
		ctx.Respond(state.healthResponse(false, "waiting_controller"))
	case domain.GetEntitiesRequest, domain.GetDataSnapshotRequest:
		state.respondNotReady(ctx, msg.(domain.ActorRequest))
	case *actor.Restarting:
		state.unregisterEntities()
	default:
		state.logger.Debug("coordinator@waitingSysParams: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *CoordinatorActor) WaitingFirstRefreshReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.GetRegParamsResponse:
		if msg.HasResponseError() {
			state.logger.Warn("coordinator@firstRefresh refresh failed, retrying", zap.Error(msg.GetResponseError()))
			state.coordinator.SetUpdateError(msg.GetResponseError())
			state.eventStream.Publish(domain.ControllerConnectivityUpdateEvent(false))
			state.scheduler.SendOnce(state.pollInterval(), ctx.Self(), firstRefreshRetryTick{})
			return
		}
		state.coordinator.Update(econet300.MergeParams(msg.Params, state.sysParams))

		err := sensor.SetupEntry(sensor.EntryData{
			Coordinator:     state.coordinator,
			API:             state.api,
			AvailableMixers: int(state.config.Econet.AvailableMixers),
			Logger:          state.logger,
		}, state.registerEntities)
		if err != nil {
			panic(err)
		}
		state.logger.Info("coordinator@firstRefresh sensor platform ready", zap.Int("entities", len(state.entities)))
		state.eventStream.Publish(domain.ControllerConnectivityUpdateEvent(true))

		state.scheduler.SendOnce(state.pollInterval(), ctx.Self(), pollTick{})
		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case firstRefreshRetryTick:
		state.requestRegParams(ctx)
	case domain.ActorHealthRequest:
		ctx.Respond(state.healthResponse(false, "first_refresh"))
	case domain.GetEntitiesRequest, domain.GetDataSnapshotRequest:
		state.respondNotReady(ctx, msg.(domain.ActorRequest))
	case *actor.Restarting:
		state.unregisterEntities()
	default:
		state.logger.Debug("coordinator@firstRefresh: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *CoordinatorActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("coordinator@default: ActorHealthRequest")
		ctx.Respond(state.healthResponse(true, "polling"))
	case pollTick:
		state.logger.Debug("coordinator@default tick")
		state.requestRegParams(ctx)
		// schedule next tick
		state.scheduler.SendOnce(state.pollInterval(), ctx.Self(), pollTick{})
	case domain.GetRegParamsResponse:
		if msg.HasResponseError() {
			state.logger.Warn("coordinator@default refresh failed", zap.Error(msg.GetResponseError()))
			state.coordinator.SetUpdateError(msg.GetResponseError())
		} else {
			state.coordinator.Update(econet300.MergeParams(msg.Params, state.sysParams))
		}
		state.eventStream.Publish(domain.ControllerConnectivityUpdateEvent(state.coordinator.LastUpdateSuccess()))
	case domain.GetEntitiesRequest:
		state.logger.Debug("coordinator@default: GetEntitiesRequest")
		ForRequest(msg).Respond(ctx, state.entitiesResponse())
	case domain.GetDataSnapshotRequest:
		state.logger.Debug("coordinator@default: GetDataSnapshotRequest")
		ForRequest(msg).Respond(ctx, domain.GetDataSnapshotResponse{
			Data:              state.coordinator.Snapshot(),
			LastUpdateSuccess: state.coordinator.LastUpdateSuccess(),
		})
	case *actor.Restarting:
		state.unregisterEntities()
	case *actor.Stopping:
		state.unregisterEntities()
	default:
		state.logger.Debug("coordinator@default default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *CoordinatorActor) requestSysParams(ctx actor.Context) {
	PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.econetActor, domain.GetSysParamsRequest{}, state.requestTimeout()), func(err error) any {
		return domain.GetSysParamsResponse{
			ActorResponseMixIn: domain.ActorResponseMixIn{
				ResponseError: err,
			},
		}
	})
}

func (state *CoordinatorActor) requestRegParams(ctx actor.Context) {
	PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.econetActor, domain.GetRegParamsRequest{}, state.requestTimeout()), func(err error) any {
		return domain.GetRegParamsResponse{
			ActorResponseMixIn: domain.ActorResponseMixIn{
				ResponseError: err,
			},
		}
	})
}

// registerEntities is the host side of the platform setup: every entity
// gets a state writer and a coordinator listener.
func (state *CoordinatorActor) registerEntities(entities []sensor.Entity) error {
	writer := eventStreamWriter{eventStream: state.eventStream}
	for _, entity := range entities {
		state.entities = append(state.entities, entity)
		state.removers = append(state.removers, entity.AddedToHost(writer))
	}
	return nil
}

func (state *CoordinatorActor) unregisterEntities() {
	for _, remove := range state.removers {
		remove()
	}
	state.removers = nil
	state.entities = nil
}

func (state *CoordinatorActor) entitiesResponse() domain.GetEntitiesResponse {
	sensors := domain.ControllerSensors(state.controllerDevice)
	for _, entity := range state.entities {
		sensors = append(sensors, sensor.ToGenericSensor(entity, state.controllerDevice))
	}
	return domain.GetEntitiesResponse{
		Controller: state.controllerDevice,
		Sensors:    sensors,
	}
}

// respondNotReady answers entity and snapshot requests right away while
// the controller has not been refreshed yet. Callers retry on their own.
func (state *CoordinatorActor) respondNotReady(ctx actor.Context, req domain.ActorRequest) {
	state.logger.Debug("coordinator: not ready", zap.String("type", fmt.Sprintf("%T", req)))
	notReady := domain.ActorResponseMixIn{ResponseError: domain.ErrNotReady}
	switch req.(type) {
	case domain.GetEntitiesRequest:
		ForRequest(req).Respond(ctx, domain.GetEntitiesResponse{ActorResponseMixIn: notReady})
	case domain.GetDataSnapshotRequest:
		ForRequest(req).Respond(ctx, domain.GetDataSnapshotResponse{ActorResponseMixIn: notReady})
	}
}

func (state *CoordinatorActor) healthResponse(healthy bool, status string) domain.ActorHealthResponse {
	return domain.ActorHealthResponse{
		Id:      domain.ACTOR_ID_COORDINATOR,
		Healthy: healthy,
		State:   status,
	}
}
