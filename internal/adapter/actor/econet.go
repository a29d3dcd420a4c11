package actor

import (
	"context"
	"fmt"
	"time"

	"github.com/berfenger/econet2mqtt/internal/core/domain"
	"github.com/berfenger/econet2mqtt/internal/util/actorutil"
	"github.com/berfenger/econet2mqtt/pkg/econet300"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

// EconetActor serialises requests to the controller. Only one HTTP
// request is in flight at a time; requests arriving meanwhile are stashed.
type EconetActor struct {
	behavior actor.Behavior
	stash    *actorutil.Stash
	api      econet300.Reader
	timeout  time.Duration
	logger   *zap.Logger
}

type backgroundTaskResult struct {
	message any
	replyTo *actor.PID
}

func NewEconetActor(api econet300.Reader, timeout time.Duration, logger *zap.Logger) *EconetActor {
	act := &EconetActor{
		api:      api,
		timeout:  timeout,
		behavior: actor.NewBehavior(),
		stash:    &actorutil.Stash{},
		logger:   actorutil.ActorLogger(domain.ACTOR_ID_ECONET, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *EconetActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *EconetActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("econet@starting started", zap.String("host", state.api.Host()))
		if err := state.api.Open(); err != nil {
			panic(err)
		}
		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case *actor.Restarting:
		state.api.Close()
	default:
		state.logger.Debug("econet@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *EconetActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("econet@default: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_ECONET,
			Healthy: true,
			State:   "idle",
		})
	case domain.GetSysParamsRequest:
		state.logger.Debug("econet@default: GetSysParamsRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		actorutil.MapBackgroundTask(actorutil.NewBackgroundTask(ctx, state.getSysParams),
			mapTaskResult[domain.GetSysParamsResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.GetSysParamsResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				},
				replyTo: sender,
			}
		}).WithTimeout(state.timeout + time.Second).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingEconet)
	case domain.GetRegParamsRequest:
		state.logger.Debug("econet@default: GetRegParamsRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		actorutil.MapBackgroundTask(actorutil.NewBackgroundTask(ctx, state.getRegParams),
			mapTaskResult[domain.GetRegParamsResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.GetRegParamsResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				},
				replyTo: sender,
			}
		}).WithTimeout(state.timeout + time.Second).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingEconet)
	case *actor.Stopping:
		state.api.Close()
	default:
		state.logger.Debug("econet@default default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *EconetActor) WaitingEconet(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case backgroundTaskResult:
		state.logger.Debug("econet@waiting backgroundTaskResult", zap.String("type", fmt.Sprintf("%T", msg.message)))
		if msg.replyTo != nil {
			ctx.Send(msg.replyTo, msg.message)
		}
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case domain.ActorHealthRequest:
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_ECONET,
			Healthy: true,
			State:   "busy",
		})
	case *actor.Stopping:
		state.api.Close()
	default:
		state.logger.Debug("econet@waiting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *EconetActor) getSysParams() (*domain.GetSysParamsResponse, error) {
	ctx, cancel := context.WithTimeout(context.Background(), state.timeout)
	defer cancel()
	params, err := state.api.GetSysParams(ctx)
	if err != nil {
		state.logger.Warn("econet: sysParams request failed", zap.Error(err))
		return nil, err
	}
	return &domain.GetSysParamsResponse{
		SysParams: params,
	}, nil
}

func (state *EconetActor) getRegParams() (*domain.GetRegParamsResponse, error) {
	ctx, cancel := context.WithTimeout(context.Background(), state.timeout)
	defer cancel()
	params, err := state.api.GetRegParams(ctx)
	if err != nil {
		state.logger.Warn("econet: regParams request failed", zap.Error(err))
		return nil, err
	}
	return &domain.GetRegParamsResponse{
		Params: params,
	}, nil
}

func mapTaskResult[T any](sender *actor.PID) func(t *T) *backgroundTaskResult {
	return func(t *T) *backgroundTaskResult {
		return &backgroundTaskResult{
			message: *t,
			replyTo: sender,
		}
	}
}
