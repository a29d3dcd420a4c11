// Package domain holds the devices, sensors, events and actor messages
// shared by the bridge actors.
package domain

import (
	"errors"

	"github.com/asynkron/protoactor-go/actor"
)

// ErrNotReady answers requests that need controller data before the
// first successful refresh.
var ErrNotReady = errors.New("controller data not ready")

type ActorRef actor.PID

// ActorRequestMixIn lets a request name a reply target other than the sender.
type ActorRequestMixIn struct {
	ReplyToRef *ActorRef
}

type ActorRequest interface {
	ReplyTo() *ActorRef
}

func (r ActorRequestMixIn) ReplyTo() *ActorRef {
	return r.ReplyToRef
}

// ActorResponseMixIn carries the error of a failed request inside the reply.
type ActorResponseMixIn struct {
	ResponseError error
}

func (r ActorResponseMixIn) GetResponseError() error {
	return r.ResponseError
}

func (r ActorResponseMixIn) HasResponseError() bool {
	return r.ResponseError != nil
}

type ActorResponse interface {
	GetResponseError() error
	HasResponseError() bool
}
