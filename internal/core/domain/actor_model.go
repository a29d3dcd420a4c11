package domain

import "github.com/berfenger/econet2mqtt/pkg/econet300"

const (
	ACTOR_ID_MASTER       = "master"
	ACTOR_ID_ECONET       = "econet"
	ACTOR_ID_COORDINATOR  = "coordinator"
	ACTOR_ID_MQTT         = "mqtt"
	ACTOR_ID_HA_DISCOVERY = "hadiscovery"
)

type GetSysParamsRequest struct {
	ActorRequestMixIn
}

type GetSysParamsResponse struct {
	ActorResponseMixIn
	SysParams *econet300.SysParams
}

type GetRegParamsRequest struct {
	ActorRequestMixIn
}

type GetRegParamsResponse struct {
	ActorResponseMixIn
	Params econet300.Params
}

type GetEntitiesRequest struct {
	ActorRequestMixIn
}

type GetEntitiesResponse struct {
	ActorResponseMixIn
	Controller Device
	Sensors    []GenericSensor
}

type GetDataSnapshotRequest struct {
	ActorRequestMixIn
}

type GetDataSnapshotResponse struct {
	ActorResponseMixIn
	Data              econet300.Params
	LastUpdateSuccess bool
}

type PublishMessageRequest struct {
	ActorRequestMixIn
	Topic   string
	Payload string
	Retain  bool
}

type PublishMessageResponse struct {
	ActorResponseMixIn
}

type PublishSensorUpdateRequest struct {
	ActorRequestMixIn
	Retain bool
	Event  SensorUpdateEvent
}

type PublishSensorUpdateResponse struct {
	ActorResponseMixIn
}

type PublishDiscoveryRequest struct {
	ActorRequestMixIn
	Sensors []GenericSensor
}

type PublishDiscoveryResponse struct {
	ActorResponseMixIn
}

// RepublishDiscoveryRequest asks the discovery actor to send every
// discovery document again.
type RepublishDiscoveryRequest struct {
	ActorRequestMixIn
}

// HomeAssistantStatusEvent is received on <discovery prefix>/status.
type HomeAssistantStatusEvent struct {
	Online bool
}

type ActorHealthRequest struct {
	ActorRequestMixIn
}

type ActorHealthResponse struct {
	ActorResponseMixIn
	Id      string
	Healthy bool
	State   string
}
