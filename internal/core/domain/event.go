package domain

import "fmt"

const (
	PAYLOAD_NONE = "None"
	PAYLOAD_ON   = "on"
	PAYLOAD_OFF  = "off"
)

type SensorUpdateEventMixIn struct {
	Id string
}

type SensorUpdateEvent interface {
	SensorUpdateEvent() string
	SensorId() string
}

func (e SensorUpdateEventMixIn) SensorUpdateEvent() string {
	return fmt.Sprintf("%T", e)
}

func (e SensorUpdateEventMixIn) SensorId() string {
	return e.Id
}

// FloatSensorUpdateEvent is rendered with Decimals digits, or with the
// shortest exact representation when Decimals is negative.
type FloatSensorUpdateEvent struct {
	SensorUpdateEventMixIn
	Value    float64
	Decimals int
}

type BinarySensorUpdateEvent struct {
	SensorUpdateEventMixIn
	Value bool
}

type TextSensorUpdateEvent struct {
	SensorUpdateEventMixIn
	Value string
}

type BridgeStateUpdateEvent struct {
	SensorUpdateEventMixIn
	Value bool
}

// StateUpdateEvent converts an entity's native value into the event the
// MQTT actor knows how to publish.
func StateUpdateEvent(id string, value any, precision *int) SensorUpdateEvent {
	mixIn := SensorUpdateEventMixIn{Id: id}
	decimals := -1
	if precision != nil {
		decimals = *precision
	}
	switch v := value.(type) {
	case nil:
		return TextSensorUpdateEvent{SensorUpdateEventMixIn: mixIn, Value: PAYLOAD_NONE}
	case float64:
		return FloatSensorUpdateEvent{SensorUpdateEventMixIn: mixIn, Value: v, Decimals: decimals}
	case float32:
		return FloatSensorUpdateEvent{SensorUpdateEventMixIn: mixIn, Value: float64(v), Decimals: decimals}
	case int:
		return FloatSensorUpdateEvent{SensorUpdateEventMixIn: mixIn, Value: float64(v), Decimals: decimals}
	case int64:
		return FloatSensorUpdateEvent{SensorUpdateEventMixIn: mixIn, Value: float64(v), Decimals: decimals}
	case bool:
		payload := PAYLOAD_OFF
		if v {
			payload = PAYLOAD_ON
		}
		return TextSensorUpdateEvent{SensorUpdateEventMixIn: mixIn, Value: payload}
	case string:
		return TextSensorUpdateEvent{SensorUpdateEventMixIn: mixIn, Value: v}
	default:
		return TextSensorUpdateEvent{SensorUpdateEventMixIn: mixIn, Value: fmt.Sprintf("%v", v)}
	}
}
