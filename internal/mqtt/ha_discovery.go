package mqtt

import (
	"fmt"

	"github.com/berfenger/econet2mqtt/internal/core/domain"
)

type HADiscoveryConfig struct {
	Device                    HADiscoveryDevice         `json:"device"`
	StateTopic                string                    `json:"state_topic"`
	StateClass                string                    `json:"state_class,omitempty"`
	DeviceClass               string                    `json:"device_class,omitempty"`
	UnitOfMeasurement         string                    `json:"unit_of_measurement,omitempty"`
	Availability              []HADiscoveryAvailability `json:"availability,omitempty"`
	AvailabilityMode          string                    `json:"availability_mode,omitempty"`
	EntityCategory            string                    `json:"entity_category,omitempty"`
	Name                      string                    `json:"name"`
	UniqueId                  string                    `json:"unique_id"`
	ObjectId                  string                    `json:"object_id,omitempty"`
	Platform                  string                    `json:"platform"`
	EnabledByDefault          *bool                     `json:"enabled_by_default,omitempty"`
	PayloadOn                 string                    `json:"payload_on,omitempty"`
	PayloadOff                string                    `json:"payload_off,omitempty"`
	Icon                      string                    `json:"icon,omitempty"`
	SuggestedDisplayPrecision *int                      `json:"suggested_display_precision,omitempty"`
}

type HADiscoveryAvailability struct {
	Topic               string `json:"topic"`
	PayloadAvailable    string `json:"payload_available,omitempty"`
	PayloadNotAvailable string `json:"payload_not_available,omitempty"`
}

type HADiscoveryDevice struct {
	Id               []string `json:"identifiers"`
	Manufacturer     string   `json:"manufacturer,omitempty"`
	Version          string   `json:"sw_version,omitempty"`
	Model            string   `json:"model,omitempty"`
	Name             string   `json:"name,omitempty"`
	ViaDevice        string   `json:"via_device,omitempty"`
	ConfigurationURL string   `json:"configuration_url,omitempty"`
}

func (c *MQTTClient) HADiscoverySensorTopic(sensor domain.GenericSensor) string {
	return fmt.Sprintf("%s/%s/%s/%s/config", c.discoveryTopic(), sensor.SensorType, sensor.Device.Id, sensor.Id)
}

// GenericSensorToHADiscoveryMessage builds the discovery document of a
// sensor. Controller entities are available only while both the bridge
// and the controller are reachable.
func GenericSensorToHADiscoveryMessage(client *MQTTClient, sensor domain.GenericSensor) HADiscoveryConfig {
	var topic string
	switch {
	case sensor.Id == domain.SENSOR_ID_BRIDGE_STATE:
		topic = client.BridgeStateTopic()
	case sensor.SensorType == domain.SENSOR_TYPE_BINARY:
		topic = client.BinarySensorStateTopic(sensor.Id)
	default:
		topic = client.SensorStateTopic(sensor.Id)
	}
	disConfig := HADiscoveryConfig{
		Device:                    device(sensor.Device),
		StateTopic:                topic,
		StateClass:                sensor.StateClass,
		DeviceClass:               sensor.DeviceClass,
		UnitOfMeasurement:         sensor.UnitOfMeasurement,
		EntityCategory:            sensor.EntityCategory,
		Name:                      sensor.Name,
		UniqueId:                  sensor.UniqueId,
		Icon:                      sensor.Icon,
		EnabledByDefault:          sensor.EnabledByDefault,
		SuggestedDisplayPrecision: sensor.SuggestedDisplayPrecision,
		Platform:                  "mqtt",
	}

	bridgeAvailability := HADiscoveryAvailability{
		Topic:               client.BridgeStateTopic(),
		PayloadAvailable:    MQTT_PAYLOAD_ONLINE,
		PayloadNotAvailable: MQTT_PAYLOAD_OFFLINE,
	}
	switch sensor.Id {
	case domain.SENSOR_ID_BRIDGE_STATE:
		disConfig.PayloadOn = MQTT_PAYLOAD_ONLINE
		disConfig.PayloadOff = MQTT_PAYLOAD_OFFLINE
	case domain.SENSOR_ID_CONTROLLER_CONNECTIVITY:
		disConfig.Availability = []HADiscoveryAvailability{bridgeAvailability}
	default:
		disConfig.Availability = []HADiscoveryAvailability{
			bridgeAvailability,
			{
				Topic:               client.BinarySensorStateTopic(domain.SENSOR_ID_CONTROLLER_CONNECTIVITY),
				PayloadAvailable:    MQTT_PAYLOAD_ON,
				PayloadNotAvailable: MQTT_PAYLOAD_OFF,
			},
		}
		disConfig.AvailabilityMode = "all"
	}
	if sensor.SensorType == domain.SENSOR_TYPE_BINARY && sensor.Id != domain.SENSOR_ID_BRIDGE_STATE {
		disConfig.PayloadOn = MQTT_PAYLOAD_ON
		disConfig.PayloadOff = MQTT_PAYLOAD_OFF
	}
	return disConfig
}

func device(d domain.Device) HADiscoveryDevice {
	return HADiscoveryDevice{
		Id:               []string{d.Id},
		Manufacturer:     d.Manufacturer,
		Version:          d.Version,
		Model:            d.Model,
		Name:             d.Name,
		ViaDevice:        d.ViaDevice,
		ConfigurationURL: d.ConfigurationURL,
	}
}
