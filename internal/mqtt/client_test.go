package mqtt

import (
	"encoding/json"
	"testing"

	"github.com/berfenger/econet2mqtt/internal/core/domain"
	"github.com/berfenger/econet2mqtt/internal/util"

	"github.com/stretchr/testify/assert"
)

func testClient() *MQTTClient {
	cfg := util.LoadTestConfig()
	return &MQTTClient{cfg: cfg.MQTT}
}

func TestTopics(t *testing.T) {

	assert := assert.New(t)

	c := testClient()
	assert.Equal("econet/bridge/state", c.BridgeStateTopic())
	assert.Equal("econet/sensor/temp_co/state", c.SensorStateTopic("temp_co"))
	assert.Equal("econet/binary_sensor/controller_connectivity/state", c.BinarySensorStateTopic("controller_connectivity"))
	assert.Equal("homeassistant/status", c.HAStatusTopic())

	c.cfg.HADiscoveryTopic = ""
	assert.Equal("homeassistant/status", c.HAStatusTopic(), "default prefix")
	c.cfg.HADiscoveryTopic = "ha"
	assert.Equal("ha/status", c.HAStatusTopic())
}

func TestHAStatusParse(t *testing.T) {

	assert := assert.New(t)

	online, err := parseHAStatus("homeassistant/status", "homeassistant/status", []byte("online"))
	assert.NoError(err)
	assert.True(online)

	online, err = parseHAStatus("homeassistant/status", "homeassistant/status", []byte("offline\n"))
	assert.NoError(err)
	assert.False(online)

	_, err = parseHAStatus("homeassistant/status", "homeassistant/status", []byte("rebooting"))
	assert.Error(err)

	_, err = parseHAStatus("homeassistant/status", "econet/bridge/state", []byte("online"))
	assert.ErrorIs(err, ErrNotStatusTopic)
}

func TestClientId(t *testing.T) {

	assert := assert.New(t)

	a, b := clientId(), clientId()
	assert.Len(a, len("econet2mqtt_")+12)
	assert.NotEqual(a, b, "unique per process")
}

func TestSensorDiscoveryMessage(t *testing.T) {

	assert := assert.New(t)

	c := testClient()
	precision := 1
	sensor := domain.GenericSensor{
		Device:                    domain.Device{Id: "econet_1234", Name: "PLUM ecoNET300", ConfigurationURL: "http://econet.test"},
		Id:                        "temp_co",
		SensorType:                domain.SENSOR_TYPE_SENSOR,
		Name:                      "Boiler temperature",
		UniqueId:                  "UID-tempCO",
		UnitOfMeasurement:         "°C",
		StateClass:                domain.STATE_CLASS_MEASUREMENT,
		DeviceClass:               domain.DEVICE_CLASS_TEMPERATURE,
		Icon:                      "mdi:thermometer",
		SuggestedDisplayPrecision: &precision,
	}

	assert.Equal("homeassistant/sensor/econet_1234/temp_co/config", c.HADiscoverySensorTopic(sensor))

	msg := GenericSensorToHADiscoveryMessage(c, sensor)
	assert.Equal("econet/sensor/temp_co/state", msg.StateTopic)
	assert.Equal("all", msg.AvailabilityMode)
	assert.Len(msg.Availability, 2)
	assert.Equal("econet/binary_sensor/controller_connectivity/state", msg.Availability[1].Topic)

	raw, err := json.Marshal(msg)
	assert.NoError(err)
	var doc map[string]any
	assert.NoError(json.Unmarshal(raw, &doc))
	assert.Equal(1.0, doc["suggested_display_precision"])
	assert.Equal("mdi:thermometer", doc["icon"])
	assert.Equal("mqtt", doc["platform"])
	assert.NotContains(doc, "entity_category")
	assert.NotContains(doc, "payload_on")
	dev := doc["device"].(map[string]any)
	assert.Equal([]any{"econet_1234"}, dev["identifiers"])
	assert.Equal("http://econet.test", dev["configuration_url"])
}

func TestBinaryDiscoveryMessages(t *testing.T) {

	assert := assert.New(t)

	c := testClient()
	bridge := domain.BridgeSensors(domain.BridgeDevice("econet"))[0]
	msg := GenericSensorToHADiscoveryMessage(c, bridge)
	assert.Equal("econet/bridge/state", msg.StateTopic)
	assert.Equal(MQTT_PAYLOAD_ONLINE, msg.PayloadOn)
	assert.Equal(MQTT_PAYLOAD_OFFLINE, msg.PayloadOff)
	assert.Empty(msg.Availability)
	assert.Equal("homeassistant/binary_sensor/"+bridge.Device.Id+"/bridge/config", c.HADiscoverySensorTopic(bridge))

	connectivity := domain.ControllerSensors(domain.Device{Id: "econet_1234"})[0]
	msg = GenericSensorToHADiscoveryMessage(c, connectivity)
	assert.Equal("econet/binary_sensor/controller_connectivity/state", msg.StateTopic)
	assert.Equal(MQTT_PAYLOAD_ON, msg.PayloadOn)
	assert.Equal(MQTT_PAYLOAD_OFF, msg.PayloadOff)
	if assert.Len(msg.Availability, 1) {
		assert.Equal("econet/bridge/state", msg.Availability[0].Topic)
	}
	assert.Empty(msg.AvailabilityMode)
	assert.Equal(domain.ENTITY_CATEGORY_DIAGNOSTIC, msg.EntityCategory)
}
