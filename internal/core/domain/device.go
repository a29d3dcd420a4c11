package domain

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/berfenger/econet2mqtt/pkg/econet300"

	"github.com/carlmjohnson/versioninfo"
)

const (
	SENSOR_ID_BRIDGE_STATE            = "bridge"
	SENSOR_ID_CONTROLLER_CONNECTIVITY = "controller_connectivity"
	STATE_CLASS_MEASUREMENT           = "measurement"
	DEVICE_CLASS_TEMPERATURE          = "temperature"
	DEVICE_CLASS_POWER_FACTOR         = "power_factor"
	DEVICE_CLASS_SIGNAL_STRENGTH      = "signal_strength"
	DEVICE_CLASS_CONNECTIVITY         = "connectivity"
	DEVICE_CLASS_ENUM                 = "enum"
	ENTITY_CATEGORY_DIAGNOSTIC        = "diagnostic"
	SENSOR_TYPE_SENSOR                = "sensor"
	SENSOR_TYPE_BINARY                = "binary_sensor"
	CONTROLLER_MANUFACTURER           = "PLUM"
	CONTROLLER_NAME                   = "PLUM ecoNET300"
)

func BridgeDevice(baseTopic string) Device {
	return Device{
		Id:           fmt.Sprintf("econet2mqtt_bridge_%s", md5HashShort(baseTopic)),
		Manufacturer: "ACasal",
		Model:        "econet2mqtt",
		Version:      versioninfo.Short(),
		Name:         fmt.Sprintf("econet2mqtt %s", md5HashShort(baseTopic)),
	}
}

func ControllerDevice(info *econet300.SysParams, configurationURL string) Device {
	return Device{
		Id:               fmt.Sprintf("econet_%s", md5HashShort(info.UID)),
		Name:             CONTROLLER_NAME,
		Manufacturer:     CONTROLLER_MANUFACTURER,
		Model:            info.ControllerID,
		Version:          info.SoftVer,
		ConfigurationURL: configurationURL,
	}
}

// MixerDevice is the sub-device grouping the sensors of one mixer circuit.
func MixerDevice(controller Device, mixer int) Device {
	return Device{
		Id:           fmt.Sprintf("%s_mixer_%d", controller.Id, mixer),
		Name:         fmt.Sprintf("Mixer %d", mixer),
		Manufacturer: CONTROLLER_MANUFACTURER,
		Model:        controller.Model,
		ViaDevice:    controller.Id,
	}
}

func IdDevice(device Device) Device {
	return Device{
		Id:   device.Id,
		Name: device.Name,
	}
}

func BridgeSensors(bridgeDevice Device) []GenericSensor {

	var sensors []GenericSensor

	// Bridge connection state
	sensors = append(sensors, GenericSensor{
		Device:         bridgeDevice,
		Id:             SENSOR_ID_BRIDGE_STATE,
		SensorType:     SENSOR_TYPE_BINARY,
		Name:           "Connection state",
		DeviceClass:    DEVICE_CLASS_CONNECTIVITY,
		EntityCategory: ENTITY_CATEGORY_DIAGNOSTIC,
		UniqueId:       UniqueId(bridgeDevice.Id, SENSOR_ID_BRIDGE_STATE),
	})

	return sensors
}

func ControllerSensors(controllerDevice Device) []GenericSensor {

	var sensors []GenericSensor

	// Controller reachability as seen by the last poll
	sensors = append(sensors, GenericSensor{
		Device:         controllerDevice,
		Id:             SENSOR_ID_CONTROLLER_CONNECTIVITY,
		SensorType:     SENSOR_TYPE_BINARY,
		Name:           "Controller connectivity",
		DeviceClass:    DEVICE_CLASS_CONNECTIVITY,
		EntityCategory: ENTITY_CATEGORY_DIAGNOSTIC,
		UniqueId:       UniqueId(controllerDevice.Id, SENSOR_ID_CONTROLLER_CONNECTIVITY),
	})

	return sensors
}

func ControllerConnectivityUpdateEvent(online bool) SensorUpdateEvent {
	return BinarySensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_CONTROLLER_CONNECTIVITY,
		},
		Value: online,
	}
}

func UniqueId(baseId, id string) string {
	return fmt.Sprintf("uid_%s_%s", baseId, id)
}

func md5Hash(text string) string {
	hash := md5.Sum([]byte(text))
	return hex.EncodeToString(hash[:])
}

func md5HashShort(text string) string {
	hash := md5Hash(text)
	return hash[0:8]
}
