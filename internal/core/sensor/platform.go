package sensor

import (
	"fmt"

	"github.com/berfenger/econet2mqtt/internal/core/domain"
	"github.com/berfenger/econet2mqtt/internal/core/port"
	"github.com/berfenger/econet2mqtt/pkg/econet300"

	"go.uber.org/zap"
)

// EntryData is what the host keeps for one configured controller.
type EntryData struct {
	Coordinator     port.DataCoordinator
	API             econet300.Reader
	AvailableMixers int
	Logger          *zap.Logger
}

type AddEntitiesCallback func(entities []Entity) error

// SetupEntry creates the sensor entities of a controller and hands them
// to the host: controller sensors first, then the sensors of every
// installed mixer. Mixer sensors are registered on purpose so mixer
// circuits show up as their own devices.
func SetupEntry(entry EntryData, addEntities AddEntitiesCallback) error {
	logger := entry.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var entities []Entity
	for _, s := range CreateControllerSensors(entry.Coordinator, entry.API, logger) {
		entities = append(entities, s)
	}
	for _, s := range CreateMixerSensors(entry.Coordinator, entry.API, entry.AvailableMixers, logger) {
		entities = append(entities, s)
	}

	return addEntities(entities)
}

func CreateControllerSensors(coordinator port.DataCoordinator, api econet300.Reader, logger *zap.Logger) []*Sensor {
	var entities []*Sensor
	data := coordinator.Data()
	for _, key := range SensorKeys() {
		if _, ok := data[key]; ok {
			entities = append(entities, NewSensor(CreateEntityDescription(key, logger), coordinator, api, logger))
			logger.Debug("key mapped, sensor entity will be added", zap.String("key", key))
			continue
		}
		logger.Debug("key not in coordinator data, sensor entity will not be added", zap.String("key", key))
	}
	return entities
}

func CreateMixerSensors(coordinator port.DataCoordinator, api econet300.Reader, mixers int, logger *zap.Logger) []*MixerSensor {
	var entities []*MixerSensor
	for i := 1; i <= mixers; i++ {
		for _, description := range MixerDescriptions(i) {
			if CanAdd(description, coordinator) {
				entities = append(entities, NewMixerSensor(description, coordinator, api, i, logger))
				continue
			}
			logger.Debug("availability key does not exist, entity will not be added", zap.String("key", description.Key))
		}
	}
	return entities
}

// MixerDescriptions returns the temperature and set point descriptions
// of mixer i.
func MixerDescriptions(i int) []EntityDescription {
	return []EntityDescription{
		mixerTemperatureDescription(
			fmt.Sprintf("mixerTemp%d", i),
			fmt.Sprintf("Mixer %d temperature", i),
			fmt.Sprintf("mixer_temp_%d", i),
		),
		mixerTemperatureDescription(
			fmt.Sprintf("mixerSetTemp%d", i),
			fmt.Sprintf("Mixer %d set temperature", i),
			fmt.Sprintf("mixer_%d_set_temp", i),
		),
	}
}

func mixerTemperatureDescription(key, name, translationKey string) EntityDescription {
	return EntityDescription{
		Key:                       key,
		Name:                      name,
		TranslationKey:            translationKey,
		Icon:                      ICON_THERMOMETER,
		NativeUnitOfMeasurement:   UNIT_CELSIUS,
		StateClass:                domain.STATE_CLASS_MEASUREMENT,
		DeviceClass:               domain.DEVICE_CLASS_TEMPERATURE,
		SuggestedDisplayPrecision: optionalInt(0),
		ProcessVal:                identity,
	}
}

// CanAdd reports whether the controller exposes the description's key
// with a usable value. Controllers report uninstalled circuits as null
// or false.
func CanAdd(description EntityDescription, coordinator port.DataCoordinator) bool {
	if !coordinator.HasData(description.Key) {
		return false
	}
	switch v := coordinator.Data()[description.Key].(type) {
	case nil:
		return false
	case bool:
		return v
	default:
		return true
	}
}
