package sensor

import (
	"fmt"

	"github.com/berfenger/econet2mqtt/internal/core/domain"
	"github.com/berfenger/econet2mqtt/internal/core/port"
	"github.com/berfenger/econet2mqtt/internal/translations"
	"github.com/berfenger/econet2mqtt/pkg/econet300"

	"go.uber.org/zap"
)

// StateWriter publishes an entity's current state. It plays the role of
// the host's state machine: entities call it after every change.
type StateWriter interface {
	WriteState(entity Entity)
}

type Entity interface {
	Key() string
	ObjectId() string
	UniqueID() string
	Name() string
	Description() EntityDescription
	NativeValue() any
	Available() bool
	DeviceInfo(controller domain.Device) domain.Device
	// AddedToHost attaches the entity to a state writer and to coordinator
	// updates. The returned func detaches it.
	AddedToHost(writer StateWriter) (remove func())
	HandleCoordinatorUpdate()
}

type Sensor struct {
	description EntityDescription
	coordinator port.DataCoordinator
	api         econet300.Reader
	nativeValue any
	writer      StateWriter
	logger      *zap.Logger
}

func NewSensor(description EntityDescription, coordinator port.DataCoordinator, api econet300.Reader, logger *zap.Logger) *Sensor {
	s := &Sensor{
		description: description,
		coordinator: coordinator,
		api:         api,
		logger:      logger.With(zap.String("entity", description.Key)),
	}
	s.logger.Debug("sensor initialized", zap.String("unique_id", s.UniqueID()))
	return s
}

func (s *Sensor) Key() string {
	return s.description.Key
}

// ObjectId is the entity's id inside the bridge's topic tree.
func (s *Sensor) ObjectId() string {
	return CamelToSnake(s.description.Key)
}

func (s *Sensor) UniqueID() string {
	uid, _ := s.coordinator.Data()[econet300.KEY_UID].(string)
	return fmt.Sprintf("%s-%s", uid, s.description.Key)
}

func (s *Sensor) Name() string {
	if s.description.TranslationKey != "" {
		if name, ok := translations.SensorName(s.description.TranslationKey); ok {
			return name
		}
	}
	if s.description.Name != "" {
		return s.description.Name
	}
	return s.description.Key
}

func (s *Sensor) Description() EntityDescription {
	return s.description
}

func (s *Sensor) NativeValue() any {
	return s.nativeValue
}

func (s *Sensor) Available() bool {
	return s.coordinator.LastUpdateSuccess()
}

func (s *Sensor) DeviceInfo(controller domain.Device) domain.Device {
	return controller
}

func (s *Sensor) API() econet300.Reader {
	return s.api
}

func (s *Sensor) AddedToHost(writer StateWriter) func() {
	s.writer = writer
	remove := s.coordinator.AddListener(s.HandleCoordinatorUpdate)
	if s.coordinator.HasData(s.description.Key) {
		s.SyncState(s.coordinator.Data()[s.description.Key])
	}
	return func() {
		remove()
		s.writer = nil
	}
}

func (s *Sensor) HandleCoordinatorUpdate() {
	if !s.coordinator.LastUpdateSuccess() {
		return
	}
	value, ok := s.coordinator.Data()[s.description.Key]
	if !ok {
		s.logger.Debug("key missing from coordinator data")
		return
	}
	s.SyncState(value)
}

// SyncState stores the processed value and writes the new state.
func (s *Sensor) SyncState(value any) {
	s.logger.Debug("update sensor entity")
	s.nativeValue = s.description.Process(value)
	if s.writer != nil {
		s.writer.WriteState(s)
	}
}

// MixerSensor is a sensor of one mixer circuit, attached to that
// mixer's sub-device.
type MixerSensor struct {
	*Sensor
	mixer int
}

func NewMixerSensor(description EntityDescription, coordinator port.DataCoordinator, api econet300.Reader, mixer int, logger *zap.Logger) *MixerSensor {
	return &MixerSensor{
		Sensor: NewSensor(description, coordinator, api, logger.With(zap.Int("mixer", mixer))),
		mixer:  mixer,
	}
}

func (s *MixerSensor) Mixer() int {
	return s.mixer
}

func (s *MixerSensor) DeviceInfo(controller domain.Device) domain.Device {
	return domain.MixerDevice(controller, s.mixer)
}

// ToGenericSensor builds the discovery definition of an entity.
func ToGenericSensor(entity Entity, controller domain.Device) domain.GenericSensor {
	description := entity.Description()
	return domain.GenericSensor{
		Device:                    entity.DeviceInfo(controller),
		Id:                        entity.ObjectId(),
		SensorType:                domain.SENSOR_TYPE_SENSOR,
		Name:                      entity.Name(),
		UniqueId:                  entity.UniqueID(),
		UnitOfMeasurement:         description.NativeUnitOfMeasurement,
		StateClass:                description.StateClass,
		DeviceClass:               description.DeviceClass,
		EntityCategory:            description.EntityCategory,
		Icon:                      description.Icon,
		SuggestedDisplayPrecision: description.SuggestedDisplayPrecision,
	}
}

// ensure interface compliance
var _ Entity = (*Sensor)(nil)
var _ Entity = (*MixerSensor)(nil)
