package sensor

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// EntityDescription is the static presentation metadata of one sensor.
type EntityDescription struct {
	Key                       string
	Name                      string
	DeviceClass               string
	EntityCategory            string
	TranslationKey            string
	Icon                      string
	NativeUnitOfMeasurement   string
	StateClass                string
	SuggestedDisplayPrecision *int
	ProcessVal                ValueProcessor
}

// Process applies the description's value processor, or returns value
// unchanged when there is none.
func (d EntityDescription) Process(value any) any {
	if d.ProcessVal == nil {
		return value
	}
	return d.ProcessVal(value)
}

// CreateEntityDescription builds the description of a controller sensor
// from the static tables. Unknown keys map to themselves and get no
// metadata.
func CreateEntityDescription(key string, logger *zap.Logger) EntityDescription {
	mapKey, ok := SensorMap[key]
	if !ok {
		mapKey = key
	}
	logger.Debug("creating entity description", zap.String("key", key), zap.String("map_key", mapKey))

	description := EntityDescription{
		Key:                     key,
		DeviceClass:             EntityDeviceClassMap[mapKey],
		EntityCategory:          EntityCategoryMap[mapKey],
		TranslationKey:          CamelToSnake(mapKey),
		Icon:                    EntityIconMap[mapKey],
		NativeUnitOfMeasurement: EntityUnitMap[mapKey],
		StateClass:              StateClassMap[mapKey],
		ProcessVal:              identity,
	}
	if precision, ok := EntityPrecisionMap[mapKey]; ok {
		description.SuggestedDisplayPrecision = optionalInt(precision)
	}
	if processor, ok := EntityValueProcessor[mapKey]; ok {
		description.ProcessVal = processor
	}

	logger.Debug("created entity description", zap.String("key", key),
		zap.String("translation_key", description.TranslationKey),
		zap.String("device_class", description.DeviceClass),
		zap.String("unit", description.NativeUnitOfMeasurement))
	return description
}

var (
	camelFirstCap = regexp.MustCompile("(.)([A-Z][a-z]+)")
	camelAllCap   = regexp.MustCompile("([a-z0-9])([A-Z])")
)

// CamelToSnake converts controller keys such as tempCWUSet to temp_cwu_set.
func CamelToSnake(key string) string {
	key = camelFirstCap.ReplaceAllString(key, "${1}_${2}")
	return strings.ToLower(camelAllCap.ReplaceAllString(key, "${1}_${2}"))
}

func identity(value any) any {
	return value
}

func enumProcessor(names map[int]string) ValueProcessor {
	return func(value any) any {
		n, ok := asFloat(value)
		if !ok || n != math.Trunc(n) {
			return "unknown"
		}
		if name, ok := names[int(n)]; ok {
			return name
		}
		return "unknown"
	}
}

func divideProcessor(divisor float64) ValueProcessor {
	return func(value any) any {
		n, ok := asFloat(value)
		if !ok {
			return value
		}
		return n / divisor
	}
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func optionalInt(value int) *int {
	return &value
}
