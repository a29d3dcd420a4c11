package sensor

import (
	"github.com/berfenger/econet2mqtt/internal/core/domain"
)

const (
	DEFAULT_AVAILABLE_MIXERS = 5

	UNIT_CELSIUS    = "°C"
	UNIT_PERCENTAGE = "%"
	UNIT_DBM        = "dBm"

	ICON_THERMOMETER = "mdi:thermometer"
	ICON_INFORMATION = "mdi:information-outline"
)

type sensorMapEntry struct {
	key  string
	name string
}

// sensorTable lists the controller data keys turned into sensors, in
// registration order, with the canonical name the metadata tables use.
var sensorTable = []sensorMapEntry{
	{"tempFeeder", "tempFeeder"},
	{"fuelLevel", "fuelLevel"},
	{"tempCO", "tempCO"},
	{"tempCOSet", "tempCOSet"},
	{"statusCWU", "statusCWU"},
	{"tempCWU", "tempCWU"},
	{"tempCWUSet", "tempCWUSet"},
	{"tempFlueGas", "tempFlueGas"},
	{"mode", "mode"},
	{"fanPower", "fanPower"},
	{"thermostat", "thermostat"},
	{"tempExternalSensor", "tempExternalSensor"},
	{"outsideTemp", "tempExternalSensor"},
	{"tempLowerBuffer", "tempLowerBuffer"},
	{"tempUpperBuffer", "tempUpperBuffer"},
	{"boilerPower", "boilerPower"},
	{"lambdaLevel", "lambdaLevel"},
	{"lambdaStatus", "lambdaStatus"},
	{"lambdaSet", "lambdaSet"},
	{"quality", "quality"},
	{"signal", "signal"},
	{"softVer", "softVer"},
	{"controllerID", "controllerID"},
	{"moduleASoftVer", "moduleASoftVer"},
	{"moduleBSoftVer", "moduleBSoftVer"},
	{"moduleCSoftVer", "moduleCSoftVer"},
	{"moduleLambdaSoftVer", "moduleLambdaSoftVer"},
	{"modulePanelSoftVer", "modulePanelSoftVer"},
	{"ecosrvSoftVer", "ecosrvSoftVer"},
}

var SensorMap = buildSensorMap(sensorTable)

var EntityDeviceClassMap = map[string]string{
	"tempFeeder":         domain.DEVICE_CLASS_TEMPERATURE,
	"tempCO":             domain.DEVICE_CLASS_TEMPERATURE,
	"tempCOSet":          domain.DEVICE_CLASS_TEMPERATURE,
	"tempCWU":            domain.DEVICE_CLASS_TEMPERATURE,
	"tempCWUSet":         domain.DEVICE_CLASS_TEMPERATURE,
	"tempFlueGas":        domain.DEVICE_CLASS_TEMPERATURE,
	"tempExternalSensor": domain.DEVICE_CLASS_TEMPERATURE,
	"tempLowerBuffer":    domain.DEVICE_CLASS_TEMPERATURE,
	"tempUpperBuffer":    domain.DEVICE_CLASS_TEMPERATURE,
	"fanPower":           domain.DEVICE_CLASS_POWER_FACTOR,
	"boilerPower":        domain.DEVICE_CLASS_POWER_FACTOR,
	"signal":             domain.DEVICE_CLASS_SIGNAL_STRENGTH,
	"mode":               domain.DEVICE_CLASS_ENUM,
	"lambdaStatus":       domain.DEVICE_CLASS_ENUM,
}

var EntityCategoryMap = map[string]string{
	"quality":             domain.ENTITY_CATEGORY_DIAGNOSTIC,
	"signal":              domain.ENTITY_CATEGORY_DIAGNOSTIC,
	"softVer":             domain.ENTITY_CATEGORY_DIAGNOSTIC,
	"controllerID":        domain.ENTITY_CATEGORY_DIAGNOSTIC,
	"moduleASoftVer":      domain.ENTITY_CATEGORY_DIAGNOSTIC,
	"moduleBSoftVer":      domain.ENTITY_CATEGORY_DIAGNOSTIC,
	"moduleCSoftVer":      domain.ENTITY_CATEGORY_DIAGNOSTIC,
	"moduleLambdaSoftVer": domain.ENTITY_CATEGORY_DIAGNOSTIC,
	"modulePanelSoftVer":  domain.ENTITY_CATEGORY_DIAGNOSTIC,
	"ecosrvSoftVer":       domain.ENTITY_CATEGORY_DIAGNOSTIC,
}

var EntityIconMap = map[string]string{
	"fuelLevel":           "mdi:gas-station",
	"statusCWU":           "mdi:water-boiler",
	"mode":                "mdi:sync",
	"fanPower":            "mdi:fan",
	"thermostat":          "mdi:thermostat",
	"boilerPower":         "mdi:gauge",
	"lambdaLevel":         "mdi:lambda",
	"lambdaStatus":        "mdi:lambda",
	"lambdaSet":           "mdi:lambda",
	"quality":             "mdi:signal",
	"signal":              "mdi:wifi",
	"softVer":             ICON_INFORMATION,
	"controllerID":        ICON_INFORMATION,
	"moduleASoftVer":      ICON_INFORMATION,
	"moduleBSoftVer":      ICON_INFORMATION,
	"moduleCSoftVer":      ICON_INFORMATION,
	"moduleLambdaSoftVer": ICON_INFORMATION,
	"modulePanelSoftVer":  ICON_INFORMATION,
	"ecosrvSoftVer":       ICON_INFORMATION,
}

var EntityUnitMap = map[string]string{
	"tempFeeder":         UNIT_CELSIUS,
	"tempCO":             UNIT_CELSIUS,
	"tempCOSet":          UNIT_CELSIUS,
	"tempCWU":            UNIT_CELSIUS,
	"tempCWUSet":         UNIT_CELSIUS,
	"tempFlueGas":        UNIT_CELSIUS,
	"tempExternalSensor": UNIT_CELSIUS,
	"tempLowerBuffer":    UNIT_CELSIUS,
	"tempUpperBuffer":    UNIT_CELSIUS,
	"fuelLevel":          UNIT_PERCENTAGE,
	"fanPower":           UNIT_PERCENTAGE,
	"boilerPower":        UNIT_PERCENTAGE,
	"lambdaLevel":        UNIT_PERCENTAGE,
	"lambdaSet":          UNIT_PERCENTAGE,
	"quality":            UNIT_PERCENTAGE,
	"signal":             UNIT_DBM,
}

var StateClassMap = map[string]string{
	"tempFeeder":         domain.STATE_CLASS_MEASUREMENT,
	"tempCO":             domain.STATE_CLASS_MEASUREMENT,
	"tempCOSet":          domain.STATE_CLASS_MEASUREMENT,
	"tempCWU":            domain.STATE_CLASS_MEASUREMENT,
	"tempCWUSet":         domain.STATE_CLASS_MEASUREMENT,
	"tempFlueGas":        domain.STATE_CLASS_MEASUREMENT,
	"tempExternalSensor": domain.STATE_CLASS_MEASUREMENT,
	"tempLowerBuffer":    domain.STATE_CLASS_MEASUREMENT,
	"tempUpperBuffer":    domain.STATE_CLASS_MEASUREMENT,
	"fuelLevel":          domain.STATE_CLASS_MEASUREMENT,
	"fanPower":           domain.STATE_CLASS_MEASUREMENT,
	"boilerPower":        domain.STATE_CLASS_MEASUREMENT,
	"lambdaLevel":        domain.STATE_CLASS_MEASUREMENT,
	"lambdaSet":          domain.STATE_CLASS_MEASUREMENT,
	"quality":            domain.STATE_CLASS_MEASUREMENT,
	"signal":             domain.STATE_CLASS_MEASUREMENT,
}

var EntityPrecisionMap = map[string]int{
	"tempFeeder":         1,
	"tempCO":             1,
	"tempCOSet":          0,
	"tempCWU":            1,
	"tempCWUSet":         0,
	"tempFlueGas":        1,
	"tempExternalSensor": 1,
	"tempLowerBuffer":    1,
	"tempUpperBuffer":    1,
	"fuelLevel":          0,
	"fanPower":           0,
	"boilerPower":        0,
	"lambdaLevel":        1,
	"lambdaSet":          1,
	"quality":            0,
	"signal":             0,
}

// ValueProcessor turns a raw controller value into the published state.
type ValueProcessor func(any) any

var EntityValueProcessor = map[string]ValueProcessor{
	"mode":         enumProcessor(OperationModeNames),
	"lambdaStatus": enumProcessor(LambdaStatusNames),
	"statusCWU":    enumProcessor(OnOffNames),
	"thermostat":   enumProcessor(OnOffNames),
	"lambdaLevel":  divideProcessor(10),
	"lambdaSet":    divideProcessor(10),
}

var OperationModeNames = map[int]string{
	0:  "turned_off",
	1:  "fire_up_1",
	2:  "fire_up_2",
	3:  "work",
	4:  "supervision",
	5:  "halted",
	6:  "stop",
	7:  "burning_off",
	8:  "manual",
	9:  "alarm",
	10: "unsealing",
	11: "chimney",
	12: "stabilization",
	13: "no_transmission",
}

var LambdaStatusNames = map[int]string{
	0: "stop",
	1: "start",
	2: "working",
}

var OnOffNames = map[int]string{
	0: "off",
	1: "on",
}

func buildSensorMap(table []sensorMapEntry) map[string]string {
	m := make(map[string]string, len(table))
	for _, e := range table {
		m[e.key] = e.name
	}
	return m
}

// SensorKeys returns the data keys of the sensor table in table order.
func SensorKeys() []string {
	keys := make([]string, 0, len(sensorTable))
	for _, e := range sensorTable {
		keys = append(keys, e.key)
	}
	return keys
}
