package econet300

import "context"

// TestReader serves a fixed ecoMAX860 snapshot. Mixers 1 and 2 are
// installed, mixer 3 reports no sensor.
type TestReader struct {
	Err error
}

func SampleSysParams() *SysParams {
	raw := Params{
		"uid":                 "2L7SDPN6KQ38CIH2401K01",
		"controllerID":        "ecoMAX 860P3-O",
		"softVer":             "1.1.13",
		"moduleASoftVer":      "109.10.129.P1",
		"moduleBSoftVer":      nil,
		"moduleLambdaSoftVer": "0.8.0",
		"modulePanelSoftVer":  "2.3.43",
		"ecosrvSoftVer":       "3.2.3879",
		"routerType":          "econet300",
		"protocolType":        "em",
	}
	return &SysParams{
		UID:                 "2L7SDPN6KQ38CIH2401K01",
		ControllerID:        "ecoMAX 860P3-O",
		SoftVer:             "1.1.13",
		ModuleASoftVer:      "109.10.129.P1",
		ModuleLambdaSoftVer: "0.8.0",
		ModulePanelSoftVer:  "2.3.43",
		EcosrvSoftVer:       "3.2.3879",
		RouterType:          "econet300",
		ProtocolType:        "em",
		Raw:                 raw,
	}
}

func SampleRegParams() Params {
	return Params{
		"tempCO":             55.3,
		"tempCOSet":          60.0,
		"tempCWU":            48.1,
		"tempCWUSet":         50.0,
		"tempFeeder":         32.0,
		"tempFlueGas":        121.4,
		"tempExternalSensor": -2.4,
		"tempUpperBuffer":    52.5,
		"tempLowerBuffer":    41.9,
		"fuelLevel":          70.0,
		"fanPower":           45.0,
		"boilerPower":        80.0,
		"mode":               3.0,
		"lambdaStatus":       2.0,
		"lambdaLevel":        125.0,
		"lambdaSet":          100.0,
		"thermostat":         1.0,
		"statusCWU":          0.0,
		"quality":            100.0,
		"signal":             -58.0,
		"mixerTemp1":         35.2,
		"mixerSetTemp1":      40.0,
		"mixerTemp2":         29.8,
		"mixerSetTemp2":      30.0,
		"mixerTemp3":         nil,
		"mixerSetTemp3":      false,
	}
}

func (r *TestReader) Open() error {
	return nil
}

func (r *TestReader) Close() error {
	return nil
}

func (r *TestReader) Host() string {
	return "http://econet.test"
}

func (r *TestReader) GetSysParams(_ context.Context) (*SysParams, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return SampleSysParams(), nil
}

func (r *TestReader) GetRegParams(_ context.Context) (Params, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return SampleRegParams(), nil
}
