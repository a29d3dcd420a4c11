package domain

type Device struct {
	Id               string
	Name             string
	Version          string
	Model            string
	Manufacturer     string
	ViaDevice        string
	ConfigurationURL string
}

type GenericSensor struct {
	Device                    Device
	Id                        string
	SensorType                string
	Name                      string
	UniqueId                  string
	UnitOfMeasurement         string
	StateClass                string // measurement, total, total_increasing
	DeviceClass               string // temperature, power, signal_strength...
	EntityCategory            string // diagnostic, config, nil
	EnabledByDefault          *bool
	Icon                      string
	SuggestedDisplayPrecision *int
}
