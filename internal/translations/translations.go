// Package translations holds the English names of the sensor entities,
// keyed by translation key, in the layout Home Assistant uses for
// integration translation files.
package translations

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed en.yaml
var enYAML []byte

type catalogFile struct {
	Entity struct {
		Sensor map[string]struct {
			Name string `yaml:"name"`
		} `yaml:"sensor"`
	} `yaml:"entity"`
}

var (
	loadOnce    sync.Once
	sensorNames map[string]string
	loadErr     error
)

// Parse reads a translation file and returns sensor names by translation key.
func Parse(data []byte) (map[string]string, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse translations: %w", err)
	}
	names := make(map[string]string, len(file.Entity.Sensor))
	for key, entry := range file.Entity.Sensor {
		if entry.Name != "" {
			names[key] = entry.Name
		}
	}
	return names, nil
}

// SensorName returns the English name registered for a translation key.
func SensorName(translationKey string) (string, bool) {
	loadOnce.Do(func() {
		sensorNames, loadErr = Parse(enYAML)
	})
	if loadErr != nil {
		return "", false
	}
	name, ok := sensorNames[translationKey]
	return name, ok
}

// Err reports a failure to parse the embedded catalog.
func Err() error {
	SensorName("")
	return loadErr
}
