package econet300

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	ENDPOINT_SYS_PARAMS = "sysParams"
	ENDPOINT_REG_PARAMS = "regParams"

	KEY_UID = "uid"
)

var (
	ErrNoCurrentParams = errors.New("econet300: regParams response has no current values")
	ErrNoUID           = errors.New("econet300: sysParams response has no uid")
)

// Params is a flat snapshot of controller values as decoded from JSON.
// Values are float64, string, bool or nil.
type Params map[string]any

type SysParams struct {
	UID                 string `json:"uid"`
	ControllerID        string `json:"controllerID"`
	SoftVer             string `json:"softVer"`
	ModuleASoftVer      string `json:"moduleASoftVer"`
	ModuleBSoftVer      string `json:"moduleBSoftVer"`
	ModuleCSoftVer      string `json:"moduleCSoftVer"`
	ModuleLambdaSoftVer string `json:"moduleLambdaSoftVer"`
	ModulePanelSoftVer  string `json:"modulePanelSoftVer"`
	EcosrvSoftVer       string `json:"ecosrvSoftVer"`
	RouterType          string `json:"routerType"`
	ProtocolType        string `json:"protocolType"`

	// Raw holds every scalar field of the response, including the ones above.
	Raw Params `json:"-"`
}

type regParamsResponse struct {
	Curr Params `json:"curr"`
}

type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("econet300: %s returned HTTP %d", e.Endpoint, e.StatusCode)
}

func parseSysParams(body []byte) (*SysParams, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", ENDPOINT_SYS_PARAMS, err)
	}
	// controllerID and softVer are numbers on some firmware versions
	params := &SysParams{
		UID:                 stringField(raw, KEY_UID),
		ControllerID:        stringField(raw, "controllerID"),
		SoftVer:             stringField(raw, "softVer"),
		ModuleASoftVer:      stringField(raw, "moduleASoftVer"),
		ModuleBSoftVer:      stringField(raw, "moduleBSoftVer"),
		ModuleCSoftVer:      stringField(raw, "moduleCSoftVer"),
		ModuleLambdaSoftVer: stringField(raw, "moduleLambdaSoftVer"),
		ModulePanelSoftVer:  stringField(raw, "modulePanelSoftVer"),
		EcosrvSoftVer:       stringField(raw, "ecosrvSoftVer"),
		RouterType:          stringField(raw, "routerType"),
		ProtocolType:        stringField(raw, "protocolType"),
		Raw:                 Params{},
	}
	for k, v := range raw {
		switch v.(type) {
		case map[string]any, []any:
			continue
		}
		params.Raw[k] = v
	}
	if params.UID == "" {
		return nil, ErrNoUID
	}
	return params, nil
}

func parseRegParams(body []byte) (Params, error) {
	var resp regParamsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode %s: %w", ENDPOINT_REG_PARAMS, err)
	}
	if resp.Curr == nil {
		return nil, ErrNoCurrentParams
	}
	return resp.Curr, nil
}

// MergeParams returns the current register values extended with the
// controller's system parameters. Register values win on key collisions.
func MergeParams(reg Params, sys *SysParams) Params {
	merged := make(Params, len(reg)+8)
	if sys != nil {
		for k, v := range sys.Raw {
			merged[k] = v
		}
	}
	for k, v := range reg {
		merged[k] = v
	}
	return merged
}

func stringField(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return fmt.Sprintf("%.0f", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
