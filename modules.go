package obsctl

import "sync/atomic"

// Module identifies an engine module this package knows how to drive.
type Module uint8

const (
	ModuleOutputs Module = iota // obs-outputs: RTMP/FLV network outputs
	moduleCount
)

// moduleMeta contains static metadata about a module.
type moduleMeta struct {
	Name        string
	OutputTypes []string
}

// Static metadata table - indexed by Module.
var moduleInfo = [moduleCount]moduleMeta{
	ModuleOutputs: {"obs-outputs", []string{OutputTypeRTMP, "flv_output"}},
}

// OutputTypeRTMP is the RTMP push output registered by obs-outputs.
const OutputTypeRTMP = "rtmp_output"

// Runtime availability - set after a successful module init, cleared on
// teardown.
var moduleLoaded [moduleCount]atomic.Bool

// String returns the module name.
func (m Module) String() string {
	if m >= moduleCount {
		return "unknown"
	}
	return moduleInfo[m].Name
}

// OutputTypes returns the output type ids the module registers.
func (m Module) OutputTypes() []string {
	if m >= moduleCount {
		return nil
	}
	return moduleInfo[m].OutputTypes
}

// Loaded returns true if the module is initialized in the live engine.
func (m Module) Loaded() bool {
	if m >= moduleCount {
		return false
	}
	return moduleLoaded[m].Load()
}

// moduleByName maps a descriptor name to a known module.
func moduleByName(name string) (Module, bool) {
	for m := Module(0); m < moduleCount; m++ {
		if moduleInfo[m].Name == name {
			return m, true
		}
	}
	return moduleCount, false
}

func setModuleLoaded(name string, loaded bool) {
	if m, ok := moduleByName(name); ok {
		moduleLoaded[m].Store(loaded)
	}
}

// ModuleForOutputType returns the known module that registers typeID.
func ModuleForOutputType(typeID string) (Module, bool) {
	for m := Module(0); m < moduleCount; m++ {
		for _, t := range moduleInfo[m].OutputTypes {
			if t == typeID {
				return m, true
			}
		}
	}
	return moduleCount, false
}
