package obsctl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModuleMetadata(t *testing.T) {
	assert.Equal(t, "obs-outputs", ModuleOutputs.String())
	assert.Contains(t, ModuleOutputs.OutputTypes(), OutputTypeRTMP)
	assert.Equal(t, "unknown", moduleCount.String())
	assert.Nil(t, moduleCount.OutputTypes())
	assert.False(t, moduleCount.Loaded())

	m, ok := ModuleForOutputType(OutputTypeRTMP)
	assert.True(t, ok)
	assert.Equal(t, ModuleOutputs, m)

	_, ok = ModuleForOutputType("ffmpeg_muxer")
	assert.False(t, ok)
}

func TestSetModuleLoaded(t *testing.T) {
	t.Cleanup(func() { setModuleLoaded("obs-outputs", false) })

	setModuleLoaded("obs-outputs", true)
	assert.True(t, ModuleOutputs.Loaded())
	setModuleLoaded("obs-browser", true)
	setModuleLoaded("obs-outputs", false)
	assert.False(t, ModuleOutputs.Loaded())
}
