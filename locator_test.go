package obsctl

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModulesDirFor(t *testing.T) {
	tests := []struct {
		name   string
		image  string
		offset string
		want   string
	}{
		{"bundle", "/a/b/c/Contents/MacOS/app", "../../../obs-plugins", "/a/b/obs-plugins/"},
		{"framework", "/OBS.app/Contents/Frameworks/libobs.framework/Versions/A/libobs", "../../../obs-plugins", "/OBS.app/Contents/Frameworks/obs-plugins/"},
		{"libdir", "/usr/lib/libobs.so.0", "obs-plugins", "/usr/lib/obs-plugins/"},
		{"no offset", "/usr/lib/libobs.so.0", "", "/usr/lib/"},
		{"empty image", "", "obs-plugins", Unsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ModulesDirFor(filepath.FromSlash(tt.image), Layout{ModulesOffset: tt.offset})
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestModuleDescriptorResolve(t *testing.T) {
	d := ModuleDescriptor{
		Name:       "obs-outputs",
		BinaryPath: "obs-outputs.so",
		DataPath:   "/usr/share/obs/obs-plugins/obs-outputs",
	}

	got := d.Resolve("/usr/lib/obs-plugins/")
	assert.Equal(t, "obs-outputs", got.Name)
	assert.Equal(t, "/usr/lib/obs-plugins/obs-outputs.so", got.BinaryPath)
	assert.Equal(t, "/usr/share/obs/obs-plugins/obs-outputs", got.DataPath, "absolute paths are kept")

	assert.Equal(t, d, d.Resolve(Unsupported))
}

type imageEngine struct {
	Engine
	image string
	err   error
}

func (e imageEngine) SymbolImage() (string, error) { return e.image, e.err }

func TestSymbolLocator(t *testing.T) {
	layout := Layout{ModulesOffset: "obs-plugins"}

	l := SymbolLocator{Engine: imageEngine{image: "/opt/obs/lib/libobs.so.0"}, Layout: layout}
	assert.Equal(t, "/opt/obs/lib/obs-plugins/", l.Locate())

	l = SymbolLocator{Engine: imageEngine{err: errors.New("dladdr failed")}, Layout: layout}
	assert.Equal(t, Unsupported, l.Locate())

	assert.Equal(t, Unsupported, SymbolLocator{Layout: layout}.Locate())
}

func TestStaticLocator(t *testing.T) {
	assert.Equal(t, "/opt/obs/plugins/", StaticLocator("/opt/obs/plugins").Locate())
	assert.Equal(t, "/opt/obs/plugins/", StaticLocator("/opt/obs/plugins/").Locate())
	assert.Equal(t, "/", StaticLocator("/").Locate())
	assert.Equal(t, Unsupported, StaticLocator("").Locate())
}

func TestExecutableLocator(t *testing.T) {
	dir := ExecutableLocator{Layout: Layout{ModulesOffset: "obs-plugins"}}.Locate()
	require.NotEqual(t, Unsupported, dir)
	assert.True(t, strings.HasSuffix(dir, "obs-plugins"+string(filepath.Separator)))
	assert.True(t, filepath.IsAbs(dir))
}
