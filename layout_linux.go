//go:build linux

package obsctl

// DefaultLayout is the FHS layout used by distribution packages:
// <libdir>/libobs.so.0, <libdir>/obs-plugins/*.so and
// <prefix>/share/obs/obs-plugins/<module>.
var DefaultLayout = Layout{
	ModulesOffset: "obs-plugins",
	Module: ModuleDescriptor{
		Name:       "obs-outputs",
		BinaryPath: "obs-outputs.so",
		DataPath:   "../../share/obs/obs-plugins/obs-outputs",
	},
}

const (
	libobsName    = "libobs.so.0"
	libobsAltName = "libobs.so"
	libcName      = "libc.so.6"
	libdlName     = "libdl.so.2"
)
