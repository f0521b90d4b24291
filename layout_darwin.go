//go:build darwin

package obsctl

// DefaultLayout is the macOS app-bundle layout. libobs ships as
// libobs.framework/Versions/A/libobs; modules sit three levels up.
var DefaultLayout = Layout{
	ModulesOffset: "../../../obs-plugins",
	Module: ModuleDescriptor{
		Name:       "obs-outputs",
		BinaryPath: "obs-outputs.plugin/Contents/MacOS/obs-outputs",
		DataPath:   "obs-outputs.plugin/Contents/Resources",
	},
}

const (
	libobsName    = "libobs.framework/Versions/A/libobs"
	libobsAltName = "libobs.dylib"
	libcName      = "/usr/lib/libSystem.B.dylib"
	libdlName     = ""
)
