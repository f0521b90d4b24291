//go:build !darwin && !linux

package obsctl

// DefaultLayout carries no offset: modules cannot be located without
// symbol introspection, so only absolute descriptor paths can load.
var DefaultLayout = Layout{
	Module: ModuleDescriptor{
		Name:       "obs-outputs",
		BinaryPath: "obs-outputs",
	},
}
