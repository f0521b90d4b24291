// Package obsctl brings up the libobs media engine, loads its output module
// and drives the lifecycle of a single RTMP push output.
//
// Key pieces include:
//   - Session: the engine/output state machine (BringUp, ConfigureOutput,
//     Start, Stop, Teardown)
//   - Controller: the host-facing init/start/stop/cleanup surface with typed
//     results
//   - Locator: resolves the modules directory from the install layout
//   - Log bridge: forwards engine log records to a single LogSink
//
// # Lifecycle
//
//	Uninitialized -> BringingUp -> Ready -> Configuring -> Configured
//	    -> Streaming -> Stopped -> TornDown
//
// Failed is reachable from any transition. Only one Session may be live per
// process; NewSession returns ErrAlreadyInitialized otherwise. Teardown
// stops the output, releases it, then shuts the engine down so a later
// session can start it again.
//
// # Install Layout
//
// The modules directory is derived from the image exporting obs_startup,
// not configured:
//
//	darwin: libobs.framework/Versions/A/libobs -> ../../../obs-plugins/
//	        obs-outputs.plugin/Contents/MacOS/obs-outputs
//	        obs-outputs.plugin/Contents/Resources
//	linux:  <libdir>/libobs.so.0 -> <libdir>/obs-plugins/
//	        obs-outputs.so
//	        ../../share/obs/obs-plugins/obs-outputs
//
// StaticLocator overrides the derivation. On other platforms Locate returns
// Unsupported and only absolute module paths can load.
//
// # Native Libraries
//
// By default libobs is loaded at runtime with purego. Set OBSCTL_LIBOBS_PATH
// to the library file, or OBSCTL_LIB_DIR to its directory. Building with
// -tags obscgo (and CGO_ENABLED=1) links against libobs via pkg-config
// instead.
package obsctl
