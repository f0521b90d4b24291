package obsctl

import (
	"os"
	"path/filepath"
	"strings"
)

// Unsupported is returned by Locate when the modules directory cannot be
// derived on this platform. Callers treat it as "no modules available".
const Unsupported = ""

// Locator resolves the directory holding the engine's output modules.
type Locator interface {
	Locate() string
}

// Layout describes where modules live relative to an anchor image and how a
// module's binary and data paths are laid out inside the modules directory.
type Layout struct {
	// ModulesOffset is joined to the directory of the anchor image.
	ModulesOffset string
	// Module is the output module loaded at bring-up.
	Module ModuleDescriptor
}

// ModuleDescriptor names a module and its paths relative to the modules
// directory. Absolute paths are used as-is.
type ModuleDescriptor struct {
	Name       string
	BinaryPath string
	DataPath   string
}

// Resolve returns the descriptor with paths anchored at modulesDir.
func (d ModuleDescriptor) Resolve(modulesDir string) ModuleDescriptor {
	return ModuleDescriptor{
		Name:       d.Name,
		BinaryPath: anchor(modulesDir, d.BinaryPath),
		DataPath:   anchor(modulesDir, d.DataPath),
	}
}

func anchor(dir, p string) string {
	if p == "" || filepath.IsAbs(p) || dir == Unsupported {
		return p
	}
	return filepath.Join(dir, p)
}

// ModulesDirFor derives the modules directory from an image path: the file
// name is stripped and the layout offset appended. The result is cleaned and
// keeps a trailing separator. An empty image path yields Unsupported.
func ModulesDirFor(imagePath string, layout Layout) string {
	if imagePath == "" {
		return Unsupported
	}
	dir := filepath.Join(filepath.Dir(imagePath), layout.ModulesOffset)
	if !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}
	return dir
}

// SymbolLocator derives the modules directory from the image that exports
// the engine's startup symbol.
type SymbolLocator struct {
	Engine Engine
	Layout Layout
}

// Locate implements Locator.
func (l SymbolLocator) Locate() string {
	if l.Engine == nil {
		return Unsupported
	}
	image, err := l.Engine.SymbolImage()
	if err != nil {
		return Unsupported
	}
	return ModulesDirFor(image, l.Layout)
}

// ExecutableLocator derives the modules directory from the running
// executable's own path.
type ExecutableLocator struct {
	Layout Layout
}

// Locate implements Locator.
func (l ExecutableLocator) Locate() string {
	exe, err := os.Executable()
	if err != nil {
		return Unsupported
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return ModulesDirFor(exe, l.Layout)
}

// StaticLocator returns a fixed, configured directory.
type StaticLocator string

// Locate implements Locator.
func (l StaticLocator) Locate() string {
	if l == "" {
		return Unsupported
	}
	dir := filepath.Clean(string(l))
	if !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}
	return dir
}
