package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thesyncim/obsctl"
)

func newModulesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "modules",
		Short: "Show where the output module would be loaded from",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := obsctl.NewEngine()
			if err != nil {
				a.logger.Warn().Err(err).Str("event", "engine.unavailable").Msg("libobs not loaded; using executable layout")
			}
			return a.describeModules(cmd.OutOrStdout(), eng)
		},
	}
}

// describeModules prints the resolved modules directory and module paths.
// A nil engine falls back to locating relative to the executable.
func (a *app) describeModules(w io.Writer, eng obsctl.Engine) error {
	opts := a.cfg.SessionOptions(a.logger)
	locator := opts.Locator
	source := "static"
	if locator == nil {
		if eng != nil {
			locator = obsctl.SymbolLocator{Engine: eng, Layout: opts.Layout}
			source = "symbol"
		} else {
			locator = obsctl.ExecutableLocator{Layout: opts.Layout}
			source = "executable"
		}
	}

	dir := locator.Locate()
	fmt.Fprintf(w, "libobs:      %s %s\n", orNone(obsctl.LibobsPath()), obsctl.LibobsVersion())
	fmt.Fprintf(w, "locator:     %s\n", source)
	if dir == obsctl.Unsupported {
		fmt.Fprintln(w, "modules dir: unsupported on this platform")
	} else {
		fmt.Fprintf(w, "modules dir: %s\n", dir)
	}

	mod := opts.Layout.Module.Resolve(dir)
	fmt.Fprintf(w, "module:      %s\n", mod.Name)
	fmt.Fprintf(w, "  binary:    %s%s\n", mod.BinaryPath, presence(mod.BinaryPath))
	fmt.Fprintf(w, "  data:      %s%s\n", mod.DataPath, presence(mod.DataPath))
	if m, ok := obsctl.ModuleForOutputType(opts.OutputType); ok {
		fmt.Fprintf(w, "output:      %s (from %s)\n", opts.OutputType, m)
	} else {
		fmt.Fprintf(w, "output:      %s (unknown module)\n", opts.OutputType)
	}
	return nil
}

func presence(path string) string {
	if path == "" {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return " (missing)"
	}
	return ""
}

func orNone(s string) string {
	if s == "" {
		return "(not found)"
	}
	return s
}
