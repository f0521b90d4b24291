// Command obsctl drives a libobs RTMP output from the command line or over a
// small HTTP control API.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/thesyncim/obsctl/internal/config"
	xlog "github.com/thesyncim/obsctl/internal/log"
)

// app carries state resolved by the root command for its subcommands.
type app struct {
	configPath string
	envFile    string
	cfg        config.Config
	logger     zerolog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "obsctl",
		Short:         "Control a libobs RTMP push output",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before the environment is read")

	root.AddCommand(newServeCmd(a), newModulesCmd(a), newProbeCmd(a))
	return root
}

// setup loads the dotenv file, the configuration and the logger.
func (a *app) setup() error {
	if err := loadDotEnv(a.envFile); err != nil {
		return fmt.Errorf("load %s: %w", a.envFile, err)
	}

	bootstrap := zerolog.New(os.Stderr).Level(zerolog.WarnLevel)
	cfg, err := config.NewLoader(a.configPath, bootstrap).Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	xlog.Configure(xlog.Config{Level: cfg.Log.Level, Console: cfg.Log.Console})
	a.logger = xlog.WithComponent("cli")
	a.logger.Debug().Object("config", cfg).Msg("configuration loaded")
	return nil
}

// loadDotEnv loads environment variables from path. A missing file is not an
// error; variables already set win.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
