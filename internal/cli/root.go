// Package cli implements the fieldctl command tree.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"magnetunits/internal/domain/catalogs"
	"magnetunits/internal/format"
	"magnetunits/internal/metadata"
	"magnetunits/internal/units"
	"magnetunits/pkg/logger"
)

var version = "dev"

// Config is the fieldctl configuration, read from flags, FIELDCTL_* variables
// and an optional YAML file.
type Config struct {
	Output   string   `mapstructure:"output"`
	LogLevel string   `mapstructure:"log_level"`
	Catalog  string   `mapstructure:"catalog"`
	Units    []string `mapstructure:"units"`
}

// app holds what commands share once configuration is loaded.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     Config

	log      *logger.Logger
	sys      *units.System
	registry *metadata.Registry
	loader   *format.Loader
	out      *printer
}

// NewRootCmd builds a fresh command tree. Each call has its own viper
// instance, so tests can run commands side by side.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "fieldctl",
		Short:         "Inspect physical field metadata and convert values",
		Long:          `fieldctl resolves fields of the standard catalogs by name, symbol or alias, converts values between units and inspects data-file format descriptions.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "",
		"config file (default: ~/.config/fieldctl/config.yaml)")
	root.PersistentFlags().StringP("output", "o", "text", "output format: text, json or yaml")
	root.PersistentFlags().String("log-level", "warn", "log level")
	root.PersistentFlags().String("catalog", "standard", "field catalog: standard, materials or a single catalog name")

	_ = a.v.BindPFlag("output", root.PersistentFlags().Lookup("output"))
	_ = a.v.BindPFlag("log_level", root.PersistentFlags().Lookup("log-level"))
	_ = a.v.BindPFlag("catalog", root.PersistentFlags().Lookup("catalog"))

	root.AddCommand(
		a.typesCmd(),
		a.lookupCmd(),
		a.listCmd(),
		a.convertCmd(),
		a.labelCmd(),
		a.inspectCmd(),
		a.magnetrunCmd(),
	)
	return root
}

// Execute runs fieldctl with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
}

func (a *app) init(cmd *cobra.Command) error {
	a.v.SetEnvPrefix("FIELDCTL")
	a.v.AutomaticEnv()
	a.v.SetDefault("units", []string{})

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", a.cfgFile, err)
		}
	} else if home, err := os.UserHomeDir(); err == nil {
		a.v.AddConfigPath(filepath.Join(home, ".config", "fieldctl"))
		a.v.SetConfigName("config")
		a.v.SetConfigType("yaml")
		if err := a.v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return fmt.Errorf("reading config: %w", err)
			}
		}
	}
	if err := a.v.Unmarshal(&a.cfg); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}

	log, err := logger.New(logger.Config{Level: a.cfg.LogLevel, OutputPaths: []string{"stderr"}})
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	a.log = log

	out, err := newPrinter(cmd.OutOrStdout(), a.cfg.Output)
	if err != nil {
		return err
	}
	a.out = out

	// extra definitions go into a private system, never the shared default
	a.sys = units.NewSystem()
	for _, line := range a.cfg.Units {
		if err := a.sys.Define(line); err != nil {
			return fmt.Errorf("config unit %q: %w", line, err)
		}
	}
	a.loader = format.NewLoader(a.sys, log)

	a.registry, err = buildRegistry(a.sys, a.cfg.Catalog)
	return err
}

func buildRegistry(sys *units.System, name string) (*metadata.Registry, error) {
	switch name {
	case "", "standard":
		return catalogs.StandardRegistry(sys)
	case "materials":
		return catalogs.MaterialRegistry(sys)
	}
	c, err := catalogs.ByName(name)
	if err != nil {
		return nil, err
	}
	reg := metadata.NewRegistry()
	if err := c.Register(reg, sys); err != nil {
		return nil, err
	}
	return reg, nil
}
