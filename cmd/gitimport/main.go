// Command gitimport imports a source repository into local git storage and
// registers it as a project on the destination git server.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/NicabarNimble/go-gitimport/internal/config"
	"github.com/NicabarNimble/go-gitimport/internal/errors"
	"github.com/NicabarNimble/go-gitimport/internal/log"
)

// exitAlreadyExists is returned when the target was imported before.
const exitAlreadyExists = 2

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "gitimport",
		Short: "Import git repositories into local storage",
		Long: `A tool for importing repositories: it creates the project on the destination
git server and mirrors every ref of the source repository into local storage.

Configuration is read from an optional TOML file and GITIMPORT_* environment
variables. Source credentials are read from GIT_TOKEN_<KEY>.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a TOML configuration file")

	cmd.AddCommand(
		newRunCmd(opts),
		newRefsCmd(opts),
		newTokenCmd(opts),
	)
	return cmd
}

// loadConfig reads and validates the configuration and installs the logger.
func loadConfig(opts *rootOptions) (*config.Config, io.Closer, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	closer, err := log.Setup(log.Options{
		Level:    cfg.Log.Level,
		Encoding: cfg.Log.Encoding,
		File:     cfg.Log.File,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	return cfg, closer, nil
}

func exitCode(err error) int {
	if errors.IsAlreadyExists(err) {
		return exitAlreadyExists
	}
	return 1
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}
