// Package initcmder provides the init command for initializing a local
// .mendel directory in the current working directory.
package initcmder

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mendellabsco/mendel/pkg/config"
)

const (
	dirName = ".mendel"
)

const initLongDesc string = `Initialize a new .mendel/ directory in the current working directory.

Creates a local .mendel/ directory that takes precedence over the default
~/.mendel/ directory for the vector store, configuration, and credentials,
and writes a config.toml with default values if none exists.

This is useful for maintaining separate corpora per project or directory.

Examples:
  mendel init`

const initShortDesc string = "Initialize a local .mendel/ directory"

func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runInit()
		},
	}

	return cmd
}

func runInit() error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	info, err := os.Stat(dir)
	alreadyExists := err == nil && info.IsDir()

	if !alreadyExists {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating .mendel directory: %w", err)
		}
	}

	// Seed a default config.toml so the layout is discoverable.
	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if _, err := os.Stat(cfger.GetTarget()); os.IsNotExist(err) {
		if err := cfger.SaveConfig(config.NewDefaultConfig()); err != nil {
			return fmt.Errorf("writing default config: %w", err)
		}
	}

	if alreadyExists {
		fmt.Printf("Already initialized: %s\n", dir)
		return nil
	}

	fmt.Printf("Initialized .mendel directory: %s\n", dir)
	return nil
}
