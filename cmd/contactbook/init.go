package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/contactbook/internal/config"
)

var initForce bool

// initCmd writes a starter config and prepares the database.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file and create the database",
	Long: `Writes the built-in settings to the config file (see --config) and
creates the database with the default categories.

An existing config file is kept unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := config.Path(configPath)
	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	cfg := config.DefaultConfig()
	if dbPath != "" {
		cfg.Storage.DBPath = dbPath
	}
	if err := cfg.Save(path); err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := commandContext()
	defer cancel()

	created, err := newServices(store).catalog.EnsureCategories(ctx, cfg.DefaultCategories)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Wrote %s\n", path)
	fmt.Fprintf(out, "Database %s ready (%d categories created)\n", cfg.Storage.DBPath, created)
	return nil
}
