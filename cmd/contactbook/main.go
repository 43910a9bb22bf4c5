// Command contactbook imports, exports and inspects a contact database
// from the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/contactbook/internal/config"
	"github.com/mmynk/contactbook/internal/service"
	"github.com/mmynk/contactbook/internal/storage"
	"github.com/mmynk/contactbook/internal/storage/sqlite"
	"github.com/mmynk/contactbook/pkg/logging"
)

var (
	configPath string
	dbPath     string
	verbose    bool
	timeout    time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "contactbook",
	Short: "Manage a contact database",
	Long: `contactbook imports vCard, spreadsheet and database files into a contact
database and exports them back out.

Phone numbers are unique: importing a contact whose phone is already
stored rejects that contact and keeps going.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logging.Setup("debug")
		} else {
			logging.Setup("warn")
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $CONTACTBOOK_CONFIG or contactbook.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database file (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Operation timeout")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(backupCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// services bundles the service layer over one store.
type services struct {
	contacts *service.ContactService
	catalog  *service.CatalogService
	transfer *service.TransferService
}

func newServices(store storage.Store) *services {
	queue := service.NewMutationQueue()
	return &services{
		contacts: service.NewContactService(store, queue),
		catalog:  service.NewCatalogService(store, queue),
		transfer: service.NewTransferService(store, queue),
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.Path(configPath))
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Storage.DBPath = dbPath
	}
	return cfg, nil
}

func openStore(cfg *config.Config) (*sqlite.SQLiteStore, error) {
	store, err := sqlite.New(cfg.Storage.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", cfg.Storage.DBPath, err)
	}
	return store, nil
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}
