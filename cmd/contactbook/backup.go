package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/contactbook/internal/backup"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Upload a database snapshot to S3",
	Long: `Upload a snapshot of the database to the bucket configured under
backup.bucket (or BACKUP_BUCKET). AWS credentials come from the standard
credential chain.`,
	Args: cobra.NoArgs,
	RunE: runBackup,
}

func runBackup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Backup.Bucket == "" {
		return fmt.Errorf("no backup bucket configured")
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := commandContext()
	defer cancel()

	client, err := backup.NewS3Client(ctx, cfg.Backup.Region)
	if err != nil {
		return err
	}
	key, err := backup.NewUploader(client, cfg.Backup.Bucket, cfg.Backup.Prefix).Upload(ctx, store)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Uploaded s3://%s/%s\n", cfg.Backup.Bucket, key)
	return nil
}
