package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/contactbook/internal/codec"
	"github.com/mmynk/contactbook/internal/reconcile"
	"github.com/mmynk/contactbook/internal/service"
	"github.com/mmynk/contactbook/internal/storage/memory"
)

var (
	importFormat       string
	importDryRun       bool
	importCreateFields bool
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import contacts from a vcf, xlsx, csv or db file",
	Long: `Import contacts from a file. The format comes from the file extension
unless --format is given. Use "-" to read standard input.

Contacts without a phone are skipped. Contacts whose phone is already
stored, or repeated earlier in the file, are rejected and listed.
A .db file replaces the whole database.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "", "Input format: vcf, xlsx, csv or db")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Report what would be imported without writing")
	importCmd.Flags().BoolVar(&importCreateFields, "create-fields", false, "Create custom fields for unknown spreadsheet columns")
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]

	var format codec.Format
	var err error
	switch {
	case importFormat != "":
		format, err = codec.ParseFormat(importFormat)
	case path == "-":
		err = fmt.Errorf("--format is required when reading standard input")
	default:
		format, err = codec.FormatFromFilename(path)
	}
	if err != nil {
		return err
	}
	if !format.Importable() {
		return fmt.Errorf("%s files cannot be imported", format)
	}
	if importDryRun && format == codec.FormatSnapshot {
		return fmt.Errorf("--dry-run is not supported for database files")
	}

	var in io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := commandContext()
	defer cancel()

	svc := newServices(store)
	if importDryRun {
		scratch, err := memory.CopyOf(ctx, store)
		if err != nil {
			return err
		}
		svc = newServices(scratch)
	}

	summary, err := svc.transfer.Import(ctx, format, in, service.ImportOptions{CreateFields: importCreateFields})
	if summary != nil {
		printSummary(cmd.OutOrStdout(), summary, importDryRun)
	}
	return err
}

func printSummary(w io.Writer, s *reconcile.Summary, dryRun bool) {
	verb := "Imported"
	if dryRun {
		verb = "Would import"
	}
	fmt.Fprintf(w, "%s %d contact(s) from %s (%d rejected, %d skipped without phone)\n",
		verb, s.Admitted, s.Format, len(s.Rejected), s.Skipped)
	for _, rej := range s.Rejected {
		fmt.Fprintf(w, "  %s: %s\n", rej.Ref, rej.Reason)
	}
}
