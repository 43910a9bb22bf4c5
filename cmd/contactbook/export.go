package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/contactbook/internal/codec"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export all contacts as vcf, xlsx, csv, ics or db",
	Long: `Export every contact. ics writes a calendar with a yearly event per
birthday. The default output file is named after the format; use -o -
for standard output.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default depends on format)")
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := codec.ParseFormat(args[0])
	if err != nil {
		return err
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

	path := exportOutput
	if path == "" {
		path = format.Filename()
	}

	var out io.Writer = cmd.OutOrStdout()
	var f *os.File
	if path != "-" {
		// Create lazily so a failed export leaves no empty file behind.
		out = writerFunc(func(p []byte) (int, error) {
			if f == nil {
				var err error
				if f, err = os.Create(path); err != nil {
					return 0, err
				}
			}
			return f.Write(p)
		})
	}

	result, err := newServices(store).transfer.Export(ctx, format, out)
	if f != nil {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return err
	}

	if path != "-" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d contact(s) to %s\n", result.Records, path)
	}
	return nil
}

type writerFunc func(p []byte) (int, error)

func (fn writerFunc) Write(p []byte) (int, error) { return fn(p) }
