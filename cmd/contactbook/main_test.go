package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func TestImportListExport(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONTACTBOOK_CONFIG", filepath.Join(dir, "absent.yaml"))
	for _, env := range []string{"DB_PATH", "LISTEN_ADDR", "LOG_LEVEL", "BACKUP_BUCKET", "BACKUP_PREFIX"} {
		t.Setenv(env, "")
	}

	db := filepath.Join(dir, "contacts.db")
	vcf := filepath.Join(dir, "in.vcf")
	require.NoError(t, os.WriteFile(vcf, []byte("BEGIN:VCARD\nVERSION:3.0\nFN:Jane Doe\nTEL:555-1234\nBDAY:19851224\nEND:VCARD\n\nBEGIN:VCARD\nFN:Nobody\nEND:VCARD"), 0644))

	out := execute(t, "--db", db, "import", vcf)
	assert.Contains(t, out, "Imported 1 contact(s) from vcf (0 rejected, 1 skipped without phone)")

	out = execute(t, "--db", db, "list")
	assert.Contains(t, out, "Jane Doe")
	assert.Contains(t, out, "1985-12-24")

	ics := filepath.Join(dir, "birthdays.ics")
	execute(t, "--db", db, "export", "ics", "-o", ics)
	data, err := os.ReadFile(ics)
	require.NoError(t, err)
	assert.Contains(t, string(data), "DTSTART;VALUE=DATE:19851224")

	// Flags persist on the shared command tree, so the dry run goes last.
	out = execute(t, "--db", db, "import", "--dry-run", vcf)
	assert.Contains(t, out, "Would import 0 contact(s)")
	assert.Contains(t, out, "card 1: duplicate contact phone")
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "contactbook.yaml")
	t.Setenv("CONTACTBOOK_CONFIG", cfgPath)
	for _, env := range []string{"DB_PATH", "LISTEN_ADDR", "LOG_LEVEL", "BACKUP_BUCKET", "BACKUP_PREFIX"} {
		t.Setenv(env, "")
	}
	db := filepath.Join(dir, "contacts.db")

	out := execute(t, "--db", db, "init")
	assert.Contains(t, out, "Wrote "+cfgPath)
	assert.Contains(t, out, "(4 categories created)")

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), db)

	// The written config is picked up without --db.
	dbPath = ""
	out = execute(t, "list", "--category", "hod")
	assert.Contains(t, out, "NAME")

	rootCmd.SetArgs([]string{"init"})
	assert.Error(t, rootCmd.Execute(), "existing config is kept")
}
