package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validZone = `$ORIGIN example.test.
$TTL 300
@   IN SOA ns1.example.test. hostmaster.example.test. 1 3600 600 86400 300
    IN NS  ns1.example.test.
ns1 IN A   192.0.2.1
`

func writeTempZone(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "example.zone")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing temp zone: %v", err)
	}
	return path
}

func TestCheckCmd_ValidFile(t *testing.T) {
	path := writeTempZone(t, validZone)
	configPath := ""

	cmd := newCheckCmd(&configPath)
	cmd.SetArgs([]string{path})
	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.Contains(out.String(), "OK:") {
		t.Errorf("output = %q, want it to contain OK:", out.String())
	}
}

func TestCheckCmd_MissingPath(t *testing.T) {
	configPath := ""
	cmd := newCheckCmd(&configPath)
	cmd.SetArgs([]string{})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.Execute()
	if err == nil {
		t.Fatal("Execute() error = nil, want error for missing path")
	}
	assertExitCode(t, err, 2)
}

func TestCheckCmd_InvalidZoneFailsWithExit2(t *testing.T) {
	path := writeTempZone(t, "$ORIGIN not-a-fqdn\nbroken line with no rdata\n")
	configPath := ""
	cmd := newCheckCmd(&configPath)
	cmd.SetArgs([]string{path})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.Execute()
	if err == nil {
		t.Fatal("Execute() error = nil, want validation error")
	}
	assertExitCode(t, err, 2)
}

func assertExitCode(t *testing.T, err error, want int) {
	t.Helper()
	ce, ok := asCliError(err)
	if !ok {
		t.Fatalf("error %v is not a *cliError", err)
	}
	if ce.code != want {
		t.Errorf("exit code = %d, want %d", ce.code, want)
	}
}

func asCliError(err error) (*cliError, bool) {
	ce, ok := err.(*cliError)
	return ce, ok
}
