package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func resetInferFlags() {
	inferConfigPath = ""
	inferIndexURL = ""
	inferOffline = false
	inferJSON = false
	inferQuiet = false
	inferWrite = false
	inferInstall = false
	inferDryRun = false
	inferParseJobs = 0
	inferLookupJobs = 0
	verbose = false
}

func TestInferCmdMetadata(t *testing.T) {
	if inferCmd.Use != "infer <directory>" {
		t.Errorf("expected Use='infer <directory>', got %q", inferCmd.Use)
	}
	if !inferCmd.SilenceUsage {
		t.Error("infer command should have SilenceUsage=true")
	}
}

func TestInferCmdRequiresExactlyOneArg(t *testing.T) {
	if err := inferCmd.Args(inferCmd, []string{}); err == nil {
		t.Error("infer should require exactly 1 argument, got no error for 0 args")
	}
	if err := inferCmd.Args(inferCmd, []string{"a"}); err != nil {
		t.Errorf("infer should accept exactly 1 argument, got error: %v", err)
	}
}

func TestInferCmdFlagsRegistered(t *testing.T) {
	for _, name := range []string{"config", "index-url", "offline", "json", "quiet", "write", "install", "dry-run", "parse-workers", "lookup-workers"} {
		if inferCmd.Flags().Lookup(name) == nil {
			t.Errorf("expected --%s flag to be registered on infer", name)
		}
	}
}

func TestInferRunE_InvalidDir(t *testing.T) {
	resetInferFlags()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"infer", "/nonexistent/path/xyz", "--offline", "--quiet"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected error for non-existent directory")
	}
}

func TestInferRunE_ReportsResolvedDependency(t *testing.T) {
	resetInferFlags()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "app.py"), []byte("import requests\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"infer", dir, "--offline", "--quiet"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("infer should succeed, got: %v", err)
	}
	if !strings.Contains(buf.String(), "requests") {
		t.Errorf("expected output to mention requests, got: %s", buf.String())
	}
}

func TestInferRunE_JSONOutputIsValid(t *testing.T) {
	resetInferFlags()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "app.py"), []byte("import requests\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"infer", dir, "--offline", "--quiet", "--json"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("infer should succeed, got: %v", err)
	}

	var report inferJSONReport
	if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
		t.Fatalf("expected valid JSON output, got error %v for: %s", err, buf.String())
	}
	found := false
	for _, d := range report.Dependencies {
		if d == "requests" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected requests in JSON dependencies, got: %v", report.Dependencies)
	}
}

func TestInferRunE_WriteMergesIntoManifest(t *testing.T) {
	resetInferFlags()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "app.py"), []byte("import requests\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"infer", dir, "--offline", "--quiet", "--write"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("infer --write should succeed, got: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "pyproject.toml"))
	if err != nil {
		t.Fatalf("expected pyproject.toml to be written: %v", err)
	}
	if !strings.Contains(string(data), "requests") {
		t.Errorf("expected pyproject.toml to declare requests, got: %s", data)
	}
}

func TestInferRunE_EmptyProjectReportsNoDependencies(t *testing.T) {
	resetInferFlags()
	dir := t.TempDir()

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"infer", dir, "--offline", "--quiet"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("infer of an empty dir should succeed, got: %v", err)
	}
	if !strings.Contains(buf.String(), "no third-party dependencies found") {
		t.Errorf("expected empty-project message, got: %s", buf.String())
	}
}
