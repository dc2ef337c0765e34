package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ytcs/internal/config"
	"ytcs/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	binDir     string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	configPath := filepath.Join(homeDir, ".config", "ytcs", "config.toml")
	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    testsupport.BaseDir(cfg),
		binDir:     filepath.Join(testsupport.BaseDir(cfg), "bin"),
	}
}

// isolatePath limits PATH to the stub directory so host binaries are not found.
func (e *cliTestEnv) isolatePath(t *testing.T) {
	t.Helper()
	t.Setenv("PATH", e.binDir)
}

func (e *cliTestEnv) writeStub(t *testing.T, name, script string) {
	t.Helper()
	testsupport.WriteExecutable(t, e.binDir, name, script)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func removeStub(env *cliTestEnv, name string) error {
	return os.Remove(filepath.Join(env.binDir, name))
}
