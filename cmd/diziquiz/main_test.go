package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okalkan/diziquiz/internal/config"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestIdentityCommandsFollowBackendFlag(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	if _, err := runCommand(t, "login", "ayse", "--backend", "sqlite"); err != nil {
		t.Fatalf("login: %v", err)
	}

	out, err := runCommand(t, "whoami", "--backend", "sqlite")
	if err != nil {
		t.Fatalf("whoami on the login backend: %v", err)
	}
	if !strings.Contains(out, "ayse") {
		t.Fatalf("whoami output missing username: %q", out)
	}

	// The file backend holds no identity; the two backends are distinct.
	if _, err := runCommand(t, "whoami", "--backend", "file"); err == nil {
		t.Fatalf("expected whoami on the file backend to fail")
	}

	if _, err := runCommand(t, "logout", "--backend", "sqlite"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := runCommand(t, "whoami", "--backend", "sqlite"); err == nil {
		t.Fatalf("expected whoami to fail after logout")
	}
}

func TestConfigOverlayPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[quiz]\ntimer = 45\nbackend = \"sqlite\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	fileCfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	// File value beats the default when the flag is untouched.
	cmd := newRootCmd()
	applyIntConfig(cmd, "timer", &playTimer, fileCfg.Quiz.Timer)
	if playTimer != 45 {
		t.Fatalf("expected file value 45, got %d", playTimer)
	}
	applyStringConfig(cmd, "backend", &playBackend, fileCfg.Quiz.Backend)
	if playBackend != "sqlite" {
		t.Fatalf("expected file value sqlite, got %q", playBackend)
	}

	// An explicitly set flag beats the file value.
	cmd = newRootCmd()
	if err := cmd.Flags().Set("timer", "50"); err != nil {
		t.Fatalf("set timer flag: %v", err)
	}
	applyIntConfig(cmd, "timer", &playTimer, fileCfg.Quiz.Timer)
	if playTimer != 50 {
		t.Fatalf("expected flag value 50, got %d", playTimer)
	}
	if err := cmd.Flags().Set("backend", "file"); err != nil {
		t.Fatalf("set backend flag: %v", err)
	}
	applyStringConfig(cmd, "backend", &playBackend, fileCfg.Quiz.Backend)
	if playBackend != "file" {
		t.Fatalf("expected flag value file, got %q", playBackend)
	}

	// An absent file value leaves the default in place.
	cmd = newRootCmd()
	applyStringConfig(cmd, "questions", &playQuestions, fileCfg.Quiz.Questions)
	if playQuestions != "" {
		t.Fatalf("expected default questions path, got %q", playQuestions)
	}
}
