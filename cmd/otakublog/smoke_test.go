//go:build smoke

package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

// TestSmoke_ContactLifecycle exercises the built binary end-to-end against a
// file backend in a scratch directory.
//
// Subtests run sequentially and depend on the first subtest building the binary.
func TestSmoke_ContactLifecycle(t *testing.T) {
	projectRoot := findProjectRoot(t)
	work := t.TempDir()
	binary := filepath.Join(work, "otakublog")

	run := func(t *testing.T, args ...string) (string, error) {
		t.Helper()
		cmd := exec.Command(binary, args...)
		cmd.Dir = work
		cmd.Env = append(os.Environ(), "HOME="+work, "OTAKUBLOG_LOG_LEVEL=off")
		out, err := cmd.CombinedOutput()
		return string(out), err
	}

	t.Run("go build produces an otakublog binary", func(t *testing.T) {
		cmd := exec.Command("go", "build",
			"-ldflags", "-X main.version=smoke-test -X main.commit=abc1234 -X main.date=2026-01-01",
			"-o", binary, "./cmd/otakublog")
		cmd.Dir = projectRoot
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("go build failed: %v\n%s", err, out)
		}
	})

	t.Run("version prints version commit and date", func(t *testing.T) {
		out, _ := run(t, "--version")
		for _, want := range []string{"smoke-test", "abc1234", "2026-01-01"} {
			if !strings.Contains(out, want) {
				t.Errorf("version output = %q, want to contain %q", out, want)
			}
		}
	})

	var id string
	t.Run("add then list shows the contact", func(t *testing.T) {
		out, err := run(t, "add",
			"--first-name", "Aya", "--last-name", "Sato", "--email", "aya@example.com",
			"--mobile", "1234567890", "--gender", "female", "--lang", "english",
			"--date", "2001-04-03", "--address", "123 Main Street")
		if err != nil {
			t.Fatalf("add failed: %v\n%s", err, out)
		}
		m := regexp.MustCompile(`Added Aya Sato \(([0-9a-f-]+)\)`).FindStringSubmatch(out)
		if m == nil {
			t.Fatalf("add output = %q", out)
		}
		id = m[1]

		out, err = run(t, "list")
		if err != nil || !strings.Contains(out, id) {
			t.Errorf("list after add: %v\n%s", err, out)
		}
	})

	t.Run("invalid add exits 1", func(t *testing.T) {
		out, err := run(t, "add", "--first-name", "A")
		exitErr, ok := err.(*exec.ExitError)
		if !ok || exitErr.ExitCode() != exitFailure {
			t.Fatalf("err = %v, want exit %d\n%s", err, exitFailure, out)
		}
		if !strings.Contains(out, "First Name must be at least 2 characters") {
			t.Errorf("output = %q", out)
		}
	})

	t.Run("show prints the resume", func(t *testing.T) {
		out, err := run(t, "show", id)
		if err != nil || !strings.Contains(out, "Personal Information") {
			t.Errorf("show: %v\n%s", err, out)
		}
	})

	t.Run("delete removes the contact", func(t *testing.T) {
		if out, err := run(t, "delete", id); err != nil {
			t.Fatalf("delete: %v\n%s", err, out)
		}
		out, _ := run(t, "list")
		if !strings.Contains(out, "No contacts yet.") {
			t.Errorf("list after delete = %q", out)
		}
	})

	t.Run("ui refuses to start without a terminal", func(t *testing.T) {
		_, err := run(t, "ui")
		exitErr, ok := err.(*exec.ExitError)
		if !ok || exitErr.ExitCode() != exitSetup {
			t.Errorf("err = %v, want exit %d", err, exitSetup)
		}
	})
}
