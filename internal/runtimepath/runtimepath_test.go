package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDir_UsesXDGRuntimeDirWhenSet(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if got != td {
		t.Fatalf("Dir() = %q, want %q", got, td)
	}
}

func TestDir_FallbacksWhenXDGRuntimeDirMissing(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if got == "" {
		t.Fatal("Dir() returned empty path")
	}

	wantRun := fmt.Sprintf("/run/user/%d", os.Getuid())
	wantTmp := fmt.Sprintf("/tmp/winsettle-runtime-%d", os.Getuid())
	if got != wantRun && got != wantTmp {
		t.Fatalf("Dir() = %q, want %q or %q", got, wantRun, wantTmp)
	}
}

func TestSocketPath(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)

	socket, err := SocketPath()
	if err != nil {
		t.Fatalf("SocketPath() error: %v", err)
	}
	if !strings.HasSuffix(socket, "/winsettle.sock") {
		t.Fatalf("SocketPath() = %q, missing suffix", socket)
	}
}

func TestGeometryStorePath(t *testing.T) {
	t.Run("xdg state home", func(t *testing.T) {
		td := t.TempDir()
		t.Setenv("XDG_STATE_HOME", td)

		got, err := GeometryStorePath()
		if err != nil {
			t.Fatalf("GeometryStorePath() error: %v", err)
		}
		want := filepath.Join(td, "winsettle", "geometry.json")
		if got != want {
			t.Fatalf("GeometryStorePath() = %q, want %q", got, want)
		}
	})

	t.Run("home fallback", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("XDG_STATE_HOME", "")
		t.Setenv("HOME", home)

		got, err := GeometryStorePath()
		if err != nil {
			t.Fatalf("GeometryStorePath() error: %v", err)
		}
		want := filepath.Join(home, ".local", "state", "winsettle", "geometry.json")
		if got != want {
			t.Fatalf("GeometryStorePath() = %q, want %q", got, want)
		}
	})
}
