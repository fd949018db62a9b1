package tool

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/adamancini/profup/internal/config"
)

func newTestTool(t *testing.T) (*Tool, string) {
	t.Helper()
	home := t.TempDir()
	cfg := config.Default().Tool
	cfg.Home = home
	tl, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return tl, home
}

func TestNewResolvesPaths(t *testing.T) {
	tl, home := newTestTool(t)

	if tl.Home() != home {
		t.Errorf("Home() = %s, want %s", tl.Home(), home)
	}

	wantArchive := filepath.Join(home, "update.zip")
	if got := tl.UpdateArchive(); got != wantArchive {
		t.Errorf("UpdateArchive() = %s, want %s", got, wantArchive)
	}

	wantUpdater := filepath.Join(home, "bin", "updater") + Detect().ExeExt()
	if got := tl.UpdaterExecutable(); got != wantUpdater {
		t.Errorf("UpdaterExecutable() = %s, want %s", got, wantUpdater)
	}

	wantMain := filepath.Join(home, "bin", "workbench") + Detect().ExeExt()
	if got := tl.MainExecutable(); got != wantMain {
		t.Errorf("MainExecutable() = %s, want %s", got, wantMain)
	}
}

func TestNewUsesHomeEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)

	tl, err := New(config.Default().Tool)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if tl.Home() != dir {
		t.Errorf("Home() = %s, want %s", tl.Home(), dir)
	}
}

func TestHomeFromEnvFallback(t *testing.T) {
	home := t.TempDir()
	t.Setenv(HomeEnv, "")
	t.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", home)
	}

	got, err := HomeFromEnv()
	if err != nil {
		t.Fatalf("HomeFromEnv() error = %v", err)
	}
	if want := filepath.Join(home, ".profup", "tool"); got != want {
		t.Errorf("HomeFromEnv() = %s, want %s", got, want)
	}
}

func TestProfileVersion(t *testing.T) {
	tests := []struct {
		name    string
		content *string
		want    int
	}{
		{"missing file", nil, UnknownProfileVersion},
		{"plain", strPtr("42"), 42},
		{"trailing newline", strPtr("17\n"), 17},
		{"garbage", strPtr("v42"), UnknownProfileVersion},
		{"negative", strPtr("-3"), UnknownProfileVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl, home := newTestTool(t)
			if tt.content != nil {
				path := filepath.Join(home, "profiles", "version")
				if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
					t.Fatal(err)
				}
				if err := os.WriteFile(path, []byte(*tt.content), 0644); err != nil {
					t.Fatal(err)
				}
			}
			if got := tl.ProfileVersion(); got != tt.want {
				t.Errorf("ProfileVersion() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPlatformExecutablePath(t *testing.T) {
	tests := []struct {
		name string
		p    Platform
		path string
		want string
	}{
		{"linux unchanged", Platform{OS: "linux", Arch: "amd64"}, "/opt/bin/updater", "/opt/bin/updater"},
		{"darwin unchanged", Platform{OS: "darwin", Arch: "arm64"}, "/opt/bin/updater", "/opt/bin/updater"},
		{"windows adds exe", Platform{OS: "windows", Arch: "amd64"}, `C:\tool\bin\updater`, `C:\tool\bin\updater.exe`},
		{"windows keeps exe", Platform{OS: "windows", Arch: "amd64"}, `C:\tool\bin\updater.EXE`, `C:\tool\bin\updater.EXE`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.ExecutablePath(tt.path); got != tt.want {
				t.Errorf("ExecutablePath() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetect(t *testing.T) {
	p := Detect()
	if p.OS != runtime.GOOS {
		t.Errorf("OS mismatch: got %s, want %s", p.OS, runtime.GOOS)
	}
	if p.Arch != runtime.GOARCH {
		t.Errorf("Arch mismatch: got %s, want %s", p.Arch, runtime.GOARCH)
	}
}

func strPtr(s string) *string { return &s }
