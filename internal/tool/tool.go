// Package tool resolves paths inside the local tool installation.
package tool

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adamancini/profup/internal/config"
)

// UnknownProfileVersion is reported when the installed profile version
// cannot be determined. The service treats it as "unknown".
const UnknownProfileVersion = -1

// HomeEnv overrides the tool home directory when the config leaves it empty.
const HomeEnv = "PROFUP_HOME"

// Tool is a resolved tool installation.
type Tool struct {
	home          string
	mainBinary    string
	updaterBinary string
	archiveName   string
	versionFile   string
	platform      Platform
}

// New resolves the installation described by cfg.
func New(cfg config.ToolConfig) (*Tool, error) {
	home := cfg.Home
	if home == "" {
		var err error
		home, err = HomeFromEnv()
		if err != nil {
			return nil, err
		}
	}

	abs, err := filepath.Abs(home)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tool home %s: %w", home, err)
	}

	return &Tool{
		home:          abs,
		mainBinary:    cfg.MainBinary,
		updaterBinary: cfg.UpdaterBinary,
		archiveName:   cfg.ArchiveName,
		versionFile:   cfg.VersionFile,
		platform:      Detect(),
	}, nil
}

// HomeFromEnv returns $PROFUP_HOME, falling back to ~/.profup/tool.
func HomeFromEnv() (string, error) {
	if env := os.Getenv(HomeEnv); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".profup", "tool"), nil
}

// Home returns the absolute tool home directory.
func (t *Tool) Home() string {
	return t.home
}

// Binary returns the absolute path of an executable given relative to home.
func (t *Tool) Binary(rel string) string {
	return t.platform.ExecutablePath(t.path(rel))
}

// MainExecutable returns the application executable the updater restarts.
func (t *Tool) MainExecutable() string {
	return t.Binary(t.mainBinary)
}

// UpdaterExecutable returns the external updater helper.
func (t *Tool) UpdaterExecutable() string {
	return t.Binary(t.updaterBinary)
}

// UpdateArchive returns where downloaded update archives are written.
func (t *Tool) UpdateArchive() string {
	return t.path(t.archiveName)
}

// ProfileVersion returns the installed device-profile version, or
// UnknownProfileVersion when the version file is missing or malformed.
func (t *Tool) ProfileVersion() int {
	content, err := os.ReadFile(t.path(t.versionFile))
	if err != nil {
		return UnknownProfileVersion
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil || v < 0 {
		return UnknownProfileVersion
	}
	return v
}

func (t *Tool) path(rel string) string {
	return filepath.Join(t.home, filepath.FromSlash(rel))
}
