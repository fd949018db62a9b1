package tool

import (
	"runtime"
	"strings"
)

// Platform describes the current system platform
type Platform struct {
	OS   string // Operating system (darwin, linux, windows)
	Arch string // Architecture (amd64, arm64)
}

// Detect returns the current platform (OS and architecture)
func Detect() Platform {
	return Platform{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
	}
}

// ExeExt returns the executable suffix for this platform
func (p Platform) ExeExt() string {
	if p.OS == "windows" {
		return ".exe"
	}
	return ""
}

// ExecutablePath appends the executable suffix unless path already has it
func (p Platform) ExecutablePath(path string) string {
	ext := p.ExeExt()
	if ext == "" || strings.HasSuffix(strings.ToLower(path), ext) {
		return path
	}
	return path + ext
}

// String returns "os/arch".
func (p Platform) String() string {
	return p.OS + "/" + p.Arch
}
