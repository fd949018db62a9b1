//go:build !windows

package relaunch

import "syscall"

// detachedAttr puts the updater in its own session so it outlives us.
func detachedAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}
