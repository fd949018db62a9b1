// Package relaunch hands the installation over to the external updater: it
// spawns the updater with this process's identity and asks the host to exit.
package relaunch

import (
	"context"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// ReasonUpdaterNotFound is reported when either executable is missing.
const ReasonUpdaterNotFound = "updater not found"

// Installation locates the executables of the local tool install.
type Installation interface {
	Home() string
	MainExecutable() string
	UpdaterExecutable() string
}

// CommandKind identifies a message sent to the host.
type CommandKind string

// ShutdownRequested asks the host to close its event loop and exit.
const ShutdownRequested CommandKind = "shutdown-requested"

// HostCommand is delivered on the host-owned command channel.
type HostCommand struct {
	Kind CommandKind
	// UpdaterPID is the spawned updater's process id, or 0 if unknown.
	UpdaterPID int
}

// Request describes one updater launch.
type Request struct {
	UpdaterPath string
	PID         int
	TargetPath  string
	Dir         string
}

// Argv returns the updater command line: the quoted updater path, the pid the
// updater waits on, and the executable to start once it is done.
func (r Request) Argv() []string {
	return []string{EnsureQuoted(r.UpdaterPath), strconv.Itoa(r.PID), r.TargetPath}
}

// RelaunchError reports that the updater could not be started.
type RelaunchError struct {
	Path   string
	Reason string
	Err    error
}

func (e *RelaunchError) Error() string {
	msg := e.Reason
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RelaunchError) Unwrap() error {
	return e.Err
}

// Spawner starts a process described by a Request without waiting for it.
// It returns the new process id.
type Spawner interface {
	Spawn(req Request) (int, error)
}

// Coordinator performs the relaunch sequence.
type Coordinator struct {
	install Installation
	host    chan<- HostCommand
	spawner Spawner
	pid     int
	logger  *log.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithSpawner replaces the process spawner.
func WithSpawner(s Spawner) Option {
	return func(c *Coordinator) { c.spawner = s }
}

// WithPID overrides the process id passed to the updater.
func WithPID(pid int) Option {
	return func(c *Coordinator) { c.pid = pid }
}

// WithLogger sets the coordinator's logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// NewCoordinator creates a coordinator for install. A successful relaunch
// sends ShutdownRequested on host.
func NewCoordinator(install Installation, host chan<- HostCommand, opts ...Option) *Coordinator {
	c := &Coordinator{
		install: install,
		host:    host,
		spawner: ExecSpawner{},
		pid:     os.Getpid(),
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Relaunch spawns the updater and requests host shutdown.
//
// When either executable is missing it returns a *RelaunchError and spawns
// nothing. A spawn failure is returned and, unlike a successful spawn, no
// shutdown is requested, so the host keeps running without an updater. It is
// not retried.
//
// Once the updater is running Relaunch returns nil. The HostCommand is
// delivered on its own goroutine, so a host that reads its channel only after
// Relaunch returns still receives it; delivery is abandoned when ctx ends.
func (c *Coordinator) Relaunch(ctx context.Context) error {
	target := c.install.MainExecutable()
	updater := c.install.UpdaterExecutable()

	for _, p := range []string{target, updater} {
		if !isFile(p) {
			c.logger.Error("updater not found", "path", p)
			return &RelaunchError{Path: p, Reason: ReasonUpdaterNotFound}
		}
	}

	req := Request{
		UpdaterPath: updater,
		PID:         c.pid,
		TargetPath:  target,
		Dir:         c.install.Home(),
	}

	c.logger.Info("starting updater", "path", updater, "pid", req.PID)
	childPID, err := c.spawner.Spawn(req)
	if err != nil {
		return &RelaunchError{Path: updater, Reason: "failed to start updater", Err: err}
	}

	go c.requestShutdown(ctx, HostCommand{Kind: ShutdownRequested, UpdaterPID: childPID})
	return nil
}

func (c *Coordinator) requestShutdown(ctx context.Context, cmd HostCommand) {
	select {
	case c.host <- cmd:
		c.logger.Debug("host shutdown requested", "updater_pid", cmd.UpdaterPID)
	case <-ctx.Done():
		c.logger.Warn("host did not accept shutdown request", "updater_pid", cmd.UpdaterPID, "err", ctx.Err())
	}
}

// EnsureQuoted wraps s in double quotes if it contains a space and is not
// already quoted.
func EnsureQuoted(s string) string {
	if !strings.Contains(s, " ") {
		return s
	}
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s
	}
	return `"` + s + `"`
}

func isFile(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IsRelaunchError reports whether err is a *RelaunchError.
func IsRelaunchError(err error) bool {
	var re *RelaunchError
	return errors.As(err, &re)
}
