package relaunch

import (
	"fmt"
	"os/exec"
	"runtime"
)

// ExecSpawner starts the updater as a detached child and releases it.
type ExecSpawner struct{}

func (ExecSpawner) Spawn(req Request) (int, error) {
	cmd := exec.Command(req.UpdaterPath)
	cmd.Args = spawnArgs(req, runtime.GOOS)
	cmd.Dir = req.Dir
	cmd.SysProcAttr = detachedAttr()

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start %s: %w", req.UpdaterPath, err)
	}

	pid := cmd.Process.Pid
	_ = cmd.Process.Release()
	return pid, nil
}

// spawnArgs returns the argv handed to exec. On Windows exec builds the
// command line itself and quotes arguments containing spaces, so argv[0] is
// passed unquoted there.
func spawnArgs(req Request, goos string) []string {
	args := req.Argv()
	if goos == "windows" {
		args[0] = req.UpdaterPath
	}
	return args
}
