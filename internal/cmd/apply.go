package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/adamancini/profup/internal/interactive"
	"github.com/adamancini/profup/internal/relaunch"
)

// spawner starts the updater; tests replace it.
var spawner relaunch.Spawner = relaunch.ExecSpawner{}

func newApplyCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Hand over to the updater to install a downloaded update",
		Long: `Apply starts the installation's updater, passing it this process id and the
main executable, and then exits so the updater can replace the installation.

Without --yes, apply asks for confirmation and refuses to run when stdin is
not a terminal.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			return runApply(cmd.Context(), e, yes, cmd.InOrStdin(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

// applyResult reports a started updater.
type applyResult struct {
	Updater    string `json:"updater" yaml:"updater"`
	UpdaterPID int    `json:"updater_pid" yaml:"updater_pid"`
}

func (r applyResult) String() string {
	return fmt.Sprintf("Started %s (pid %d); exiting so it can apply the update.", r.Updater, r.UpdaterPID)
}

func runApply(ctx context.Context, e *env, yes bool, stdin io.Reader, stderr io.Writer) error {
	res, err := applyUpdate(ctx, e, yes, stdin, stderr)
	if err != nil || res == nil {
		return err
	}
	return e.out.Write(*res)
}

// applyUpdate confirms and relaunches through the updater. It returns nil and
// no error when the user declines.
func applyUpdate(ctx context.Context, e *env, yes bool, stdin io.Reader, stderr io.Writer) (*applyResult, error) {
	if !yes {
		if f, ok := stdin.(*os.File); ok && !interactive.IsTerminalFile(f) {
			return nil, fmt.Errorf("refusing to restart without --yes when stdin is not a terminal")
		}
		p := interactive.NewPrompterWithIO(stdin, stderr)
		if !p.Confirm("Restart %s through the updater now?", e.tool.MainExecutable()) {
			e.say(stderr, "Aborted.")
			return nil, nil
		}
	}

	// This process is the host: it owns the channel and exits once asked.
	host := make(chan relaunch.HostCommand, 1)
	coordinator := relaunch.NewCoordinator(e.tool, host,
		relaunch.WithSpawner(spawner),
		relaunch.WithLogger(e.logger),
	)

	if err := coordinator.Relaunch(ctx); err != nil {
		var re *relaunch.RelaunchError
		if errors.As(err, &re) && re.Reason == relaunch.ReasonUpdaterNotFound {
			e.say(stderr, "The installation at %s looks incomplete; reinstall it to restore the updater.", e.tool.Home())
		}
		return nil, err
	}

	msg := <-host
	e.logger.Debug("host command received", "kind", msg.Kind)
	return &applyResult{Updater: e.tool.UpdaterExecutable(), UpdaterPID: msg.UpdaterPID}, nil
}
