package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/adamancini/profup/internal/update"
)

// updateResult is the single document written by `profup update`.
type updateResult struct {
	Check    checkResult     `json:"check" yaml:"check"`
	Download *update.Outcome `json:"download,omitempty" yaml:"download,omitempty"`
	Apply    *applyResult    `json:"apply,omitempty" yaml:"apply,omitempty"`
}

// String renders the steps after the check; the check itself is shown before
// the download starts.
func (r updateResult) String() string {
	if r.Download == nil {
		return r.Check.String()
	}
	lines := []string{r.Download.String()}
	if r.Apply != nil {
		lines = append(lines, r.Apply.String())
	}
	return strings.Join(lines, "\n")
}

func newUpdateCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Check, download and apply a device profile update",
		Long: `Update runs the whole cycle: check for an update, show the update notice,
download the archive and hand over to the updater.

Examples:
  profup update          # Confirm before restarting
  profup update --yes    # Unattended`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			stderr := cmd.ErrOrStderr()

			check, err := runCheck(ctx, e, true)
			if err != nil {
				return err
			}
			res := updateResult{Check: check}
			if !check.Available {
				return e.out.Write(res)
			}
			e.say(cmd.OutOrStdout(), "%s", check)

			outcome, err := fetchArchive(ctx, e, "", stderr)
			if outcome.Status != "" {
				res.Download = &outcome
			}
			if err != nil {
				if res.Download != nil {
					_ = e.out.Write(res)
				}
				return err
			}

			applied, err := applyUpdate(ctx, e, yes, cmd.InOrStdin(), stderr)
			res.Apply = applied
			if werr := e.out.Write(res); werr != nil {
				return werr
			}
			if err != nil {
				return fmt.Errorf("update downloaded but not applied: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation before restarting")

	return cmd
}
