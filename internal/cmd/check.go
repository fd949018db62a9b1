package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// checkResult is the outcome of `profup check`.
type checkResult struct {
	Available      bool   `json:"available" yaml:"available"`
	ProfileVersion int    `json:"profile_version" yaml:"profile_version"`
	Message        string `json:"message,omitempty" yaml:"message,omitempty"`
}

func (r checkResult) String() string {
	var b strings.Builder
	if r.Available {
		b.WriteString("A device profile update is available.")
	} else {
		fmt.Fprintf(&b, "Device profiles are up to date (version %d).", r.ProfileVersion)
	}
	if r.Message != "" {
		b.WriteString("\n\n")
		b.WriteString(strings.TrimRight(r.Message, "\n"))
	}
	return b.String()
}

func newCheckCmd() *cobra.Command {
	var withMessage bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check whether a device profile update is available",
		Long: `Check asks the update service whether a newer device profile bundle exists
for the installed profile version.

Examples:
  profup check              # Yes or no
  profup check --message    # Also show the update notice
  profup check -o json      # Machine-readable result`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			res, err := runCheck(cmd.Context(), e, withMessage)
			if err != nil {
				return err
			}
			return e.out.Write(res)
		},
	}

	cmd.Flags().BoolVarP(&withMessage, "message", "m", false, "Also fetch the update notice when an update is available")

	return cmd
}

// runCheck queries availability and, when asked, the update notice. The two
// queries run concurrently.
func runCheck(ctx context.Context, e *env, withMessage bool) (checkResult, error) {
	res := checkResult{ProfileVersion: e.tool.ProfileVersion()}

	checkCh := e.queries.CheckAsync(ctx)
	if !withMessage {
		check := <-checkCh
		if check.Err != nil {
			return res, fmt.Errorf("failed to check for updates: %w", check.Err)
		}
		res.Available = check.Value
		return res, nil
	}

	msgCh := e.queries.MessageAsync(ctx)
	check, msg := <-checkCh, <-msgCh
	if check.Err != nil {
		return res, fmt.Errorf("failed to check for updates: %w", check.Err)
	}
	res.Available = check.Value
	if res.Available {
		if msg.Err != nil {
			return res, fmt.Errorf("failed to fetch update message: %w", msg.Err)
		}
		res.Message = msg.Value
	}
	return res, nil
}
