package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

type messageResult struct {
	Message string `json:"message" yaml:"message"`
}

func (r messageResult) String() string { return r.Message }

func newMessageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "message",
		Short: "Show the update service's notice for the next update",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			msg, err := e.queries.UpdateMessage(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch update message: %w", err)
			}
			return e.out.Write(messageResult{Message: msg})
		},
	}
}
