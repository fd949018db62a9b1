package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adamancini/profup/internal/output"
	"github.com/adamancini/profup/internal/tool"
)

type versionInfo struct {
	Version  string `json:"version" yaml:"version"`
	Commit   string `json:"commit" yaml:"commit"`
	Date     string `json:"date" yaml:"date"`
	Platform string `json:"platform" yaml:"platform"`
}

func (v versionInfo) String() string {
	return fmt.Sprintf("profup version %s (commit %s, built %s, %s)", v.Version, v.Commit, v.Date, v.Platform)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(cmd)
		},
	}
}

func runVersion(cmd *cobra.Command) error {
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return err
	}
	return output.NewWriter(cmd.OutOrStdout(), format).Write(versionInfo{
		Version:  profupVersion,
		Commit:   profupCommit,
		Date:     profupDate,
		Platform: tool.Detect().String(),
	})
}
