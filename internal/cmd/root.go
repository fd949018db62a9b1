package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	outputFormat string
	configPath   string
	verbose      bool
	quiet        bool
)

// build information, set by Execute
var (
	profupVersion = "dev"
	profupCommit  = "none"
	profupDate    = "unknown"
)

func Execute(version, commit, date string) error {
	profupVersion, profupCommit, profupDate = version, commit, date
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "profup",
		Short: "Device profile updates for the local tool installation",
		Long: `profup keeps the device-profile database of a local tool installation current.

It asks the update service whether a newer profile bundle exists, downloads the
update archive, and hands over to the installation's updater to apply it.`,
		Version:       profupVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json, yaml")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to profup config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (errors only)")

	// Add subcommands
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newMessageCmd())
	rootCmd.AddCommand(newDownloadCmd())
	rootCmd.AddCommand(newApplyCmd())
	rootCmd.AddCommand(newUpdateCmd())
	rootCmd.AddCommand(newIdentityCmd())
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	// Register completion function for output flag
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})

	return rootCmd
}
