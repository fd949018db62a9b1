package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adamancini/profup/internal/config"
	"github.com/adamancini/profup/internal/templates"
)

func newInitCmd() *cobra.Command {
	var formatName string
	var outputPath string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a profup config file from the built-in template",
		Long: `Create a profup config file holding the built-in defaults.

Examples:
  profup init                            # ~/.config/profup/profup.yaml
  profup init --format toml              # TOML instead of YAML
  profup init --path ./profup.yaml       # Custom output location
  profup init --force                    # Overwrite an existing file`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd.OutOrStdout(), formatName, outputPath, force)
		},
	}

	cmd.Flags().StringVar(&formatName, "format", "yaml", "Config format: yaml, toml")
	cmd.Flags().StringVar(&outputPath, "path", "", "Output path for the config file")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "toml"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// runInit writes the template for formatName to outputPath.
func runInit(stdout io.Writer, formatName, outputPath string, force bool) error {
	format, err := config.ParseFormat(formatName)
	if err != nil {
		return err
	}

	tmpl, err := templates.ForFormat(format)
	if err != nil {
		return fmt.Errorf("failed to load template: %w", err)
	}

	// Validate the template content before writing
	if _, err := config.Parse(tmpl.Content, tmpl.Format); err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}

	if outputPath == "" {
		outputPath, err = config.DefaultPath(format)
		if err != nil {
			return err
		}
	}
	outputPath = expandHomePath(outputPath)

	if _, err := os.Stat(outputPath); err == nil && !force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", outputPath)
	}

	// Ensure parent directory exists
	parentDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(parentDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", parentDir, err)
	}

	if err := os.WriteFile(outputPath, tmpl.Content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	if !quiet {
		_, _ = fmt.Fprintf(stdout, "Created %s\n", outputPath)
		_, _ = fmt.Fprintln(stdout, "\nNext steps:")
		_, _ = fmt.Fprintln(stdout, "  1. Point tool.home at your installation (or set PROFUP_HOME)")
		_, _ = fmt.Fprintln(stdout, "  2. Run 'profup check' to query the update service")
	}

	return nil
}

// expandHomePath expands ~ to the user's home directory.
func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
