package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/adamancini/profup/internal/interactive"
	"github.com/adamancini/profup/internal/update"
)

var errDownloadCancelled = errors.New("download cancelled")

func newDownloadCmd() *cobra.Command {
	var dest string

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download the device profile update archive",
		Long: `Download streams the update archive into the tool installation
(update.zip by default) and reports progress on stderr when it is a terminal.

Interrupting the download (Ctrl-C) stops it at the next chunk and leaves the
partial file in place.

Examples:
  profup download                       # Download to <tool home>/update.zip
  profup download --dest /tmp/up.zip    # Download elsewhere`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			_, err = runDownload(ctx, e, dest, cmd.ErrOrStderr())
			return err
		},
	}

	cmd.Flags().StringVar(&dest, "dest", "", "Destination file (default: the tool's update archive)")

	return cmd
}

// runDownload downloads the archive to dest and writes the outcome. It returns
// an error for anything but a completed download.
func runDownload(ctx context.Context, e *env, dest string, stderr io.Writer) (update.Outcome, error) {
	outcome, err := fetchArchive(ctx, e, dest, stderr)
	if outcome.Status == "" {
		return outcome, err
	}
	if werr := e.out.Write(outcome); werr != nil {
		return outcome, werr
	}
	return outcome, err
}

// fetchArchive downloads the archive to dest, drawing progress on a terminal
// stderr. The outcome is returned even when the error is non-nil.
func fetchArchive(ctx context.Context, e *env, dest string, stderr io.Writer) (update.Outcome, error) {
	if dest == "" {
		dest = e.tool.UpdateArchive()
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return update.Outcome{}, fmt.Errorf("failed to create directory for %s: %w", dest, err)
	}

	var sink update.ProgressSink = update.NopProgress{}
	var bar *update.TextProgress
	if !quiet && e.out.IsText() && isTerminalWriter(stderr) {
		bar = update.NewTextProgress(stderr)
		sink = bar
	}

	e.logger.Debug("downloading update", "path", dest)
	outcome := <-e.downloads.DownloadAsync(ctx, dest, sink)
	if bar != nil {
		bar.Finish()
	}

	switch {
	case outcome.Status.IsCompleted():
		return outcome, nil
	case outcome.Status.IsCancelled():
		return outcome, errDownloadCancelled
	default:
		if update.IsRetryable(outcome.Err) {
			e.say(stderr, "The download can be retried with `profup download`.")
		}
		return outcome, fmt.Errorf("failed to download update: %w", outcome.Err)
	}
}

func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && interactive.IsTerminalFile(f)
}
