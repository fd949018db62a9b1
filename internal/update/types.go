package update

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/adamancini/profup/internal/types"
)

// ChunkSize is the read buffer size used when streaming the update archive.
// Cancellation is observed once per chunk.
const ChunkSize = 2048

// ProfileSource reports the installed device-profile version.
type ProfileSource interface {
	ProfileVersion() int
}

// Sender issues a request for a fully built URL.
type Sender interface {
	Send(ctx context.Context, rawURL string) (*Response, error)
}

// QueryClient answers the update service's text queries.
type QueryClient interface {
	IsUpdateAvailable(ctx context.Context) (bool, error)
	UpdateMessage(ctx context.Context) (string, error)
	CheckAsync(ctx context.Context) <-chan Result[bool]
	MessageAsync(ctx context.Context) <-chan Result[string]
}

// Downloader streams the update archive to disk.
type Downloader interface {
	Download(ctx context.Context, dest string, sink ProgressSink) Outcome
	DownloadAsync(ctx context.Context, dest string, sink ProgressSink) <-chan Outcome
}

var (
	_ QueryClient = (*Client)(nil)
	_ Downloader  = (*Client)(nil)
)

// Outcome is the terminal result of a download attempt.
type Outcome struct {
	Status  types.OutcomeStatus `json:"status" yaml:"status"`
	Path    string              `json:"path,omitempty" yaml:"path,omitempty"` // destination, also set on cancel
	Written int64               `json:"written" yaml:"written"`
	Err     error               `json:"-" yaml:"-"`
}

// Completed returns a successful outcome.
func Completed(path string, written int64) Outcome {
	return Outcome{Status: types.OutcomeCompleted, Path: path, Written: written}
}

// Cancelled returns a cancelled outcome. path may hold a partial file.
func Cancelled(path string, written int64) Outcome {
	return Outcome{Status: types.OutcomeCancelled, Path: path, Written: written}
}

// Failed returns a failed outcome carrying its cause.
func Failed(cause error, written int64) Outcome {
	return Outcome{Status: types.OutcomeFailed, Written: written, Err: cause}
}

// String implements fmt.Stringer for text output.
func (o Outcome) String() string {
	switch {
	case o.Status.IsCompleted():
		return fmt.Sprintf("Downloaded %s to %s", humanize.Bytes(uint64(o.Written)), o.Path)
	case o.Status.IsCancelled():
		return fmt.Sprintf("Download cancelled after %s; partial file left at %s", humanize.Bytes(uint64(o.Written)), o.Path)
	default:
		return fmt.Sprintf("Download failed after %s: %v", humanize.Bytes(uint64(o.Written)), o.Err)
	}
}
