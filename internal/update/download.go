package update

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/adamancini/profup/internal/types"
)

// ErrDownloadInProgress is reported when dest is already being written by
// another download on the same client.
var ErrDownloadInProgress = errors.New("download in progress")

// Download streams the update archive into dest in ChunkSize reads.
//
// Only one download per dest runs at a time; a second call while one is
// running fails with ErrDownloadInProgress without sending a request or
// touching sink.
//
// The total from the response is reported to sink before any transfer. ctx is
// checked before every read; once it is done the download stops and returns
// Cancelled with whatever has been written left on disk. The caller decides
// whether to keep a partial file. Both the file and the response are closed
// before Download returns, on every path.
func (c *Client) Download(ctx context.Context, dest string, sink ProgressSink) Outcome {
	if sink == nil {
		sink = NopProgress{}
	}

	key := filepath.Clean(dest)
	if !c.claim(key) {
		c.logger.Warn("download already running", "path", dest)
		return Failed(fmt.Errorf("%w: %s", ErrDownloadInProgress, dest), 0)
	}
	defer c.release(key)

	// In-flight reads must not be torn down by cancellation; ctx is only
	// observed between chunks.
	resp, err := c.open(context.WithoutCancel(ctx), types.ServiceUpdate)
	if err != nil {
		return Failed(err, 0)
	}
	defer func() { _ = resp.Close() }()

	sink.Begin(resp.ContentLength())

	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return Failed(&IOError{Op: "open", Path: dest, Err: err}, 0)
	}

	written, status, err := c.copyChunks(ctx, f, resp.Body(), dest, sink)
	if closeErr := f.Close(); closeErr != nil && err == nil && status.IsCompleted() {
		err = &IOError{Op: "close", Path: dest, Err: closeErr}
	}
	if err != nil {
		c.logger.Warn("download failed", "path", dest, "bytes", written, "err", err)
		return Failed(err, written)
	}

	if status.IsCancelled() {
		c.logger.Info("download cancelled", "path", dest, "bytes", written)
		return Cancelled(dest, written)
	}

	c.logger.Debug("download completed", "path", dest, "bytes", written)
	return Completed(dest, written)
}

// copyChunks moves src into w one chunk at a time until EOF, an error, or ctx
// is done.
func (c *Client) copyChunks(ctx context.Context, w io.Writer, src io.Reader, dest string, sink ProgressSink) (int64, types.OutcomeStatus, error) {
	buf := make([]byte, ChunkSize)
	var written int64

	for {
		if ctx.Err() != nil {
			return written, types.OutcomeCancelled, nil
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				return written, types.OutcomeFailed, &IOError{Op: "write", Path: dest, Err: err}
			}
			written += int64(n)
			sink.Advance(n)
		}

		if errors.Is(readErr, io.EOF) {
			return written, types.OutcomeCompleted, nil
		}
		if readErr != nil {
			return written, types.OutcomeFailed, &IOError{Op: "read", Path: dest, Err: readErr}
		}
	}
}

func (c *Client) claim(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.active[key]; busy {
		return false
	}
	c.active[key] = struct{}{}
	return true
}

func (c *Client) release(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.active, key)
}

// DownloadAsync runs Download on its own goroutine and delivers the outcome on
// the returned channel. Each call keeps its own ctx and sink.
func (c *Client) DownloadAsync(ctx context.Context, dest string, sink ProgressSink) <-chan Outcome {
	out := make(chan Outcome, 1)

	go func() {
		defer close(out)
		out <- c.Download(ctx, dest, sink)
	}()

	return out
}
