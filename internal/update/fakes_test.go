package update

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/adamancini/profup/internal/identity"
)

const testBaseURL = "http://updates.test/index.php/{service}"

type staticProfile int

func (p staticProfile) ProfileVersion() int { return int(p) }

// chunkBody serves one chunk per Read and then fails with err, or io.EOF.
type chunkBody struct {
	mu     sync.Mutex
	chunks [][]byte
	err    error
	closes int
}

func (b *chunkBody) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.chunks) == 0 {
		if b.err != nil {
			return 0, b.err
		}
		return 0, io.EOF
	}
	n := copy(p, b.chunks[0])
	b.chunks[0] = b.chunks[0][n:]
	if len(b.chunks[0]) == 0 {
		b.chunks = b.chunks[1:]
	}
	return n, nil
}

func (b *chunkBody) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closes++
	return nil
}

func (b *chunkBody) Closes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closes
}

// fakeSender answers every request with a body built by next.
type fakeSender struct {
	mu   sync.Mutex
	urls []string
	next func() (*Response, error)
}

func (f *fakeSender) Send(_ context.Context, rawURL string) (*Response, error) {
	f.mu.Lock()
	f.urls = append(f.urls, rawURL)
	f.mu.Unlock()
	return f.next()
}

func (f *fakeSender) URLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.urls...)
}

func textSender(body string) (*fakeSender, *chunkBody) {
	b := &chunkBody{chunks: [][]byte{[]byte(body)}}
	return &fakeSender{next: func() (*Response, error) {
		return NewResponse(b, int64(len(body))), nil
	}}, b
}

func failingSender(err error) *fakeSender {
	return &fakeSender{next: func() (*Response, error) { return nil, err }}
}

func newTestClient(t *testing.T, sender Sender) *Client {
	t.Helper()
	req, err := NewRequestor(testBaseURL)
	if err != nil {
		t.Fatalf("NewRequestor() error = %v", err)
	}
	ids := identity.NewMemoryStore(map[string]string{identity.KeyUserHash: "abc123xyz789"})
	params := NewParamBuilder(staticProfile(42), ids)
	return NewClient(req, params, WithSender(sender))
}

// makeChunks returns k chunks whose sizes vary but never exceed ChunkSize,
// along with their concatenation.
func makeChunks(k int) ([][]byte, []byte) {
	var all bytes.Buffer
	chunks := make([][]byte, k)
	for i := range chunks {
		size := ChunkSize - (i*37)%500
		c := make([]byte, size)
		for j := range c {
			c[j] = byte(i + j)
		}
		chunks[i] = c
		all.Write(c)
	}
	return chunks, all.Bytes()
}

var errBrokenStream = errors.New("connection reset by peer")
