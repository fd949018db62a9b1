package update

import (
	"io"
	"sync"
)

// Response is an open reply from the update service. The caller owns it and
// must Close it; Close releases the body once however often it is called.
type Response struct {
	body          io.ReadCloser
	contentLength int64

	once     sync.Once
	closeErr error
}

// NewResponse wraps a body with its declared length (-1 when unknown).
func NewResponse(body io.ReadCloser, contentLength int64) *Response {
	if contentLength < 0 {
		contentLength = -1
	}
	return &Response{body: body, contentLength: contentLength}
}

// Body returns the unread content stream.
func (r *Response) Body() io.Reader {
	return r.body
}

// ContentLength returns the declared size in bytes, or -1 when unknown.
func (r *Response) ContentLength() int64 {
	return r.contentLength
}

// Close releases the underlying stream.
func (r *Response) Close() error {
	r.once.Do(func() {
		r.closeErr = r.body.Close()
	})
	return r.closeErr
}
