// Package testserver is a scriptable stand-in for the update service used by
// tests. It serves GET /index.php/{service} and records each query.
package testserver

import (
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/adamancini/profup/internal/types"
)

// ServicePath is the route the fake service answers on.
const ServicePath = "/index.php/{service}"

// Server holds the scripted answers. Fields may be changed between requests
// through the setters; the zero value answers "0" with an empty message.
type Server struct {
	mu sync.Mutex

	availability string
	message      string
	archive      []byte
	status       map[string]int
	chunked      bool

	queries map[string]url.Values
	hits    map[string]int
}

// Option configures a Server.
type Option func(*Server)

// WithAvailability sets the currentProfile body.
func WithAvailability(body string) Option {
	return func(s *Server) { s.availability = body }
}

// WithMessage sets the updateMessage body.
func WithMessage(body string) Option {
	return func(s *Server) { s.message = body }
}

// WithArchive sets the bytes served by the update service.
func WithArchive(b []byte) Option {
	return func(s *Server) { s.archive = b }
}

// WithStatus makes service answer with code and no body.
func WithStatus(service string, code int) Option {
	return func(s *Server) { s.status[service] = code }
}

// WithoutContentLength streams the archive chunked so its length is unknown.
func WithoutContentLength() Option {
	return func(s *Server) { s.chunked = true }
}

// New creates a fake update service.
func New(opts ...Option) *Server {
	s := &Server{
		availability: "0",
		status:       map[string]int{},
		queries:      map[string]url.Values{},
		hits:         map[string]int{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the chi router serving the service endpoints.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get(ServicePath, s.serve)
	return r
}

// Query returns the last query received for service.
func (s *Server) Query(service string) url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries[service]
}

// Hits returns how many requests service has received.
func (s *Server) Hits(service string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[service]
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	name, err := types.ParseServiceName(chi.URLParam(r, "service"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	service := name.String()

	s.mu.Lock()
	s.queries[service] = r.URL.Query()
	s.hits[service]++
	code, scripted := s.status[service]
	availability, message, archive, chunked := s.availability, s.message, s.archive, s.chunked
	s.mu.Unlock()

	if scripted {
		http.Error(w, http.StatusText(code), code)
		return
	}

	switch name {
	case types.ServiceCurrentProfile:
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(availability))
	case types.ServiceUpdateMessage:
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(message))
	case types.ServiceUpdate:
		w.Header().Set("Content-Type", "application/zip")
		if chunked {
			writeChunked(w, archive)
			return
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(archive)))
		_, _ = w.Write(archive)
	}
}

func writeChunked(w http.ResponseWriter, b []byte) {
	flusher, _ := w.(http.Flusher)
	const step = 1024
	for len(b) > 0 {
		n := min(step, len(b))
		_, _ = w.Write(b[:n])
		if flusher != nil {
			flusher.Flush()
		}
		b = b[n:]
	}
	if flusher != nil {
		flusher.Flush()
	}
}
