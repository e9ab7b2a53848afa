package receipt

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// CallbackPath is the route the messaging platform posts webhooks to
const CallbackPath = "/callback"

// IDGenerator generates request IDs for log correlation
type IDGenerator interface {
	Generate() string
}

// defaultIDGenerator generates random UUIDs
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return uuid.NewString()
}

// Server handles webhook requests from the messaging platform
type Server struct {
	service       *Service
	channelSecret string
	idGenerator   IDGenerator
	mux           *http.ServeMux
}

// NewServer creates a new Server with default mux
func NewServer(service *Service, channelSecret string) *Server {
	return NewServerWithMux(service, channelSecret, http.NewServeMux())
}

// NewServerWithMux creates a new Server with a custom mux for testing
func NewServerWithMux(service *Service, channelSecret string, mux *http.ServeMux) *Server {
	s := &Server{
		service:       service,
		channelSecret: channelSecret,
		idGenerator:   &defaultIDGenerator{},
		mux:           mux,
	}
	s.registerRoutes()
	return s
}

// registerRoutes registers the webhook route on the server's mux
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST "+CallbackPath, s.handleCallback)
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	slog.Info("Starting server", "address", addr, "callback", CallbackPath)
	return http.ListenAndServe(addr, s.mux)
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
