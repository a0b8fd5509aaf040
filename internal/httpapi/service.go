package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/palisade-db/palisade/internal/logging"
)

// Service fits the HTTP surface into a process-level Start/Stop
// lifecycle.
type Service struct {
	addr    string
	server  *http.Server
	handler http.Handler
	log     *logging.Logger
}

// NewService builds a Service listening on addr.
func NewService(addr string, handler http.Handler, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewDefault("http")
	}
	return &Service{addr: addr, handler: handler, log: log}
}

// Start begins serving in the background. It returns immediately; server
// errors are logged asynchronously.
func (s *Service) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Errorf("http server error: %v", err)
		}
	}()
	return nil
}

// Stop gracefully shuts the server down, honoring ctx's deadline.
func (s *Service) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
