// Package oauth receives OAuth redirects on a loopback HTTP server.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CallbackPath is the path the provider redirects to.
const CallbackPath = "/callback"

// ErrStateMismatch is returned when the redirect carries an unexpected state.
var ErrStateMismatch = errors.New("oauth state mismatch")

type result struct {
	code string
	err  error
}

// CallbackServer waits for a single authorization redirect.
type CallbackServer struct {
	mu            sync.Mutex
	addr          string
	expectedState string
	results       chan result
	server        *http.Server
	listener      net.Listener
}

// NewState returns a random state value for an authorization request.
func NewState() string {
	return uuid.NewString()
}

// NewCallbackServer creates a server listening on addr (host:port). Port 0
// picks a free port.
func NewCallbackServer(addr, expectedState string) *CallbackServer {
	return &CallbackServer{
		addr:          addr,
		expectedState: expectedState,
		results:       make(chan result, 1),
	}
}

// ListenAddr derives the loopback listen address from a redirect URL such
// as http://localhost:8085/callback.
func ListenAddr(redirectURL string) (string, error) {
	u, err := url.Parse(redirectURL)
	if err != nil {
		return "", fmt.Errorf("parse redirect url: %w", err)
	}
	if u.Scheme != "http" {
		return "", fmt.Errorf("redirect url %q must use http on a loopback host", redirectURL)
	}
	host := u.Hostname()
	if host != "localhost" && host != "127.0.0.1" {
		return "", fmt.Errorf("redirect url %q must use a loopback host", redirectURL)
	}
	port := u.Port()
	if port == "" {
		port = "80"
	}
	return net.JoinHostPort("127.0.0.1", port), nil
}

// Start begins serving in the background.
func (s *CallbackServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mux := http.NewServeMux()
	mux.HandleFunc(CallbackPath, s.handleCallback)

	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.deliver(result{err: err})
		}
	}()

	return nil
}

// deliver keeps only the first outcome.
func (s *CallbackServer) deliver(r result) {
	select {
	case s.results <- r:
	default:
	}
}

func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if errParam := q.Get("error"); errParam != "" {
		s.deliver(result{err: fmt.Errorf("oauth error: %s %s", errParam, q.Get("error_description"))})
		fmt.Fprint(w, page("Authorization failed", errParam))
		return
	}
	if q.Get("state") != s.expectedState {
		s.deliver(result{err: ErrStateMismatch})
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, page("Authorization failed", "The request state did not match."))
		return
	}
	code := q.Get("code")
	if code == "" {
		s.deliver(result{err: errors.New("no authorization code received")})
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, page("Authorization failed", "No code was received."))
		return
	}

	s.deliver(result{code: code})
	fmt.Fprint(w, page("Connected", "You can close this window and return to the terminal."))
}

// WaitForCode blocks until a redirect arrives or ctx is done.
func (s *CallbackServer) WaitForCode(ctx context.Context) (string, error) {
	select {
	case r := <-s.results:
		return r.code, r.err
	case <-ctx.Done():
		return "", fmt.Errorf("waiting for authorization callback: %w", ctx.Err())
	}
}

// Stop shuts the server down. Safe to call more than once.
func (s *CallbackServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.server.Shutdown(ctx)
	s.server = nil
	return err
}

// Addr returns the bound address once started.
func (s *CallbackServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// RedirectURI returns the URL to register with the provider.
func (s *CallbackServer) RedirectURI() string {
	_, port, _ := net.SplitHostPort(s.Addr())
	return "http://localhost:" + port + CallbackPath
}

func page(title, message string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>Inkling</title>
<style>
body { font-family: -apple-system, 'Segoe UI', sans-serif; display: flex; justify-content: center; align-items: center; height: 100vh; margin: 0; background: #f6f6f4; }
main { background: #fff; padding: 40px 56px; border-radius: 12px; border: 1px solid #ddd; text-align: center; }
h1 { color: #2b2d42; font-size: 22px; margin: 0 0 8px; }
p { color: #6c6f7d; margin: 0; }
</style></head>
<body><main><h1>%s</h1><p>%s</p></main></body>
</html>`, html.EscapeString(title), html.EscapeString(message))
}

// OpenBrowser opens the default browser to the given URL.
func OpenBrowser(target string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "linux":
		cmd = exec.Command("xdg-open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
