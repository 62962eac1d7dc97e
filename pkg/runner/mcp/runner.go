package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"tableflip.dev/bulletin/pkg/notify"
)

// Transport selects the mechanism used to expose the MCP server.
type Transport string

const (
	TransportHTTP  Transport = "http"
	TransportStdio Transport = "stdio"
)

const shutdownGrace = 5 * time.Second

// HTTPEndpoint describes where the streamable HTTP transport listens.
type HTTPEndpoint struct {
	Addr     string
	Path     string
	CertFile string
	KeyFile  string

	// OnListening is called once the listener is bound.
	OnListening func(net.Addr)
}

func (h HTTPEndpoint) tls() (bool, error) {
	switch {
	case h.CertFile == "" && h.KeyFile == "":
		return false, nil
	case h.CertFile == "" || h.KeyFile == "":
		return false, errors.New("mcp: both tls cert and key must be provided")
	}
	return true, nil
}

func (h HTTPEndpoint) path() string {
	if h.Path == "" {
		return "/mcp"
	}
	return h.Path
}

// URL renders the address a client should dial. Wildcard hosts are
// replaced by the bound ip, or loopback when that is unspecified too.
func (h HTTPEndpoint) URL(host string, bound net.Addr) string {
	scheme := "http"
	if ok, _ := h.tls(); ok {
		scheme = "https"
	}
	tcp, ok := bound.(*net.TCPAddr)
	if !ok {
		return fmt.Sprintf("%s://%s%s", scheme, bound.String(), h.path())
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
		if tcp.IP != nil && !tcp.IP.IsUnspecified() {
			host = tcp.IP.String()
		}
	}
	return fmt.Sprintf("%s://%s%s", scheme, net.JoinHostPort(host, fmt.Sprint(tcp.Port)), h.path())
}

// Runner coordinates MCP server startup.
type Runner struct {
	Backend   Backend
	Publisher notify.Publisher
	Lang      language.Tag
	Log       zerolog.Logger
	Name      string
	Version   string

	Transport Transport
	HTTP      HTTPEndpoint
}

// Do builds the server and serves it until ctx is done or stdin closes.
func (r Runner) Do(ctx context.Context) error {
	if r.Backend == nil {
		return errors.New("mcp: runner requires a backend")
	}
	srv := server.NewMCPServer(
		fmt.Sprintf("%s MCP", orDefault(r.Name, "bulletin")),
		orDefault(r.Version, "dev"),
		server.WithResourceCapabilities(false, false),
		server.WithToolCapabilities(false),
		server.WithInstructions("Inspect the bulletin schedule, schedule new issues, and look up the publications running into an issue."),
		server.WithResourceRecovery(),
		server.WithRecovery(),
	)

	svc := r.service()
	registerResources(srv, svc)
	registerTools(srv, svc)

	t := r.Transport
	if t == "" {
		t = TransportHTTP
	}
	r.Log.Info().Str("transport", string(t)).Msg("starting mcp server")
	switch t {
	case TransportHTTP:
		return r.serveHTTP(ctx, srv)
	case TransportStdio:
		return server.ServeStdio(srv)
	default:
		return fmt.Errorf("mcp: unknown transport %q", t)
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func (r Runner) service() *Service {
	svc := NewService(r.Backend)
	if r.Publisher != nil {
		svc.Publisher = r.Publisher
	}
	if r.Lang != language.Und {
		svc.Lang = r.Lang
	}
	svc.Log = r.Log
	return svc
}

func (r Runner) serveHTTP(ctx context.Context, srv *server.MCPServer) error {
	secure, err := r.HTTP.tls()
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle(r.HTTP.path(), server.NewStreamableHTTPServer(srv))
	httpSrv := &http.Server{Handler: mux}

	ln, err := net.Listen("tcp", orDefault(r.HTTP.Addr, "127.0.0.1:8080"))
	if err != nil {
		return fmt.Errorf("mcp: listen: %w", err)
	}
	r.Log.Info().Str("addr", ln.Addr().String()).Str("path", r.HTTP.path()).Msg("mcp listening")
	if r.HTTP.OnListening != nil {
		r.HTTP.OnListening(ln.Addr())
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	if secure {
		err = httpSrv.ServeTLS(ln, r.HTTP.CertFile, r.HTTP.KeyFile)
	} else {
		err = httpSrv.Serve(ln)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
