package options

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// ServeOptions configures how the MCP server is exposed.
type ServeOptions struct {
	Transport string
	Host      string
	Port      int
	Path      string
	TLSCert   string
	TLSKey    string
}

func AddServeArgs(cmd *cobra.Command, o *ServeOptions) {
	cmd.Flags().StringVar(&o.Transport, "transport", "http",
		"Transport to use: http or stdio.")
	cmd.Flags().StringVar(&o.Host, "http-host", "127.0.0.1",
		"Interface for the HTTP transport.")
	cmd.Flags().IntVar(&o.Port, "http-port", 8080,
		"Port for the HTTP transport, 0 picks a free one.")
	cmd.Flags().StringVar(&o.Path, "http-path", "/mcp",
		"HTTP endpoint path.")
	cmd.Flags().StringVar(&o.TLSCert, "http-tls-cert", "",
		"TLS certificate file, enables https together with --http-tls-key.")
	cmd.Flags().StringVar(&o.TLSKey, "http-tls-key", "",
		"TLS private key file.")
}

// Mode returns the normalized transport name.
func (o *ServeOptions) Mode() (string, error) {
	switch t := strings.ToLower(strings.TrimSpace(o.Transport)); t {
	case "", "http":
		return "http", nil
	case "stdio":
		return t, nil
	default:
		return "", fmt.Errorf("unsupported transport %q (expected http or stdio)", o.Transport)
	}
}

// Addr returns the listen address for the HTTP transport.
func (o *ServeOptions) Addr() (string, error) {
	if o.Port < 0 || o.Port > 65535 {
		return "", fmt.Errorf("invalid http-port %d", o.Port)
	}
	host := strings.TrimSpace(o.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, strconv.Itoa(o.Port)), nil
}

// EndpointPath returns the HTTP path with a leading slash.
func (o *ServeOptions) EndpointPath() string {
	p := strings.TrimSpace(o.Path)
	if p == "" {
		return "/mcp"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
