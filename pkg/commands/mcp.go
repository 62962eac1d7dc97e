package commands

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"tableflip.dev/bulletin/pkg/commands/options"
	"tableflip.dev/bulletin/pkg/runner/mcp"
)

func addMCP(topLevel *cobra.Command) {
	so := &options.ServeOptions{}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "start the Model Context Protocol server",
		Long: `Launch an MCP server that exposes the issue schedule and running annexes
through the Model Context Protocol and lets clients schedule new issues.`,
		Example: `
bulletin mcp --transport stdio
bulletin mcp --http-port 0
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := so.Mode()
			if err != nil {
				return err
			}
			e, err := load()
			if err != nil {
				return err
			}

			r := mcp.Runner{
				Backend:   e.p,
				Lang:      e.cfg.Language(),
				Log:       e.log,
				Name:      "bulletin",
				Version:   version,
				Transport: mcp.Transport(mode),
				HTTP: mcp.HTTPEndpoint{
					Path:     so.EndpointPath(),
					CertFile: so.TLSCert,
					KeyFile:  so.TLSKey,
				},
			}
			if r.Transport == mcp.TransportHTTP {
				if r.HTTP.Addr, err = so.Addr(); err != nil {
					return err
				}
				r.HTTP.OnListening = func(a net.Addr) {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "MCP HTTP server listening on %s\n",
						r.HTTP.URL(so.Host, a))
				}
			}
			return r.Do(cmd.Context())
		},
	}

	options.AddServeArgs(cmd, so)

	topLevel.AddCommand(cmd)
}
