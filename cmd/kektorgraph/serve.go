package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	kgmcp "github.com/sanonone/kektorgraph/internal/mcp"
	"github.com/sanonone/kektorgraph/internal/server"
)

func (a *app) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the candidate index over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("http-addr") {
				a.cfg.Server.HTTPAddr = addr
			}
			idx, err := a.loadIndex(cmd.Context())
			if err != nil {
				return err
			}

			srv := server.NewServer(idx, a.opts, a.cfg.Server)
			errCh := make(chan error, 1)
			go func() { errCh <- srv.Run() }()

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
				srv.Shutdown()
				return <-errCh
			}
		},
	}
	cmd.Flags().StringVar(&addr, "http-addr", "", "HTTP listen address (overrides server.http_addr)")
	return cmd
}

func (a *app) mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the candidate index as MCP tools over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := a.loadIndex(cmd.Context())
			if err != nil {
				return err
			}
			return kgmcp.NewMCPServer(idx).Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}
