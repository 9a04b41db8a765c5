package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stormbolt/pkg/api"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve strikes over HTTP",
		Long: `Run the HTTP API. Routes:

  POST /v1/strike         JSON request, JSON response with the encoded image
  GET  /v1/strike.png     PNG (width, height, seed, scale query params)
  GET  /v1/strike.json    strike summary
  GET  /v1/topology.svg   branch spawn tree
  GET  /v1/topology.dot   branch spawn tree as DOT
  GET  /v1/version        build information
  GET  /healthz           liveness probe`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			runner, err := c.newRunner(cmd.Context(), cfg, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv := api.New(runner,
				api.WithLogger(c.Logger),
				api.WithAddr(addr),
				api.WithTimeouts(cfg.Server.ReadTimeout.Duration, cfg.Server.WriteTimeout.Duration),
			)
			printInfo("Serving on %s", StyleHighlight.Render(srv.Addr()))
			printNextStep("Try", "curl -o bolt.png '"+baseURL(srv.Addr())+"/v1/strike.png?seed=42'")
			return srv.ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}

// baseURL turns a listen address into a URL a local client can reach.
func baseURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}
