package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/kobex777/anymaps/pkg/observability"
	"github.com/kobex777/anymaps/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the map editing API over HTTP",
		Long: `Serve the map editing API over HTTP.

Each client opens a session on a new or saved map and drives generation,
enhancement, manual edits, saving and rendering through JSON routes. Prometheus
metrics are exposed on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			observability.NewMetrics(reg).Install()
			defer observability.Reset()

			gen, err := cfg.OpenGenerator(c.Logger)
			if err != nil {
				return err
			}
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			opts := cfg.ServerOptions(c.Logger)
			opts.Gatherer = reg
			if addr != "" {
				opts.Addr = addr
			}
			srv, err := server.New(gen, st, opts)
			if err != nil {
				return err
			}

			printInfo("Serving on %s", StyleHighlight.Render("http://"+opts.Addr))
			printDetail("store: %s  generator: %s", cfg.Store.Backend, generatorName(cfg.Generator.Offline))
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")

	return cmd
}

func generatorName(offline bool) string {
	if offline {
		return "offline"
	}
	return "remote"
}
