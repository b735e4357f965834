package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/autocategorize/internal/config"
	"github.com/Veraticus/autocategorize/internal/llm"
	"github.com/Veraticus/autocategorize/internal/metrics"
	"github.com/Veraticus/autocategorize/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the classification HTTP endpoint",
		Long: `Serve POST /api/v1/classify, GET /health and GET /metrics.

Request body: {"categories": ["Groceries", ...], "transaction": {...}}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			noMetrics, _ := cmd.Flags().GetBool("no-metrics")
			var m *metrics.Metrics
			if !noMetrics {
				m = metrics.NewMetrics(prometheus.DefaultRegisterer)
			}

			classifier, err := newClassifier(llm.WithMetrics(m))
			if err != nil {
				return err
			}

			store, err := openJournal(ctx, cmd)
			if err != nil {
				return err
			}
			var j server.Journal
			if store != nil {
				defer func() { _ = store.Close() }()
				j = store
			}

			srv := server.New(viper.GetString(config.KeyServerAddr), classifier, j, m, nil)
			return srv.Start(ctx)
		},
	}

	cmd.Flags().String("addr", config.DefaultServerAddr, "listen address")
	cmd.Flags().Bool("no-journal", false, "do not record requests in the journal")
	cmd.Flags().Bool("no-metrics", false, "disable Prometheus metrics")
	_ = viper.BindPFlag(config.KeyServerAddr, cmd.Flags().Lookup("addr"))

	return cmd
}
