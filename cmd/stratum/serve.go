package main

import (
	"fmt"
	"log/slog"

	"github.com/poiesic/stratum"
	"github.com/poiesic/stratum/ingestion"
	"github.com/poiesic/stratum/metrics"
	"github.com/poiesic/stratum/server"
	"github.com/urfave/cli/v2"
)

func serveCommand(c *cli.Context) error {
	collector := metrics.New()
	extra := []ingestion.Option{ingestion.WithMetrics(collector)}

	return withPipeline(c, extra, func(db *stratum.Database, pipeline *ingestion.Pipeline) error {
		logger := slog.Default().With("component", "server")
		handler, err := server.NewHandler(pipeline, db.Store().Uploads(), c.String("upload-dir"),
			server.WithLogger(logger),
			server.WithMetricsHandler(collector.Handler()),
		)
		if err != nil {
			return fmt.Errorf("failed to create handler: %w", err)
		}
		return server.ListenAndServe(c.Context, c.String("addr"), handler.Routes(), logger)
	})
}
