package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/henrik/wb/internal/devserver"
	"github.com/henrik/wb/internal/router"
	"github.com/henrik/wb/internal/watch"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the development server",
	Long:  "Build the project, watch sources for changes and serve the output with SPA fallback routing.",
	RunE:  runServe,
}

var (
	serveListenAddr  string
	serveMetricsPort int
)

func init() {
	serveCmd.Flags().StringVar(&serveListenAddr, "listen", "", "Listen address (default from config or :8080)")
	serveCmd.Flags().IntVar(&serveMetricsPort, "metrics-port", 0, "Port for Prometheus metrics (disabled if 0)")
}

func runServe(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}
	if serveListenAddr != "" {
		p.cfg.ListenAddr = serveListenAddr
	}
	if serveMetricsPort != 0 {
		p.cfg.MetricsPort = serveMetricsPort
	}

	route := router.Select(p.flags.IsEmbedMode)

	if err := p.buildOnce(); err != nil {
		return fmt.Errorf("initial build failed: %w", err)
	}

	matcher, err := p.ignoreMatcher()
	if err != nil {
		return err
	}
	watcher, err := watch.New(p.dir, matcher)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	srv := devserver.New(p.cfg, route, p.outDir)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go watcher.Run(ctx, func(paths []string) {
		log.Printf("rebuilding after change to %v", paths)
		start := time.Now()
		err := p.buildOnce()
		if err != nil {
			log.Printf("rebuild failed: %v", err)
		} else {
			log.Printf("rebuild finished in %s", time.Since(start).Round(time.Millisecond))
		}
		srv.BuildFinished(time.Since(start), err)
	})

	fmt.Printf("Starting dev server on %s\n", p.cfg.ListenAddr)
	fmt.Printf("Serving %s at / with fallback %s\n", route.IndexDocument, route.FallbackPath)
	if p.cfg.MetricsPort > 0 {
		fmt.Printf("Prometheus metrics on :%d\n", p.cfg.MetricsPort)
	}

	return srv.Run()
}
