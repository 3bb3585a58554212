package devserver

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/henrik/wb/internal/config"
	"github.com/henrik/wb/internal/router"
)

// Server is the development server. It serves the build output directory
// with the router-selected index document at the root and rewrites every
// unmatched path to the selected fallback document instead of returning
// a 404, so client-side routing keeps working on deep links.
type Server struct {
	cfg     *config.Config
	route   router.Route
	outDir  string
	engine  *gin.Engine
	metrics *Metrics
	reload  *ReloadHub
}

// New creates a dev server for the given route pair and output directory.
func New(cfg *config.Config, route router.Route, outDir string) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		cfg:     cfg,
		route:   route,
		outDir:  outDir,
		engine:  engine,
		metrics: NewMetrics(),
		reload:  NewReloadHub(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.engine.GET("/wb/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "index": s.route.IndexDocument})
	})
	s.engine.GET("/wb/livereload", s.reload.Handler())

	// Everything else is the static tree with SPA fallback.
	s.engine.NoRoute(s.handleStatic)
}

// Run starts the server, plus the metrics listener when configured.
func (s *Server) Run() error {
	if s.cfg.MetricsPort > 0 {
		go s.runMetricsServer()
	}
	return s.engine.Run(s.cfg.ListenAddr)
}

// Handler exposes the underlying handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// BuildFinished records a rebuild outcome and, on success, tells every
// connected browser to reload.
func (s *Server) BuildFinished(d time.Duration, err error) {
	if err != nil {
		s.metrics.rebuildFailures.Inc()
		return
	}
	s.metrics.rebuilds.Inc()
	s.metrics.lastBuildSeconds.Set(d.Seconds())
	s.reload.Broadcast()
}

func (s *Server) handleStatic(c *gin.Context) {
	s.metrics.requests.Inc()

	reqPath := c.Request.URL.Path
	servePath := reqPath
	if servePath == "/" {
		servePath = "/" + s.route.IndexDocument
	}

	data, err := s.readFile(servePath)
	if err != nil {
		// SPA fallback: any unmatched path serves the selected document.
		log.Printf("[rewrite] %s -> %s", reqPath, s.route.FallbackPath)
		s.metrics.fallbackRewrites.Inc()

		servePath = s.route.FallbackPath
		data, err = s.readFile(servePath)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
	}

	c.Data(http.StatusOK, contentType(servePath), data)
}

// readFile reads a request path from the output directory, refusing
// anything that escapes it.
func (s *Server) readFile(reqPath string) ([]byte, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(reqPath, "/")))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return nil, os.ErrNotExist
	}

	full := filepath.Join(s.outDir, clean)
	info, err := os.Stat(full)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, os.ErrNotExist
	}
	return os.ReadFile(full)
}

func contentType(path string) string {
	switch {
	case strings.HasSuffix(path, ".js"):
		return "application/javascript"
	case strings.HasSuffix(path, ".css"):
		return "text/css"
	case strings.HasSuffix(path, ".json"), strings.HasSuffix(path, ".map"):
		return "application/json"
	case strings.HasSuffix(path, ".svg"):
		return "image/svg+xml"
	default:
		return "text/html"
	}
}

func (s *Server) runMetricsServer() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", s.metrics.HTTPHandler())

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.MetricsPort),
		Handler: mux,
	}
	server.ListenAndServe()
}
