package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/henrik/wb/internal/bundler"
	"github.com/henrik/wb/internal/cache"
	"github.com/henrik/wb/internal/config"
	"github.com/henrik/wb/internal/entry"
	"github.com/henrik/wb/internal/env"
	"github.com/henrik/wb/internal/inject"
	"github.com/henrik/wb/internal/page"
	"github.com/henrik/wb/internal/watch"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the app and embed pages",
	Long:  "Build both pages into the output directory, using the build cache when inputs are unchanged.",
	RunE:  runBuild,
}

var (
	buildProduction bool
	buildNoCache    bool
)

func init() {
	buildCmd.Flags().BoolVar(&buildProduction, "production", false, "Force a production build regardless of NODE_ENV")
	buildCmd.Flags().BoolVar(&buildNoCache, "no-cache", false, "Skip the build cache")
}

// project bundles everything a command needs to operate on the working
// directory's project.
type project struct {
	dir    string
	cfg    *config.Config
	flags  env.Flags
	outDir string
}

func loadProject() (*project, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := env.Resolve()
	outDir, err := filepath.Abs(filepath.Join(dir, cfg.OutDir))
	if err != nil {
		return nil, err
	}

	return &project{dir: dir, cfg: cfg, flags: flags, outDir: outDir}, nil
}

func (p *project) ignoreMatcher() (*watch.Matcher, error) {
	m := watch.NewMatcher(p.cfg.OutDir+"/", filepath.Dir(p.cfg.CachePath)+"/")
	if err := m.LoadFile(filepath.Join(p.dir, ".wbignore")); err != nil {
		return nil, err
	}
	return m, nil
}

// buildOnce runs one full build: bundle, render both documents, write the
// manifest.
func (p *project) buildOnce() error {
	targets := entry.Targets(p.flags.IsProduction)
	vars := inject.Resolve(os.LookupEnv)

	result, err := bundler.Build(bundler.Options{
		ProjectDir: p.dir,
		SourceDir:  p.cfg.SourceDir,
		OutDir:     p.outDir,
		Production: p.flags.IsProduction,
		Targets:    targets,
		Defines:    inject.Defines(vars),
	})
	if err != nil {
		return err
	}

	for _, t := range targets {
		if err := page.Render(p.dir, p.outDir, p.cfg.Title, t, result.Assets[t.Name]); err != nil {
			return err
		}
	}

	return bundler.WriteManifest(p.outDir, targets, result.Assets)
}

// cacheKey covers everything that shapes the output: sources, mode flags
// and the resolved injection values.
func (p *project) cacheKey(matcher *watch.Matcher) (string, error) {
	vars := inject.Resolve(os.LookupEnv)
	extra := []string{
		fmt.Sprintf("production=%t", p.flags.IsProduction),
		fmt.Sprintf("title=%s", p.cfg.Title),
	}
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		extra = append(extra, name+"="+vars[name])
	}

	return cache.Key(p.dir, matcher.Match, extra...)
}

// buildCached restores from the cache on a key hit, building and storing
// otherwise.
func (p *project) buildCached(ctx context.Context) error {
	matcher, err := p.ignoreMatcher()
	if err != nil {
		return err
	}

	c, err := cache.Open(p.dir, p.cfg)
	if err != nil {
		return fmt.Errorf("failed to open build cache: %w", err)
	}
	defer c.Close()

	key, err := p.cacheKey(matcher)
	if err != nil {
		return err
	}

	hit, err := c.Restore(ctx, key, p.outDir)
	if err != nil {
		return err
	}
	if hit {
		fmt.Printf("Restored build from cache (%s)\n", key[:16])
		return nil
	}

	if err := p.buildOnce(); err != nil {
		return err
	}
	if err := c.Store(ctx, key, p.outDir); err != nil {
		return fmt.Errorf("failed to store build in cache: %w", err)
	}
	return nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}
	if buildProduction {
		p.flags.IsProduction = true
	}

	mode := "development"
	if p.flags.IsProduction {
		mode = "production"
	}
	fmt.Printf("Building (%s) into %s\n", mode, p.cfg.OutDir)

	start := time.Now()
	if buildNoCache {
		err = p.buildOnce()
	} else {
		err = p.buildCached(cmd.Context())
	}
	if err != nil {
		return err
	}

	fmt.Printf("Build finished in %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}
