package watch

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce coalesces editor save bursts into one rebuild.
const debounce = 200 * time.Millisecond

// Watcher watches a project tree recursively and reports batched changes.
type Watcher struct {
	fw     *fsnotify.Watcher
	root   string
	ignore *Matcher
}

// New creates a watcher over root, registering every non-ignored
// directory. Directories created later are picked up as they appear.
func New(root string, ignore *Matcher) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{fw: fw, root: root, ignore: ignore}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel != "." && ignore.Match(rel, true) {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
	if err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.fw.Close()
}

// Run delivers batches of changed paths to onChange until the context is
// cancelled. Changes arriving within the debounce window are merged into
// one batch.
func (w *Watcher) Run(ctx context.Context, onChange func(paths []string)) {
	var pending []string
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			rel, err := filepath.Rel(w.root, event.Name)
			if err != nil {
				continue
			}
			info, statErr := os.Stat(event.Name)
			isDir := statErr == nil && info.IsDir()
			if w.ignore.Match(rel, isDir) {
				continue
			}
			if isDir && event.Has(fsnotify.Create) {
				w.fw.Add(event.Name)
			}
			if event.Has(fsnotify.Chmod) {
				continue
			}

			pending = append(pending, rel)
			if timer == nil {
				timer = time.NewTimer(debounce)
				fire = timer.C
			} else {
				timer.Reset(debounce)
			}

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			log.Printf("watch error: %v", err)

		case <-fire:
			batch := dedup(pending)
			pending = nil
			timer = nil
			fire = nil
			onChange(batch)
		}
	}
}

func dedup(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	var out []string
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
