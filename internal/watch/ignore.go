package watch

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// Matcher decides which paths the watcher (and the cache key walk) should
// skip, using gitignore-style patterns. Build outputs and dependency
// trees are ignored unconditionally.
type Matcher struct {
	patterns []ignorePattern
}

type ignorePattern struct {
	pattern  string
	negation bool
	dirOnly  bool
}

// builtinIgnores never feed rebuilds regardless of project patterns.
var builtinIgnores = []string{"node_modules/", ".git/", ".wb/", "dist/"}

// NewMatcher creates a matcher preloaded with the built-in ignores plus
// any extra patterns (the configured output directory, typically).
func NewMatcher(extra ...string) *Matcher {
	m := &Matcher{}
	for _, p := range builtinIgnores {
		m.add(p)
	}
	for _, p := range extra {
		m.add(p)
	}
	return m
}

func (m *Matcher) add(line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}

	pattern := ignorePattern{pattern: line}
	if strings.HasPrefix(line, "!") {
		pattern.negation = true
		pattern.pattern = line[1:]
	}
	if strings.HasSuffix(pattern.pattern, "/") {
		pattern.dirOnly = true
		pattern.pattern = strings.TrimSuffix(pattern.pattern, "/")
	}
	m.patterns = append(m.patterns, pattern)
}

// LoadFile adds patterns from a .wbignore file. A missing file is fine.
func (m *Matcher) LoadFile(path string) error {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		m.add(scanner.Text())
	}
	return scanner.Err()
}

// Match checks whether a project-relative path should be skipped.
func (m *Matcher) Match(path string, isDir bool) bool {
	path = filepath.ToSlash(path)

	ignored := false
	for _, p := range m.patterns {
		if p.dirOnly && !isDir && !underDir(path, p.pattern) {
			continue
		}
		if matchPattern(p.pattern, path) || underDir(path, p.pattern) {
			ignored = !p.negation
		}
	}
	return ignored
}

// underDir reports whether path lives under a directory matching pattern.
func underDir(path, pattern string) bool {
	for _, part := range strings.Split(filepath.ToSlash(filepath.Dir(path)), "/") {
		if matched, _ := filepath.Match(pattern, part); matched {
			return true
		}
	}
	return false
}

func matchPattern(pattern, path string) bool {
	if strings.HasPrefix(pattern, "/") {
		return matchGlob(pattern[1:], path)
	}
	if strings.Contains(pattern, "/") {
		return matchGlob(pattern, path) || strings.HasSuffix(path, "/"+pattern)
	}
	if matchGlob(pattern, filepath.Base(path)) {
		return true
	}
	return matchGlob(pattern, path)
}

func matchGlob(pattern, path string) bool {
	if strings.Contains(pattern, "**") {
		parts := strings.SplitN(pattern, "**", 2)
		prefix, suffix := parts[0], strings.TrimPrefix(parts[1], "/")
		if prefix != "" && !strings.HasPrefix(path, prefix) {
			return false
		}
		if suffix == "" {
			return true
		}
		if strings.HasSuffix(path, suffix) {
			return true
		}
		for _, part := range strings.Split(path, "/") {
			if matched, _ := filepath.Match(suffix, part); matched {
				return true
			}
		}
		return false
	}

	matched, _ := filepath.Match(pattern, path)
	return matched
}
