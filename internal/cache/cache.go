package cache

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/henrik/wb/internal/config"
	"github.com/henrik/wb/internal/hash"
	"github.com/pierrec/lz4/v4"
	_ "modernc.org/sqlite"
)

const (
	// InlineThreshold is the max compressed size stored inline in SQLite;
	// larger artifacts go to the S3 tier when one is configured.
	InlineThreshold = 256 * 1024 // 256KB
)

// Cache is the build cache: artifacts from previous builds keyed by the
// content hash of the inputs that produced them. Local tier is SQLite,
// with an optional S3 tier for artifacts above the inline threshold.
type Cache struct {
	db      *sql.DB
	s3      *S3Client // nil when S3 is not configured
	writeMu sync.Mutex
}

// Open opens (creating if needed) the cache for a project.
func Open(projectDir string, cfg *config.Config) (*Cache, error) {
	dbPath := filepath.Join(projectDir, cfg.CachePath)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, err
	}

	dsn := dbPath + "?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout=10000"); err != nil {
		return nil, fmt.Errorf("failed to set busy_timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	c := &Cache{db: db}

	if cfg.S3Bucket != "" {
		s3Client, err := NewS3Client(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		c.s3 = s3Client
	}

	if err := c.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate cache database: %w", err)
	}
	return c, nil
}

func (c *Cache) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS artifacts (
		key TEXT NOT NULL,
		path TEXT NOT NULL,
		size INTEGER NOT NULL,
		original_size INTEGER NOT NULL,
		inline_data BLOB,
		s3_key TEXT,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (key, path)
	);

	CREATE INDEX IF NOT EXISTS idx_artifacts_created_at ON artifacts(created_at);
	`
	_, err := c.db.Exec(schema)
	return err
}

// Close closes the cache.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Key derives the cache key for a build: the content hash over every
// source file (sorted, ignore-filtered) plus the extra strings that also
// shape the output (mode flags, resolved injection values).
func Key(dir string, ignore func(path string, isDir bool) bool, extra ...string) (string, error) {
	var parts []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if ignore != nil && ignore(rel, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		id, err := hash.Asset(data)
		if err != nil {
			return err
		}
		parts = append(parts, filepath.ToSlash(rel)+"="+id)
		return nil
	})
	if err != nil {
		return "", err
	}

	sort.Strings(parts)
	parts = append(parts, extra...)
	return hash.Asset([]byte(strings.Join(parts, "\n")))
}

// Store saves every file under outDir as the artifact set for key.
func (c *Cache) Store(ctx context.Context, key, outDir string) error {
	return filepath.WalkDir(outDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(outDir, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return c.put(ctx, key, filepath.ToSlash(rel), data)
	})
}

func (c *Cache) put(ctx context.Context, key, rel string, data []byte) error {
	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return err
	}

	// If compression didn't help, store uncompressed.
	stored := data
	if n > 0 && n < len(data) {
		stored = compressed[:n]
	}

	var inline []byte
	var s3Key string
	if len(stored) < InlineThreshold || c.s3 == nil {
		inline = stored
	} else {
		s3Key = "cache/" + key + "/" + rel
		if err := c.s3.Put(ctx, s3Key, stored); err != nil {
			return fmt.Errorf("failed to upload artifact to S3: %w", err)
		}
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_, err = c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO artifacts (key, path, size, original_size, inline_data, s3_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, key, rel, len(stored), len(data), inline, s3Key, time.Now().Unix())
	return err
}

// Restore writes the artifact set for key into outDir. It reports false
// without touching outDir when the key is not cached.
func (c *Cache) Restore(ctx context.Context, key, outDir string) (bool, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT path, size, original_size, inline_data, s3_key FROM artifacts WHERE key = ?
	`, key)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	type artifact struct {
		path         string
		size         int64
		originalSize int64
		inline       []byte
		s3Key        sql.NullString
	}
	var artifacts []artifact
	for rows.Next() {
		var a artifact
		if err := rows.Scan(&a.path, &a.size, &a.originalSize, &a.inline, &a.s3Key); err != nil {
			return false, err
		}
		artifacts = append(artifacts, a)
	}
	if err := rows.Err(); err != nil {
		return false, err
	}
	if len(artifacts) == 0 {
		return false, nil
	}

	for _, a := range artifacts {
		stored := a.inline
		if stored == nil && a.s3Key.Valid {
			if c.s3 == nil {
				return false, fmt.Errorf("artifact %s lives in S3 but no bucket is configured", a.path)
			}
			stored, err = c.s3.Get(ctx, a.s3Key.String)
			if err != nil {
				return false, fmt.Errorf("failed to fetch artifact from S3: %w", err)
			}
		}

		data := stored
		if int64(len(stored)) != a.originalSize {
			buf := make([]byte, a.originalSize)
			n, err := lz4.UncompressBlock(stored, buf)
			if err != nil {
				return false, fmt.Errorf("failed to decompress artifact %s: %w", a.path, err)
			}
			data = buf[:n]
		}

		dst := filepath.Join(outDir, filepath.FromSlash(a.path))
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return false, err
		}
		if err := os.WriteFile(dst, data, 0644); err != nil {
			return false, err
		}
	}
	return true, nil
}

// Prune drops artifact sets older than the cutoff.
func (c *Cache) Prune(ctx context.Context, cutoff time.Time) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_, err := c.db.ExecContext(ctx,
		`DELETE FROM artifacts WHERE created_at < ?`, cutoff.Unix())
	return err
}
