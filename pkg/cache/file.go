package cache

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"github.com/taigrr/bricklayer/pkg/errors"
	"github.com/taigrr/bricklayer/pkg/voxel"
)

// FileCache keeps one zstd-compressed grid per key on disk.
type FileCache struct {
	dir string
}

// NewFileCache creates a cache rooted at dir, creating it if needed.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "create cache dir")
	}
	return &FileCache{dir: dir}, nil
}

// DefaultDir returns the per-user cache directory for bricklayer.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "bricklayer", "grids"), nil
}

// Dir returns the cache root.
func (c *FileCache) Dir() string { return c.dir }

func (c *FileCache) Get(ctx context.Context, key string) (*voxel.Grid, bool, error) {
	path := c.path(key)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeIO, err, "read cache entry")
	}
	g, _, err := voxel.Decode(bytes.NewReader(data))
	if err != nil {
		// Corrupt entry: treat as a miss.
		_ = os.Remove(path)
		return nil, false, nil
	}
	return g, true, nil
}

// Set writes the entry through a temporary file so readers never see a
// partial grid.
func (c *FileCache) Set(ctx context.Context, key string, g *voxel.Grid) error {
	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create cache shard")
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".grid-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create cache entry")
	}
	if err := voxel.Encode(tmp, g); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCodeIO, err, "encode cache entry")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCodeIO, err, "close cache entry")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCodeIO, err, "commit cache entry")
	}
	return nil
}

func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeIO, err, "delete cache entry")
	}
	return nil
}

// Clear removes every entry.
func (c *FileCache) Clear() error {
	if err := os.RemoveAll(c.dir); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "clear cache")
	}
	return os.MkdirAll(c.dir, 0o755)
}

func (c *FileCache) Close() error { return nil }

// path shards entries by the first two hex characters of the key.
func (c *FileCache) path(key string) string {
	if len(key) < 3 {
		return filepath.Join(c.dir, "_", key+".grid.zst")
	}
	return filepath.Join(c.dir, key[:2], key[2:]+".grid.zst")
}

var _ Cache = (*FileCache)(nil)
