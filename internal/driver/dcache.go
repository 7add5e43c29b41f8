package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"ownck/internal/borrowck"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// DiskCache хранит результаты проверки по CacheKey на диске.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is the cached outcome of verifying one program.
type DiskPayload struct {
	Schema     uint16
	Path       string
	Violations []borrowck.Violation
	Dropped    int
	Aborted    bool
	Bindings   int
	Borrows    int
	CheckedAt  time.Time
}

// OpenDiskCache initializes a disk cache under $XDG_CACHE_HOME/<app>
// (~/.cache/<app> when unset).
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt initializes a disk cache in dir.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := key.String()
	// подкаталог по первым двум символам, чтобы не держать всё в одной папке
	return filepath.Join(c.dir, "results", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key Digest, payload *DiskPayload) error {
	if c == nil || payload == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		// после успешного Rename файла уже нет
		if rmErr := os.Remove(tmp); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "failed to remove temp file: %v\n", rmErr)
		}
	}()

	payload.Schema = diskCacheSchemaVersion
	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(tmp, p)
}

// Get reads a payload. A missing entry or one written by another schema
// version is a miss.
func (c *DiskCache) Get(key Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	if out.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll invalidates the cache.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.RemoveAll(old)
}

func resultToPayload(path string, res *borrowck.Result) *DiskPayload {
	return &DiskPayload{
		Schema:     diskCacheSchemaVersion,
		Path:       path,
		Violations: res.Violations,
		Dropped:    res.Dropped,
		Aborted:    res.Aborted,
		Bindings:   res.Bindings,
		Borrows:    res.Borrows,
		CheckedAt:  time.Now().UTC(),
	}
}

func payloadToResult(p *DiskPayload) borrowck.Result {
	return borrowck.Result{
		Violations: p.Violations,
		Dropped:    p.Dropped,
		Aborted:    p.Aborted,
		Bindings:   p.Bindings,
		Borrows:    p.Borrows,
	}
}
