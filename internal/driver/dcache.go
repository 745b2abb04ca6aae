package driver

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"tern/internal/diag"
	"tern/internal/project"
	"tern/internal/sema"
	"tern/internal/source"
	"tern/internal/version"
)

// Current schema version - increment when CachePayload format changes
const diskCacheSchemaVersion uint16 = 1

// DiskCache keeps run results on disk, keyed by the input hash.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// CachePayload is one cached run.
type CachePayload struct {
	Schema uint16
	Files  []CachedFile
}

// CachedFile mirrors FileResult without pointers.
type CachedFile struct {
	Path        string
	Hash        project.Digest
	Diagnostics []diag.Diagnostic
	Calls       []sema.CallRecord
}

// OpenDiskCache opens (creating if needed) a cache directory. An empty dir
// means $XDG_CACHE_HOME/<app> or ~/.cache/<app>.
func OpenDiskCache(app, dir string) (*DiskCache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, app)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string { return c.dir }

func (c *DiskCache) pathFor(key project.Digest) string {
	return filepath.Join(c.dir, "runs", hex.EncodeToString(key[:])+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key project.Digest, payload *CachePayload) error {
	if c == nil {
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
	enc := msgpack.NewEncoder(f)
	enc.SetOmitEmpty(true)
	if err := enc.Encode(payload); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	// atomic replace
	return os.Rename(tmp, p)
}

// Get reads a payload; a missing entry or a foreign schema is a miss.
func (c *DiskCache) Get(key project.Digest, out *CachePayload) (bool, error) {
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
	return out.Schema == diskCacheSchemaVersion, nil
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
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

// cacheKey: H(schema, version, checkers || prelude || file1 || ...). Paths
// are part of the key because call records carry them.
func cacheKey(fs *source.FileSet, checkers *sema.Checkers, ids []source.FileID) project.Digest {
	names := sema.BuiltinCheckerNames()
	if checkers != nil {
		names = checkers.Names()
	}
	head := []string{strconv.Itoa(int(diskCacheSchemaVersion)), version.Version}
	head = append(head, names...)
	parts := make([]project.Digest, 0, 2*len(ids))
	for _, id := range ids {
		f := fs.Get(id)
		parts = append(parts, project.HashStrings(f.Path), project.Digest(f.Hash))
	}
	return project.Combine(project.HashStrings(head...), parts...)
}

func newPayload(fs *source.FileSet, files []FileResult) *CachePayload {
	p := &CachePayload{Schema: diskCacheSchemaVersion, Files: make([]CachedFile, len(files))}
	for i, fr := range files {
		p.Files[i] = CachedFile{
			Path:        fr.Path,
			Hash:        project.Digest(fs.Get(fr.FileID).Hash),
			Diagnostics: fr.Bag.Items(),
			Calls:       fr.Calls,
		}
	}
	return p
}

// matches guards against hash collisions on the key and reordered inputs.
func (p *CachePayload) matches(fs *source.FileSet, ids []source.FileID) bool {
	if len(p.Files) != len(ids) {
		return false
	}
	for i, id := range ids {
		f := fs.Get(id)
		if p.Files[i].Path != f.Path || p.Files[i].Hash != project.Digest(f.Hash) {
			return false
		}
	}
	return true
}

// restore rebuilds FileResults; FileIDs are stable because files are added
// to a fresh FileSet in the same order.
func (p *CachePayload) restore(ids []source.FileID) []FileResult {
	out := make([]FileResult, len(p.Files))
	for i, cf := range p.Files {
		bag := diag.NewBag(0)
		for _, d := range cf.Diagnostics {
			bag.Add(d)
		}
		out[i] = FileResult{Path: cf.Path, FileID: ids[i], Bag: bag, Calls: cf.Calls}
	}
	return out
}
