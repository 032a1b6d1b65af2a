package cache

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"time"
)

// entryMagic starts every entry file. Files without it are dropped on read.
var entryMagic = []byte("LRC1")

// headerLen is the magic plus the big-endian expiry in Unix nanoseconds
// (0 never expires).
const headerLen = 4 + 8

// FileCache stores one file per entry below a directory, sharded by the
// first byte of the key hash. Payloads are kept raw so PNG artifacts and
// binary cost fields are not inflated by an encoding.
//
// Parallel routes may share a directory: writes go through a temp file and
// a rename, and the last writer of a key wins.
type FileCache struct {
	dir string
}

// NewFileCache opens (and creates) a cache directory.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	data, expires, ok := decodeEntry(raw)
	if !ok || (!expires.IsZero() && time.Now().After(expires)) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return data, true, nil
}

func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}

	path := c.path(key)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(encodeEntry(data, expires)); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (c *FileCache) Delete(ctx context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

// Clear removes every entry and shard directory below Dir and reports how
// many entries were removed. A missing directory counts as empty.
func (c *FileCache) Clear() (int, error) {
	shards, err := os.ReadDir(c.dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, shard := range shards {
		if !shard.IsDir() {
			continue
		}
		dir := filepath.Join(c.dir, shard.Name())
		files, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, f := range files {
			if !f.IsDir() && os.Remove(filepath.Join(dir, f.Name())) == nil {
				removed++
			}
		}
		_ = os.Remove(dir)
	}
	return removed, nil
}

// Stats reports the number of entries below Dir and their size on disk.
// Expired entries are counted until a Get or Clear removes them.
func (c *FileCache) Stats() (entries int, size int64, err error) {
	shards, err := os.ReadDir(c.dir)
	if os.IsNotExist(err) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, err
	}
	for _, shard := range shards {
		if !shard.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(c.dir, shard.Name()))
		if err != nil {
			continue
		}
		for _, f := range files {
			info, err := f.Info()
			if err != nil || f.IsDir() || filepath.Ext(f.Name()) != ".entry" {
				continue
			}
			entries++
			size += info.Size()
		}
	}
	return entries, size, nil
}

func (c *FileCache) Close() error { return nil }

func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(c.dir, h[:2], h[2:]+".entry")
}

func encodeEntry(data []byte, expires time.Time) []byte {
	buf := make([]byte, headerLen, headerLen+len(data))
	copy(buf, entryMagic)
	if !expires.IsZero() {
		binary.BigEndian.PutUint64(buf[4:], uint64(expires.UnixNano()))
	}
	return append(buf, data...)
}

func decodeEntry(raw []byte) (data []byte, expires time.Time, ok bool) {
	if len(raw) < headerLen || !bytes.Equal(raw[:4], entryMagic) {
		return nil, time.Time{}, false
	}
	if ns := binary.BigEndian.Uint64(raw[4:headerLen]); ns != 0 {
		expires = time.Unix(0, int64(ns))
	}
	return raw[headerLen:], expires, true
}

var _ Cache = (*FileCache)(nil)
