package kvstore

import (
	"io"
	"os"
	"strings"
	"sync"

	"tinygo.org/x/tinyfs"
	"tinygo.org/x/tinyfs/littlefs"

	"ledstack-go/errcode"
	"ledstack-go/x/logx"
)

var log = logx.Tag("kvstore")

// LFS keeps one littlefs file per key under a root directory. A value is
// written to "<file>.tmp" and renamed over the live file, so a reader sees
// either the old or the new value, never a partial one.
type LFS struct {
	mu   sync.Mutex
	fs   *littlefs.LFS
	root string
}

// OpenLFS mounts the filesystem on dev, formatting it when mount fails.
func OpenLFS(dev tinyfs.BlockDevice, root string) (*LFS, error) {
	const op = "kvstore.open"
	fs := littlefs.New(dev)
	fs.Configure(&littlefs.Config{
		CacheSize:     512,
		LookaheadSize: 512,
		BlockCycles:   100,
	})
	if err := fs.Mount(); err != nil {
		log.Println("mount failed, formatting:", err)
		if err := fs.Format(); err != nil {
			return nil, errcode.Wrap(errcode.StoreUnavailable, op, err)
		}
		if err := fs.Mount(); err != nil {
			return nil, errcode.Wrap(errcode.StoreUnavailable, op, err)
		}
	}
	root = strings.Trim(root, "/")
	if root == "" {
		root = "settings"
	}
	if _, err := fs.Stat(root); err != nil {
		if err := fs.Mkdir(root, 0o755); err != nil {
			_ = fs.Unmount()
			return nil, errcode.Wrap(errcode.StoreUnavailable, op, err)
		}
	}
	return &LFS{fs: fs, root: root}, nil
}

func (s *LFS) path(key string) string {
	return s.root + "/" + strings.ReplaceAll(key, "/", ".")
}

func (s *LFS) Get(key string) ([]byte, error) {
	const op = "kvstore.get"
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.path(key)
	info, err := s.fs.Stat(p)
	if err != nil {
		return nil, notFound(op, key)
	}
	f, err := s.fs.Open(p)
	if err != nil {
		return nil, errcode.Wrap(errcode.StoreUnavailable, op, err)
	}
	defer f.Close()
	buf := make([]byte, info.Size())
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, errcode.Wrap(errcode.StoreUnavailable, op, err)
	}
	return buf, nil
}

func (s *LFS) Set(key string, val []byte) error {
	const op = "kvstore.set"
	if err := ValidKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.path(key)
	tmp := p + ".tmp"
	f, err := s.fs.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC)
	if err != nil {
		return errcode.Wrap(errcode.WriteFailed, op, err)
	}
	if _, err := f.Write(val); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(tmp)
		return errcode.Wrap(errcode.WriteFailed, op, err)
	}
	if err := f.Close(); err != nil {
		_ = s.fs.Remove(tmp)
		return errcode.Wrap(errcode.WriteFailed, op, err)
	}
	if err := s.fs.Rename(tmp, p); err != nil {
		_ = s.fs.Remove(tmp)
		return errcode.Wrap(errcode.WriteFailed, op, err)
	}
	return nil
}

func (s *LFS) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.path(key)
	if _, err := s.fs.Stat(p); err != nil {
		return nil
	}
	if err := s.fs.Remove(p); err != nil {
		return errcode.Wrap(errcode.WriteFailed, "kvstore.delete", err)
	}
	return nil
}

// Commit is a no-op: littlefs has synced the value by the time Set's
// rename returns.
func (s *LFS) Commit() error { return nil }

// Close unmounts the filesystem.
func (s *LFS) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fs.Unmount()
}
