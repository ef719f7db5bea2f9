//go:build !rp2040 && !rp2350

package platform

import (
	"errors"
	"io"
	"os"
	"sync"

	"tinygo.org/x/tinyfs"

	"ledstack-go/errcode"
)

const (
	hostFlashEraseBlock = 4096
	hostFlashPage       = 256
	hostFlashBlocks     = 64
)

// OpenBlockDevice returns the settings partition. An empty path gives a
// RAM device that forgets on exit; otherwise a NOR-like image file is
// created or reopened so settings survive simulator restarts.
func OpenBlockDevice(path string) (tinyfs.BlockDevice, error) {
	if path == "" {
		return tinyfs.NewMemoryDevice(hostFlashPage, hostFlashEraseBlock, hostFlashBlocks), nil
	}
	return OpenFileFlash(path, hostFlashEraseBlock*hostFlashBlocks)
}

// FileFlash is a flash image in a host file. Programming may only clear
// bits; EraseBlocks sets a block back to 0xFF.
type FileFlash struct {
	mu   sync.Mutex
	f    *os.File
	size int64
}

var errNeedsErase = errcode.New(errcode.WriteFailed, "flash.write", "write requires erase")

func OpenFileFlash(path string, size int64) (*FileFlash, error) {
	const op = "flash.open"
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, errcode.Wrap(errcode.StoreUnavailable, op, err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, errcode.Wrap(errcode.StoreUnavailable, op, err)
	}
	ff := &FileFlash{f: f, size: size}
	if st.Size() != size {
		if err := f.Truncate(size); err != nil {
			_ = f.Close()
			return nil, errcode.Wrap(errcode.StoreUnavailable, op, err)
		}
		if err := ff.EraseBlocks(0, size/hostFlashEraseBlock); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return ff, nil
}

func (f *FileFlash) Size() int64           { return f.size }
func (f *FileFlash) WriteBlockSize() int64 { return 1 }
func (f *FileFlash) EraseBlockSize() int64 { return hostFlashEraseBlock }

func (f *FileFlash) ReadAt(p []byte, off int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if off < 0 || off+int64(len(p)) > f.size {
		return 0, io.ErrUnexpectedEOF
	}
	return f.f.ReadAt(p, off)
}

func (f *FileFlash) WriteAt(p []byte, off int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if off < 0 || off+int64(len(p)) > f.size {
		return 0, io.ErrShortWrite
	}
	cur := make([]byte, len(p))
	if _, err := f.f.ReadAt(cur, off); err != nil && !errors.Is(err, io.EOF) {
		return 0, errcode.Wrap(errcode.WriteFailed, "flash.write", err)
	}
	for i := range p {
		if cur[i]&p[i] != p[i] {
			return 0, errNeedsErase
		}
	}
	return f.f.WriteAt(p, off)
}

func (f *FileFlash) EraseBlocks(start, n int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if start < 0 || (start+n)*hostFlashEraseBlock > f.size {
		return errcode.New(errcode.InvalidParams, "flash.erase", "range outside device")
	}
	var blank [hostFlashEraseBlock]byte
	for i := range blank {
		blank[i] = 0xFF
	}
	for b := start; b < start+n; b++ {
		if _, err := f.f.WriteAt(blank[:], b*hostFlashEraseBlock); err != nil {
			return errcode.Wrap(errcode.WriteFailed, "flash.erase", err)
		}
	}
	return nil
}

func (f *FileFlash) Close() error { return f.f.Close() }
