package firmware

import (
	"sync"

	"tinygo.org/x/tinyfs"

	"ledstack-go/kvstore"
)

// MountKV returns an OpenKV hook that mounts the settings filesystem on
// first use and hands every later boot the same mount. A failed mount is
// retried on the next boot.
func MountKV(dev tinyfs.BlockDevice, root string) func() (kvstore.KV, error) {
	var (
		mu sync.Mutex
		kv *kvstore.LFS
	)
	return func() (kvstore.KV, error) {
		mu.Lock()
		defer mu.Unlock()
		if kv != nil {
			return kv, nil
		}
		l, err := kvstore.OpenLFS(dev, root)
		if err != nil {
			return nil, err
		}
		kv = l
		return kv, nil
	}
}
