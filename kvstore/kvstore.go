// Package kvstore is the durable key-value collaborator behind the
// settings store. Values are opaque bytes; Set stages a value and Commit
// makes staged values durable.
package kvstore

import "ledstack-go/errcode"

type KV interface {
	// Get returns not_found when key has no value.
	Get(key string) ([]byte, error)
	Set(key string, val []byte) error
	Delete(key string) error
	Commit() error
}

// MaxKeyLen matches the 15-character key limit of the sign's original NVS layout.
const MaxKeyLen = 15

// ValidKey accepts lowercase letters, digits, '_' and one level of '/'.
func ValidKey(key string) error {
	const op = "kvstore.key"
	if key == "" || len(key) > MaxKeyLen {
		return errcode.New(errcode.InvalidParams, op, "bad key length")
	}
	slashes := 0
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '_':
		case c == '/' && i > 0 && i < len(key)-1:
			slashes++
		default:
			return errcode.New(errcode.InvalidParams, op, "bad key "+key)
		}
	}
	if slashes > 1 {
		return errcode.New(errcode.InvalidParams, op, "bad key "+key)
	}
	return nil
}

func notFound(op, key string) error {
	return errcode.New(errcode.NotFound, op, key)
}
