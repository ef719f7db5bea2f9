// Package storage is the durable settings pipeline: a guarded store over a
// kvstore.KV and a slow consumer that drains the storage mailbox.
package storage

import (
	"encoding/binary"
	"sync"

	"ledstack-go/errcode"
	"ledstack-go/kvstore"
	"ledstack-go/types"
	"ledstack-go/x/logx"
)

var log = logx.Tag("storage")

// Settings keys.
const (
	KeyBrightness  = "brightness"
	KeyHeaderText  = "header_txt"
	KeyHeaderColor = "header_col"
	KeyTimeColor   = "time_col"
	KeyBgColor     = "bg_col"

	KeyWiFiSSID     = "wifi/ssid"
	KeyWiFiPassword = "wifi/password"
)

var settingsKeys = []string{KeyBrightness, KeyHeaderText, KeyHeaderColor, KeyTimeColor, KeyBgColor}

// KeyFor maps a durable action to its key.
func KeyFor(a types.Action) (string, bool) {
	switch a {
	case types.SetBrightness:
		return KeyBrightness, true
	case types.SetHeaderText:
		return KeyHeaderText, true
	case types.SetHeaderColor:
		return KeyHeaderColor, true
	case types.SetTimeColor:
		return KeyTimeColor, true
	case types.SetBackgroundColor:
		return KeyBgColor, true
	}
	return "", false
}

// Encode returns the stored form of r's payload: one byte for a level,
// four little-endian bytes for a colour, raw bytes for text.
func Encode(r types.DisplayRequest) ([]byte, bool) {
	if v, ok := r.Level(); ok {
		return []byte{v}, true
	}
	if c, ok := r.Color(); ok {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], c)
		return b[:], true
	}
	if s, ok := r.Text(); ok {
		return []byte(s), true
	}
	return nil, false
}

// Store serialises every access to the KV behind one lock for the life of
// the process.
type Store struct {
	mu sync.Mutex
	kv kvstore.KV
}

func NewStore(kv kvstore.KV) *Store { return &Store{kv: kv} }

// Write persists one durable request: a single keyed Set and a Commit.
// Requests without a key are refused with invalid_params.
func (s *Store) Write(r types.DisplayRequest) error {
	const op = "storage.write"
	key, ok := KeyFor(r.Action())
	if !ok {
		return errcode.New(errcode.InvalidParams, op, r.Action().String()+" has no key")
	}
	val, _ := Encode(r)
	return s.put(op, key, val)
}

func (s *Store) put(op, key string, val []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Set(key, val); err != nil {
		return errcode.Wrap(errcode.WriteFailed, op, err)
	}
	if err := s.kv.Commit(); err != nil {
		return errcode.Wrap(errcode.WriteFailed, op, err)
	}
	return nil
}

// LoadSettings rebuilds the durable settings. Absent or malformed values
// fall back to their defaults.
func (s *Store) LoadSettings() types.DisplaySettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	ds := types.DefaultSettings()
	if b, ok := s.get(KeyBrightness, 1); ok {
		ds.Brightness = b[0]
	}
	if b, ok := s.get(KeyHeaderColor, 4); ok {
		ds.HeaderColor = binary.LittleEndian.Uint32(b)
	}
	if b, ok := s.get(KeyTimeColor, 4); ok {
		ds.TimeColor = binary.LittleEndian.Uint32(b)
	}
	if b, ok := s.get(KeyBgColor, 4); ok {
		ds.BgColor = binary.LittleEndian.Uint32(b)
	}
	if b, ok := s.get(KeyHeaderText, -1); ok && len(b) <= types.MaxTextLen {
		ds.HeaderText = string(b)
	}
	return ds
}

// get reads key and checks its length; size < 0 accepts any length.
func (s *Store) get(key string, size int) ([]byte, bool) {
	b, err := s.kv.Get(key)
	if err != nil {
		if errcode.Of(err) != errcode.NotFound {
			log.Println("load", key, "failed:", err)
		}
		return nil, false
	}
	if size >= 0 && len(b) != size {
		log.Println("ignoring malformed", key, "of", len(b), "bytes")
		return nil, false
	}
	return b, true
}

// SaveSettings writes all five settings in one commit.
func (s *Store) SaveSettings(ds types.DisplaySettings) error {
	const op = "storage.save_settings"
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range ds.Requests() {
		key, _ := KeyFor(r.Action())
		val, _ := Encode(r)
		if err := s.kv.Set(key, val); err != nil {
			return errcode.Wrap(errcode.WriteFailed, op, err)
		}
	}
	if err := s.kv.Commit(); err != nil {
		return errcode.Wrap(errcode.WriteFailed, op, err)
	}
	return nil
}

// Clear deletes the stored settings so the next load yields defaults.
// WiFi credentials are kept.
func (s *Store) Clear() error {
	const op = "storage.clear"
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range settingsKeys {
		if err := s.kv.Delete(k); err != nil {
			return errcode.Wrap(errcode.WriteFailed, op, err)
		}
	}
	if err := s.kv.Commit(); err != nil {
		return errcode.Wrap(errcode.WriteFailed, op, err)
	}
	return nil
}

// SaveWiFi stores access point credentials.
func (s *Store) SaveWiFi(ssid, password string) error {
	const op = "storage.save_wifi"
	if ssid == "" || len(ssid) > 32 || len(password) > 64 {
		return errcode.New(errcode.InvalidParams, op, "ssid 1..32 bytes, password up to 64")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Set(KeyWiFiSSID, []byte(ssid)); err != nil {
		return errcode.Wrap(errcode.WriteFailed, op, err)
	}
	if err := s.kv.Set(KeyWiFiPassword, []byte(password)); err != nil {
		return errcode.Wrap(errcode.WriteFailed, op, err)
	}
	if err := s.kv.Commit(); err != nil {
		return errcode.Wrap(errcode.WriteFailed, op, err)
	}
	return nil
}

// LoadWiFi returns stored credentials; ok is false when no SSID is stored.
func (s *Store) LoadWiFi() (ssid, password string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, found := s.get(KeyWiFiSSID, -1)
	if !found || len(b) == 0 {
		return "", "", false
	}
	p, _ := s.get(KeyWiFiPassword, -1)
	return string(b), string(p), true
}
