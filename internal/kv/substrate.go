// Package kv holds the durable key-value substrates the ledger is stored in.
// Every substrate stores raw string blobs under string keys and is used
// synchronously by the ledger.
package kv

import "errors"

// ErrEmptyKey is returned when a value is written under an empty key.
var ErrEmptyKey = errors.New("empty key")

// Substrate is a synchronous durable key-value store.
type Substrate interface {
	// Get returns the raw value stored under key. ok is false when the key
	// has never been written.
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// Batcher is implemented by substrates able to write several keys so that
// either all of them or none become visible.
type Batcher interface {
	SetMany(entries []Entry) error
}

// Entry is a single key/value pair of a batched write.
type Entry struct {
	Key   string
	Value string
}

// SetAll writes entries in one batch when s supports it, otherwise one by
// one in the given order, stopping at the first failure.
func SetAll(s Substrate, entries ...Entry) error {
	for _, e := range entries {
		if e.Key == "" {
			return ErrEmptyKey
		}
	}
	if b, ok := s.(Batcher); ok {
		return b.SetMany(entries)
	}
	for _, e := range entries {
		if err := s.Set(e.Key, e.Value); err != nil {
			return err
		}
	}
	return nil
}

// WithPrefix returns a view of s where every key is prefixed, so several
// ledgers can share one substrate. An empty prefix returns s unchanged.
func WithPrefix(s Substrate, prefix string) Substrate {
	if prefix == "" {
		return s
	}
	return &prefixed{inner: s, prefix: prefix}
}

type prefixed struct {
	inner  Substrate
	prefix string
}

func (p *prefixed) Get(key string) (string, bool, error) {
	return p.inner.Get(p.prefix + key)
}

func (p *prefixed) Set(key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return p.inner.Set(p.prefix+key, value)
}

func (p *prefixed) SetMany(entries []Entry) error {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = Entry{Key: p.prefix + e.Key, Value: e.Value}
	}
	return SetAll(p.inner, out...)
}
