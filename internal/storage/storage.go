// Package storage provides the durable key-value slot the chat history lives in.
//
// Every backend stores opaque bytes under a string key. Backends never interpret
// the value; the history package owns the encoding.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get when nothing was stored under the key.
	ErrNotFound = errors.New("storage: key not found")
	// ErrQuotaExceeded is returned by Set when the value does not fit the quota.
	ErrQuotaExceeded = errors.New("storage: quota exceeded")
)

// KV is a durable key-value slot.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

type scoped struct {
	kv    KV
	scope string
}

// Scoped prefixes every key with scope, so several origins can share one
// backend without seeing each other's values. An empty scope returns kv as is.
func Scoped(kv KV, scope string) KV {
	if scope == "" {
		return kv
	}
	return &scoped{kv: kv, scope: scope}
}

func (s *scoped) Get(ctx context.Context, key string) ([]byte, error) {
	return s.kv.Get(ctx, s.scope+":"+key)
}

func (s *scoped) Set(ctx context.Context, key string, value []byte) error {
	return s.kv.Set(ctx, s.scope+":"+key, value)
}
