// Package kv provides the durable key-value capability backing all domain
// records. Values are JSON-encoded; keys follow the scheme in keys.go.
//
// The capability itself offers no compare-and-swap and no multi-key
// transactions. Services that read-modify-write a record serialize their
// writers with a KeyLock instead.
package kv

import (
	"context"
	"encoding/json"
)

// Item is one key/value pair returned by a prefix scan.
type Item struct {
	Key   string
	Value json.RawMessage
}

// Store is the durable mapping from string key to JSON value.
//
// Get unmarshals the stored value into dest and returns common.ErrorNotFound
// when the key is absent. Set fully overwrites the value. ScanPrefix returns
// all pairs whose key starts with prefix, ordered by key.
type Store interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
	ScanPrefix(ctx context.Context, prefix string) ([]Item, error)
}
