package storage

import (
	"context"
	"sync"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// memBucket is an in-memory KVBucket with the same visibility semantics as
// JetStream KV: a value is visible only after its Put completes, and
// concurrent Puts to one key resolve to last-write-wins.
type memBucket struct {
	name string

	mu       sync.RWMutex
	revision uint64
	entries  map[string]memEntry
}

func newMemBucket(name string) *memBucket {
	return &memBucket{
		name:    name,
		entries: make(map[string]memEntry),
	}
}

func (b *memBucket) Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	entry, ok := b.entries[key]
	if !ok {
		return nil, jetstream.ErrKeyNotFound
	}
	return entry, nil
}

func (b *memBucket) Put(ctx context.Context, key string, value []byte) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.revision++
	data := make([]byte, len(value))
	copy(data, value)
	b.entries[key] = memEntry{
		bucket:   b.name,
		key:      key,
		value:    data,
		revision: b.revision,
		created:  time.Now(),
	}
	return b.revision, nil
}

func (b *memBucket) Keys(ctx context.Context, opts ...jetstream.WatchOpt) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.entries) == 0 {
		return nil, jetstream.ErrNoKeysFound
	}
	keys := make([]string, 0, len(b.entries))
	for key := range b.entries {
		keys = append(keys, key)
	}
	return keys, nil
}

// memEntry implements jetstream.KeyValueEntry for memBucket values.
type memEntry struct {
	bucket   string
	key      string
	value    []byte
	revision uint64
	created  time.Time
}

func (e memEntry) Bucket() string                  { return e.bucket }
func (e memEntry) Key() string                     { return e.key }
func (e memEntry) Value() []byte                   { return e.value }
func (e memEntry) Revision() uint64                { return e.revision }
func (e memEntry) Created() time.Time              { return e.created }
func (e memEntry) Delta() uint64                   { return 0 }
func (e memEntry) Operation() jetstream.KeyValueOp { return jetstream.KeyValuePut }
