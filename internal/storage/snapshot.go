package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dohr-michael/taskboard/internal/tasks"
)

// DefaultKey is the storage key holding the task snapshot.
const DefaultKey = "tasks"

// SnapshotPersister stores the whole task collection as one JSON array
// under a single key.
type SnapshotPersister struct {
	kv      KV
	key     string
	timeout time.Duration
	onError func(err error, count int)
}

// NewSnapshotPersister returns a persister writing to key in kv.
func NewSnapshotPersister(kv KV, key string) *SnapshotPersister {
	if key == "" {
		key = DefaultKey
	}
	return &SnapshotPersister{kv: kv, key: key, timeout: 5 * time.Second}
}

// Load returns the raw stored snapshot, or nil when the key is absent.
func (p *SnapshotPersister) Load() ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	data, ok, err := p.kv.Get(ctx, p.key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return data, nil
}

// Save serializes the full snapshot and writes it.
func (p *SnapshotPersister) Save(snapshot []tasks.Task) error {
	if snapshot == nil {
		snapshot = []tasks.Task{}
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := p.kv.Set(ctx, p.key, data); err != nil {
		if p.onError != nil {
			p.onError(err, len(snapshot))
		}
		return err
	}
	return nil
}

// OnSaveError registers fn to be told about failed writes. The in-memory
// collection keeps the change either way.
func (p *SnapshotPersister) OnSaveError(fn func(err error, count int)) {
	p.onError = fn
}

// Clear removes the stored snapshot.
func (p *SnapshotPersister) Clear(ctx context.Context) error {
	return p.kv.Delete(ctx, p.key)
}
