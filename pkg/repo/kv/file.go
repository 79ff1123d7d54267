package kv

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/scienceol/molbank/pkg/common/code"
	"github.com/scienceol/molbank/pkg/repo"
)

// fileStore keeps every key in one JSON object on disk, rewritten whole on Set.
type fileStore struct {
	path string
	mu   sync.Mutex
}

func NewFile(path string) repo.KVStore {
	return &fileStore{path: path}
}

func (f *fileStore) load() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, code.StoreReadErr.WithErr(err)
	}
	if len(data) == 0 {
		return map[string]json.RawMessage{}, nil
	}
	items := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, code.StoreReadErr.WithErr(err)
	}
	return items, nil
}

func (f *fileStore) save(items map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return code.StoreWriteErr.WithErr(err)
	}
	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return code.StoreWriteErr.WithErr(err)
		}
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return code.StoreWriteErr.WithErr(err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return code.StoreWriteErr.WithErr(err)
	}
	return nil
}

func (f *fileStore) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items, err := f.load()
	if err != nil {
		return nil, err
	}
	v, ok := items[key]
	if !ok {
		return nil, code.RecordNotFound.WithMsgf("key: %s", key)
	}
	return []byte(v), nil
}

func (f *fileStore) Set(_ context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return code.StoreWriteErr.WithMsg("value is not valid json")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	items, err := f.load()
	if err != nil {
		// 文件损坏时整体重写
		items = map[string]json.RawMessage{}
	}
	items[key] = json.RawMessage(value)
	return f.save(items)
}

func (f *fileStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	items, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := items[key]; !ok {
		return nil
	}
	delete(items, key)
	return f.save(items)
}
