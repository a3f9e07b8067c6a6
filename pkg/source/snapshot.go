package source

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/vyvo/netblank/pkg/netconfig"
)

type snapshotFile struct {
	SavedAt   time.Time         `json:"savedAt"`
	Endpoints []netconfig.Entry `json:"endpoints"`
}

// Snapshot persists endpoints as a JSON file. A missing file configures
// nothing.
type Snapshot struct {
	Path string
}

func (s Snapshot) Configure(_ context.Context, cfg netconfig.Config) error {
	if s.Path == "" {
		return nil
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return errors.Wrap(err, "read snapshot")
	}
	var file snapshotFile
	if err := json.Unmarshal(data, &file); err != nil {
		return errors.Wrap(err, "parse snapshot")
	}
	return apply(cfg, file.Endpoints)
}

// saveLocks serializes saves per snapshot path.
var saveLocks sync.Map

func lockFor(path string) *sync.Mutex {
	mu, _ := saveLocks.LoadOrStore(filepath.Clean(path), &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Save writes every endpoint of cfg to the snapshot file, replacing it
// atomically. Saves to the same path run one at a time, so the file always
// holds the entries of the last save to finish.
func (s Snapshot) Save(cfg netconfig.Config) error {
	if s.Path == "" {
		return nil
	}
	mu := lockFor(s.Path)
	mu.Lock()
	defer mu.Unlock()

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create snapshot dir")
	}
	payload, err := json.MarshalIndent(snapshotFile{
		SavedAt:   time.Now().UTC(),
		Endpoints: cfg.Entries(),
	}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal snapshot")
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create snapshot temp file")
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "write snapshot")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close snapshot")
	}
	return errors.Wrap(os.Rename(tmp.Name(), s.Path), "replace snapshot")
}
