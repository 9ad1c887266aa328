package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rustyeddy/tradejournal/ledger"
)

// FileStore keeps the three values as a flat JSON object in one file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFile(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Load(ctx context.Context) (ledger.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return ledger.State{}, ledger.ErrNoState
	}
	if err != nil {
		return ledger.State{}, fmt.Errorf("read %s: %w", f.path, err)
	}

	vals := map[string]string{}
	if err := json.Unmarshal(data, &vals); err != nil {
		return ledger.State{}, fmt.Errorf("%w: %s: %v", ledger.ErrCorruptState, f.path, err)
	}
	return decodeState(vals)
}

// Save writes to a temp file and renames it over the old one.
func (f *FileStore) Save(ctx context.Context, s ledger.State) error {
	vals, err := encodeState(s)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(vals, "", "  ")
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tradejournal-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}

func (f *FileStore) Close() error {
	return nil
}
