package history

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/deusflow/newsrelay/internal/logger"
)

// FileStore persists the window as a human-readable JSON array.
type FileStore struct {
	filePath string
	window   time.Duration
	records  []Record
	mu       sync.RWMutex
}

func NewFileStore(filePath string, window time.Duration) *FileStore {
	return &FileStore{
		filePath: filePath,
		window:   window,
	}
}

func (fs *FileStore) Load() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := os.ReadFile(fs.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("history file not found, starting empty", "path", fs.filePath)
			return nil
		}
		logger.Warn("failed to read history file, starting empty", "path", fs.filePath, "error", err)
		return nil
	}

	if len(data) == 0 {
		return nil
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		logger.Warn("failed to parse history file, starting empty", "path", fs.filePath, "error", err)
		return nil
	}

	fs.records = pruneRecords(records, time.Now(), fs.window)
	logger.Info("loaded history", "records", len(fs.records), "path", fs.filePath)
	return nil
}

func (fs *FileStore) Prune(now time.Time) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.records = pruneRecords(fs.records, now, fs.window)
}

func (fs *FileStore) Append(text string, now time.Time) error {
	fs.mu.Lock()
	fs.records = pruneRecords(fs.records, now, fs.window)
	fs.records = append(fs.records, Record{Text: text, Timestamp: now})
	snapshot := make([]Record, len(fs.records))
	copy(snapshot, fs.records)
	fs.mu.Unlock()

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %v", err)
	}
	if err := os.WriteFile(fs.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write history file: %v", err)
	}
	return nil
}

func (fs *FileStore) Snapshot() []Record {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	out := make([]Record, len(fs.records))
	copy(out, fs.records)
	return out
}
