package manifest

import (
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"
)

// Entry records one successfully processed source file.
type Entry struct {
	Timestamp   string `json:"timestamp"`
	Provider    string `json:"provider"`
	ContentHash string `json:"content_hash"`
	FileName    string `json:"file_name"`
}

type fileData struct {
	ProcessedFiles map[string]Entry `json:"processed_files"`
	FailedFiles    []string         `json:"failed_files"`
	Timestamp      string           `json:"timestamp"`
}

// Manifest is the persisted incremental-processing ledger. Every mutation is
// written back to disk immediately so a crash loses at most the in-flight
// file's record. All methods are safe for concurrent use; each logical
// mutation holds the lock across read-check-modify-persist as one unit.
type Manifest struct {
	mu          sync.Mutex
	path        string
	incremental bool
	data        fileData
}

// Load reads the manifest at path, or initializes an empty one if the file is
// missing or unreadable. A corrupt manifest is not fatal: the pipeline is
// idempotent, so starting fresh only costs reprocessing.
func Load(path string, incremental bool) *Manifest {
	m := &Manifest{
		path:        path,
		incremental: incremental,
		data: fileData{
			ProcessedFiles: make(map[string]Entry),
			FailedFiles:    []string{},
			Timestamp:      time.Now().Format(time.RFC3339),
		},
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return m
	}

	var data fileData
	if err := json.Unmarshal(raw, &data); err != nil {
		log.Printf("[Manifest] Failed to parse %s, starting fresh: %v", path, err)
		return m
	}
	if data.ProcessedFiles == nil {
		data.ProcessedFiles = make(map[string]Entry)
	}
	if data.FailedFiles == nil {
		data.FailedFiles = []string{}
	}
	m.data = data
	log.Printf("[Manifest] Loaded manifest with %d processed file(s)", len(data.ProcessedFiles))
	return m
}

// ProcessedCount returns the number of recorded successful files.
func (m *Manifest) ProcessedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data.ProcessedFiles)
}

// Entry returns the stored entry for a source path, if any.
func (m *Manifest) Entry(path string) (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.data.ProcessedFiles[path]
	return e, ok
}

// IsProcessed reports whether path can be skipped: incremental mode must be
// on, the path must be in the manifest, the previously written output file
// must still exist, and the current content hash must match the stored one.
// Any check failing forces reprocessing.
func (m *Manifest) IsProcessed(path, outputPath string) bool {
	if !m.incremental {
		return false
	}

	m.mu.Lock()
	stored, ok := m.data.ProcessedFiles[path]
	m.mu.Unlock()
	if !ok {
		return false
	}

	if _, err := os.Stat(outputPath); err != nil {
		log.Printf("[Manifest] Output missing, reprocessing: %s", path)
		return false
	}

	content, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[Manifest] Cannot read %s, reprocessing: %v", path, err)
		return false
	}

	if ComputeHash(string(content)) != stored.ContentHash {
		log.Printf("[Manifest] Source changed, reprocessing: %s", path)
		return false
	}

	return true
}

// MarkProcessed records the outcome for a file and persists the manifest. On
// success the entry is created or overwritten with a fresh content hash; on
// failure the path is appended to the failed list without duplicates.
// Persistence failures are logged, not returned: the worst case is
// unnecessary reprocessing on the next run.
func (m *Manifest) MarkProcessed(path, provider, fileName string, success bool, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if success {
		if content == "" {
			raw, err := os.ReadFile(path)
			if err != nil {
				log.Printf("[Manifest] Could not compute hash for %s: %v", path, err)
			} else {
				content = string(raw)
			}
		}
		m.data.ProcessedFiles[path] = Entry{
			Timestamp:   time.Now().Format(time.RFC3339),
			Provider:    provider,
			ContentHash: ComputeHash(content),
			FileName:    fileName,
		}
	} else {
		for _, p := range m.data.FailedFiles {
			if p == path {
				m.persistLocked()
				return
			}
		}
		m.data.FailedFiles = append(m.data.FailedFiles, path)
	}

	m.persistLocked()
}

// persistLocked writes the manifest to disk. Caller must hold m.mu.
func (m *Manifest) persistLocked() {
	blob, err := json.MarshalIndent(m.data, "", "  ")
	if err != nil {
		log.Printf("[Manifest] Failed to marshal manifest: %v", err)
		return
	}
	if err := os.WriteFile(m.path, blob, 0o644); err != nil {
		log.Printf("[Manifest] Failed to save manifest: %v", err)
	}
}
