package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/testdesk/backend/internal/bug"
)

// ErrNotFound is returned when no bug has the requested id.
var ErrNotFound = errors.New("bug not found")

// BugStorage defines the interface for persisting bugs
type BugStorage interface {
	Save(b *bug.Bug) error
	Get(id string) (*bug.Bug, error)
	List(projectID string) ([]*bug.Bug, error)
	Close() error
}

// FileStorage implements BugStorage using one JSON file per bug
type FileStorage struct {
	baseDir string
	mu      sync.RWMutex
}

// NewFileStorage creates a new file-based storage
func NewFileStorage(baseDir string) (*FileStorage, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileStorage{
		baseDir: baseDir,
	}, nil
}

// Save writes the bug to a JSON file. A missing ID is generated and a zero
// CreatedAt is set to now; both are written back to b.
func (fs *FileStorage) Save(b *bug.Bug) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal bug: %w", err)
	}

	path := filepath.Join(fs.baseDir, safeFilename(b.ID))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// Get retrieves a bug from disk
func (fs *FileStorage) Get(id string) (*bug.Bug, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	path := filepath.Join(fs.baseDir, safeFilename(id))
	b, err := readBug(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	// Sanitized names can collide; only an exact id counts.
	if b.ID != id {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return b, nil
}

// List returns the bugs of a project, or every bug when projectID is empty,
// ordered by creation time and then id.
func (fs *FileStorage) List(projectID string) ([]*bug.Bug, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	entries, err := os.ReadDir(fs.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read storage directory: %w", err)
	}

	bugs := make([]*bug.Bug, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		b, err := readBug(filepath.Join(fs.baseDir, entry.Name()))
		if err != nil {
			return nil, err
		}
		if projectID == "" || b.ProjectID == projectID {
			bugs = append(bugs, b)
		}
	}

	sort.Slice(bugs, func(i, j int) bool {
		if !bugs[i].CreatedAt.Equal(bugs[j].CreatedAt) {
			return bugs[i].CreatedAt.Before(bugs[j].CreatedAt)
		}
		return bugs[i].ID < bugs[j].ID
	})
	return bugs, nil
}

// Close is a no-op for file storage
func (fs *FileStorage) Close() error {
	return nil
}

func readBug(path string) (*bug.Bug, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var b bug.Bug
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", filepath.Base(path), err)
	}
	return &b, nil
}

const maxNameLen = 200

// safeFilename maps an id to a distinct file name. Ids made of ASCII letters,
// digits and '-' are used as is. Other ids are hex encoded behind a '_'
// prefix, which plain names never contain, and names longer than maxNameLen
// become "__" plus the SHA-256 of the id.
func safeFilename(id string) string {
	name := id
	plain := id != ""
	for _, r := range id {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-') {
			plain = false
			break
		}
	}
	if !plain {
		name = "_" + hex.EncodeToString([]byte(id))
	}
	if len(name) > maxNameLen {
		sum := sha256.Sum256([]byte(id))
		name = "__" + hex.EncodeToString(sum[:])
	}
	return name + ".json"
}
