package storage

import (
	"context"
	"fmt"
	"maps"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const fileStorageVersion = "1.0"

// FileStorage persists values as a yaml document, one file per API host,
// readable only by the owner.
type FileStorage struct {
	lock  sync.Mutex
	path  string
	state fileState
}

type fileState struct {
	Version   string            `yaml:"version"`
	Timestamp time.Time         `yaml:"timestamp"`
	Values    map[string]string `yaml:"values"`
}

func newFileState() fileState {
	return fileState{
		Version:   fileStorageVersion,
		Timestamp: time.Now().UTC(),
		Values:    make(map[string]string),
	}
}

// DefaultDirectory returns ~/.config/bolsillo.
func DefaultDirectory() (string, error) {
	usr, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("failed to get current user: %w", err)
	}
	return filepath.Join(usr.HomeDir, ".config", "bolsillo"), nil
}

// OpenFileStorage opens (creating if needed) <dir>/<name>.yaml and loads it.
func OpenFileStorage(dir string, name string) (*FileStorage, error) {
	if len(dir) == 0 {
		defaultDir, err := DefaultDirectory()
		if err != nil {
			return nil, err
		}
		dir = defaultDir
	}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	fs := &FileStorage{
		path:  filepath.Join(dir, fileName(name)),
		state: newFileState(),
	}

	if err := fs.Load(); err != nil {
		return nil, err
	}

	return fs, nil
}

func fileName(name string) string {
	name = strings.TrimSpace(name)
	if len(name) == 0 {
		name = "default"
	}
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")
	return fmt.Sprintf("%s.yaml", replacer.Replace(name))
}

// Path returns the file backing this storage.
func (f *FileStorage) Path() string {
	return f.path
}

// Load re-reads the file from disk, replacing what is held in memory.
func (f *FileStorage) Load() error {
	f.lock.Lock()
	defer f.lock.Unlock()

	file, err := f.open()
	if err != nil {
		return err
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		return err
	}

	if fileInfo.Size() == 0 {
		f.state = newFileState()
		return nil
	}

	var state fileState
	if err := yaml.NewDecoder(file).Decode(&state); err != nil {
		// A corrupt file only costs the user a new login.
		logrus.WithError(err).WithFields(logrus.Fields{
			"path": f.path,
		}).Errorln("Failed to parse storage file, reinitializing")
		f.state = newFileState()
		return nil
	}

	if state.Values == nil {
		state.Values = make(map[string]string)
	}
	f.state = state

	return nil
}

func (f *FileStorage) Get(_ context.Context, key string) (string, bool, error) {
	if len(key) == 0 {
		return "", false, ErrEmptyKey
	}

	f.lock.Lock()
	defer f.lock.Unlock()

	value, ok := f.state.Values[key]
	return value, ok, nil
}

func (f *FileStorage) Update(_ context.Context, set map[string]string, remove ...string) error {
	if err := checkKeys(set, remove); err != nil {
		return err
	}

	f.lock.Lock()
	defer f.lock.Unlock()

	previous := f.state
	next := previous
	next.Values = maps.Clone(previous.Values)
	if next.Values == nil {
		next.Values = make(map[string]string)
	}

	for _, key := range remove {
		delete(next.Values, key)
	}
	for key, value := range set {
		next.Values[key] = value
	}
	next.Timestamp = time.Now().UTC()

	if err := f.commit(next); err != nil {
		return fmt.Errorf("failed to write storage file: %w", err)
	}

	f.state = next
	return nil
}

// commit must be called with the lock held.
func (f *FileStorage) commit(state fileState) error {
	file, err := f.open()
	if err != nil {
		return err
	}
	defer file.Close()

	// Truncate the file to ensure clean write
	if err := file.Truncate(0); err != nil {
		return err
	}

	if _, err := file.Seek(0, 0); err != nil {
		return err
	}

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(state); err != nil {
		return err
	}

	return encoder.Close()
}

func (f *FileStorage) open() (*os.File, error) {
	// Only allow read/write access to the owner
	file, err := os.OpenFile(f.path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage file: %w", err)
	}
	return file, nil
}

func (f *FileStorage) Close() error {
	return nil
}
