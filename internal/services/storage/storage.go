package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

const (
	// ageHeader is the prefix of Age-encrypted files
	ageHeader = "age-encryption.org"

	// markerFile indicates encryption is enabled
	markerFile = ".encrypted"

	// verifyFile is used to validate the password
	verifyFile = ".encryption-verify"

	// verifyMagic is the expected content in the verify file
	verifyMagic = `{"magic":"findash-encryption-verify","version":1}`
)

var (
	// ErrLocked is returned when reading an encrypted file before Unlock
	ErrLocked = errors.New("file is encrypted but storage is locked")
	// ErrWrongPassword is returned when the password does not open the verify file
	ErrWrongPassword = errors.New("incorrect password")
)

// Storage provides transparent encrypted/unencrypted file access rooted at a
// data directory
type Storage struct {
	baseDir   string
	encrypted bool
	key       *key // nil while locked
	mu        sync.RWMutex
}

// New creates a new Storage instance for the given base directory
func New(baseDir string) (*Storage, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	s := &Storage{baseDir: baseDir}

	if _, err := os.Stat(filepath.Join(baseDir, markerFile)); err == nil {
		s.encrypted = true
	}
	return s, nil
}

// BaseDir returns the base directory
func (s *Storage) BaseDir() string {
	return s.baseDir
}

// Path joins elem onto the base directory
func (s *Storage) Path(elem ...string) string {
	return filepath.Join(append([]string{s.baseDir}, elem...)...)
}

// IsEncrypted returns true if the data directory is encrypted
func (s *Storage) IsEncrypted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.encrypted
}

// IsUnlocked returns true if the storage is readable
func (s *Storage) IsUnlocked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.encrypted || s.key != nil
}

// Unlock verifies the password and keeps the key in memory
func (s *Storage) Unlock(password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.encrypted {
		return nil
	}

	k, err := s.verifyPassword(password)
	if err != nil {
		return err
	}
	s.key = k
	return nil
}

// Lock clears the encryption key from memory
func (s *Storage) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.key = nil
}

// verifyPassword decrypts the verify file; callers hold s.mu
func (s *Storage) verifyPassword(password string) (*key, error) {
	sealed, err := os.ReadFile(filepath.Join(s.baseDir, verifyFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read verification file: %w", err)
	}

	k, err := deriveKey(password)
	if err != nil {
		return nil, err
	}
	if !k.verifies(sealed) {
		return nil, ErrWrongPassword
	}
	return k, nil
}

// ReadFile reads and, when needed, decrypts a file
func (s *Storage) ReadFile(path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if isAgeEncrypted(data) {
		if s.key == nil {
			return nil, ErrLocked
		}
		return s.key.open(data)
	}
	return data, nil
}

// WriteFile writes a file atomically, encrypting it when the store is
// encrypted and unlocked
func (s *Storage) WriteFile(path string, data []byte, perm os.FileMode) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.shouldSkipEncryption(path) && s.encrypted {
		if s.key == nil {
			return ErrLocked
		}
		encrypted, err := s.key.seal(data)
		if err != nil {
			return fmt.Errorf("failed to encrypt: %w", err)
		}
		data = encrypted
	}

	return atomicWrite(path, data, perm)
}

// OpenFile returns a reader for a potentially encrypted file
func (s *Storage) OpenFile(path string) (io.ReadCloser, error) {
	data, err := s.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// ReadJSON decodes a potentially encrypted JSON file into v. A missing file
// yields an error satisfying errors.Is(err, os.ErrNotExist).
func (s *Storage) ReadJSON(path string, v any) error {
	data, err := s.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

// WriteJSON encodes v as indented JSON and writes it through WriteFile
func (s *Storage) WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	return s.WriteFile(path, data, 0600)
}

// Glob returns files matching a pattern
func (s *Storage) Glob(pattern string) ([]string, error) {
	return filepath.Glob(pattern)
}

// atomicWrite writes data to a temp file and renames it into place
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, perm); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// shouldSkipEncryption returns true for the marker and verify files
func (s *Storage) shouldSkipEncryption(path string) bool {
	base := filepath.Base(path)
	return base == markerFile || base == verifyFile
}

