package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MinPasswordLength is the shortest accepted encryption password
const MinPasswordLength = 8

// EnableEncryption encrypts every CSV and JSON file under the data directory
func (s *Storage) EnableEncryption(password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.encrypted {
		return fmt.Errorf("encryption is already enabled")
	}
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}

	k, err := deriveKey(password)
	if err != nil {
		return err
	}

	verifyPath := filepath.Join(s.baseDir, verifyFile)
	sealed, err := k.seal([]byte(verifyMagic))
	if err != nil {
		return fmt.Errorf("failed to encrypt verification file: %w", err)
	}
	if err := os.WriteFile(verifyPath, sealed, 0600); err != nil {
		return fmt.Errorf("failed to write verification file: %w", err)
	}

	files, err := s.dataFiles()
	if err != nil {
		os.Remove(verifyPath)
		return fmt.Errorf("failed to scan files: %w", err)
	}

	for i, path := range files {
		err := rewriteFile(path, func(data []byte) ([]byte, bool, error) {
			if isAgeEncrypted(data) {
				return nil, false, nil
			}
			out, err := k.seal(data)
			return out, true, err
		})
		if err != nil {
			// best effort: restore what was already encrypted
			s.decryptAll(files[:i], k)
			os.Remove(verifyPath)
			return fmt.Errorf("failed to encrypt %s: %w", filepath.Base(path), err)
		}
	}

	if err := os.WriteFile(filepath.Join(s.baseDir, markerFile), []byte("encrypted"), 0600); err != nil {
		return fmt.Errorf("failed to create marker file: %w", err)
	}

	s.encrypted = true
	s.key = k
	return nil
}

// DisableEncryption decrypts every encrypted file (requires the current password)
func (s *Storage) DisableEncryption(password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.encrypted {
		return fmt.Errorf("encryption is not enabled")
	}

	k, err := s.verifyPassword(password)
	if err != nil {
		return err
	}

	files, err := s.dataFiles()
	if err != nil {
		return fmt.Errorf("failed to scan files: %w", err)
	}
	if err := s.decryptAll(files, k); err != nil {
		return err
	}

	os.Remove(filepath.Join(s.baseDir, markerFile))
	os.Remove(filepath.Join(s.baseDir, verifyFile))

	s.encrypted = false
	s.key = nil
	return nil
}

// dataFiles lists the CSV and JSON files under the data directory
func (s *Storage) dataFiles() ([]string, error) {
	var files []string
	err := filepath.Walk(s.baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || s.shouldSkipEncryption(path) {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".csv", ".json":
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func (s *Storage) decryptAll(files []string, k *key) error {
	for _, path := range files {
		err := rewriteFile(path, func(data []byte) ([]byte, bool, error) {
			if !isAgeEncrypted(data) {
				return nil, false, nil
			}
			out, err := k.open(data)
			return out, true, err
		})
		if err != nil {
			return fmt.Errorf("failed to decrypt %s: %w", filepath.Base(path), err)
		}
	}
	return nil
}

// rewriteFile applies transform to a file in place; transform reports
// whether the file needs rewriting
func rewriteFile(path string, transform func([]byte) ([]byte, bool, error)) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out, changed, err := transform(data)
	if err != nil || !changed {
		return err
	}
	return atomicWrite(path, out, info.Mode().Perm())
}
