package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// StorageService keeps uploaded PDFs on disk, one directory per tenant. The
// returned file URL is relative to the upload root.
type StorageService interface {
	EnsureUploadDir() error
	Save(tenantID, originalName string, data []byte) (string, error)
	Load(fileURL string) ([]byte, error)
	Delete(fileURL string) error
}

type storageService struct {
	uploadPath string
}

func NewStorageService(uploadPath string) StorageService {
	return &storageService{
		uploadPath: uploadPath,
	}
}

func (s *storageService) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}
	return nil
}

func (s *storageService) Save(tenantID, originalName string, data []byte) (string, error) {
	if tenantID == "" {
		return "", fmt.Errorf("tenant id is required")
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if ext != ".pdf" {
		ext = ".pdf"
	}

	dir := filepath.Join(s.uploadPath, filepath.Base(tenantID))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create tenant directory: %w", err)
	}

	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return filepath.ToSlash(filepath.Join(filepath.Base(tenantID), name)), nil
}

func (s *storageService) Load(fileURL string) ([]byte, error) {
	path, err := s.resolve(fileURL)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

func (s *storageService) Delete(fileURL string) error {
	path, err := s.resolve(fileURL)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *storageService) resolve(fileURL string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(fileURL))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid file url %q", fileURL)
	}
	return filepath.Join(s.uploadPath, clean), nil
}
