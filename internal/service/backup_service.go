package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"partyplan/internal/repository"
)

// backupFormatVersion identifies the export file layout
const backupFormatVersion = "1.0"

// BackupData is the complete store export structure
type BackupData struct {
	Version    string                `json:"version"`
	ExportedAt time.Time             `json:"exported_at"`
	Documents  []repository.Document `json:"documents"`
}

// BackupService exports and imports the full document store
type BackupService struct {
	store repository.DocumentStore
}

// NewBackupService creates a new backup service
func NewBackupService(store repository.DocumentStore) *BackupService {
	return &BackupService{store: store}
}

// ExportToFile writes every stored document of every kind to a JSON file
func (s *BackupService) ExportToFile(ctx context.Context, path string) error {
	backup := BackupData{
		Version:    backupFormatVersion,
		ExportedAt: time.Now().UTC(),
	}

	for _, kind := range repository.Kinds {
		docs, err := s.store.List(ctx, kind)
		if err != nil {
			return fmt.Errorf("failed to list %s documents: %w", kind, err)
		}
		backup.Documents = append(backup.Documents, docs...)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}

	log.Printf("Exported %d documents to %s", len(backup.Documents), path)
	return nil
}

// ImportFromFile loads documents from a backup file. Existing documents with
// the same kind and id are skipped unless clear is set, in which case all
// stored documents are deleted first.
func (s *BackupService) ImportFromFile(ctx context.Context, path string, clear bool) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read backup file: %w", err)
	}

	var backup BackupData
	if err := json.Unmarshal(raw, &backup); err != nil {
		return fmt.Errorf("failed to parse backup file: %w", err)
	}

	if clear {
		for _, kind := range repository.Kinds {
			docs, err := s.store.List(ctx, kind)
			if err != nil {
				return fmt.Errorf("failed to list %s documents: %w", kind, err)
			}
			for _, doc := range docs {
				if err := s.store.Delete(ctx, kind, doc.ID); err != nil {
					return fmt.Errorf("failed to clear %s/%s: %w", kind, doc.ID, err)
				}
			}
		}
	}

	imported, skipped := 0, 0
	for _, doc := range backup.Documents {
		if _, err := s.store.Put(ctx, doc.Kind, doc.ID, doc.Body, 0); err != nil {
			if err == repository.ErrConflict {
				skipped++
				continue
			}
			return fmt.Errorf("failed to import %s/%s: %w", doc.Kind, doc.ID, err)
		}
		imported++
	}

	log.Printf("Imported %d documents (%d skipped) from %s", imported, skipped, path)
	return nil
}
