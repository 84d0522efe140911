package vault

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/binderapp/binder-server/internal/domain"
)

// exportVersion identifies the export file layout. Bump on breaking
// changes so old servers refuse files they can't read correctly.
const exportVersion = 1

// ExportFileName is the canonical export file inside the vault directory.
// The import watcher is configured to skip it so exports don't loop back
// as imports.
const ExportFileName = "binders.json"

// ExportFile is the JSON document written to and read from the vault
// directory.
type ExportFile struct {
	Version    int              `json:"version"`
	ExportedAt time.Time        `json:"exported_at"`
	Binders    []*domain.Binder `json:"binders"`
}

// Export marshals every vault snapshot into an export document.
func (v *Vault) Export(ctx context.Context) (*ExportFile, error) {
	binders, err := v.ListBinders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list binders: %w", err)
	}

	return &ExportFile{
		Version:    exportVersion,
		ExportedAt: time.Now(),
		Binders:    binders,
	}, nil
}

// ExportToFile writes the export document to path. The write goes through
// a temp file and rename so the directory watcher never sees a partial
// file.
func (v *Vault) ExportToFile(ctx context.Context, path string) error {
	export, err := v.Export(ctx)
	if err != nil {
		return err
	}

	data, err := json.Marshal(export)
	if err != nil {
		return fmt.Errorf("marshal export: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create vault directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".export-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename export: %w", err)
	}

	v.logger.Info("vault exported",
		"path", path,
		"binders", len(export.Binders),
	)

	return nil
}

// ReadExportFile parses an export document from disk.
func ReadExportFile(path string) (*ExportFile, error) {
	//#nosec G304 -- Import paths come from the watched vault directory
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read export file: %w", err)
	}

	var export ExportFile
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("parse export file: %w", err)
	}

	if export.Version != exportVersion {
		return nil, fmt.Errorf("unsupported export version %d (expected %d)", export.Version, exportVersion)
	}

	return &export, nil
}

// Import upserts every binder from an export document into the vault.
// Returns the number of snapshots written.
func (v *Vault) Import(ctx context.Context, export *ExportFile) (int, error) {
	imported := 0
	for _, binder := range export.Binders {
		if binder == nil || binder.ID == "" {
			continue
		}
		binder.Normalize()
		if err := v.SaveBinder(ctx, binder); err != nil {
			return imported, fmt.Errorf("import binder %s: %w", binder.ID, err)
		}
		imported++
	}
	return imported, nil
}
