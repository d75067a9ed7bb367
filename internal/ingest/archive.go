package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ArchivePDF writes the raw PDF bytes under root/YYYY/MM/DD/name and
// returns the stored path. Existing files with the same name are
// overwritten; the bytes are identical for a genuine duplicate.
func ArchivePDF(root, name string, data []byte, receivedAt time.Time) (string, error) {
	dir := filepath.Join(root, receivedAt.UTC().Format("2006/01/02"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	path := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write archived PDF: %w", err)
	}

	return path, nil
}
