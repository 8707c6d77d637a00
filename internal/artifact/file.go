package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileWriter writes the artifact to a local path through a temp file and rename
type FileWriter struct {
	path string
	perm os.FileMode
}

// NewFileWriter creates a writer for path
func NewFileWriter(path string) *FileWriter {
	return &FileWriter{path: path, perm: 0o644}
}

func (w *FileWriter) Location() string {
	return w.path
}

// Write replaces the target file atomically
func (w *FileWriter) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return &PersistenceError{Location: w.path, Cause: err}
	}
	if err := w.write(data); err != nil {
		return &PersistenceError{Location: w.path, Cause: err}
	}
	return nil
}

func (w *FileWriter) write(data []byte) error {
	dir := filepath.Dir(w.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(w.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Chmod(w.perm); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, w.path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	committed = true
	return nil
}
