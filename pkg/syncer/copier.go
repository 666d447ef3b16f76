package syncer

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"gitlab.com/tozd/go/errors"
)

// 💾 Copier is the external copy collaborator. Its contract: intermediate
// directories are created as needed and an existing destination is silently
// overwritten.
type Copier interface {
	Copy(ctx context.Context, src, dest string) error
}

// 🔧 OSCopier implements Copier on the local filesystem
type OSCopier struct{}

func (OSCopier) Copy(ctx context.Context, src, dest string) error {
	if err := ctx.Err(); err != nil {
		return errors.Errorf("copy cancelled: %w", err)
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening source file: %w", err)
	}
	defer srcFile.Close()

	// Create parent directories
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return errors.Errorf("creating parent directories: %w", err)
	}

	// Create destination file, truncating any previous content
	destFile, err := os.Create(dest)
	if err != nil {
		return errors.Errorf("creating destination file: %w", err)
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, srcFile); err != nil {
		return errors.Errorf("copying file content: %w", err)
	}

	if err := destFile.Close(); err != nil {
		return errors.Errorf("closing destination file: %w", err)
	}
	return nil
}
