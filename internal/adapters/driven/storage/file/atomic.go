package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/repogallery/internal/core/domain"
)

// PersistError reports a failed write. The destination is untouched.
type PersistError struct {
	Path string
	Op   string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is(err, domain.ErrPersist) to match.
func (e *PersistError) Is(target error) bool {
	return target == domain.ErrPersist
}

// atomicWriter writes whole files via temp file and rename.
type atomicWriter struct {
	// beforeRename runs after the temp file is synced and closed. A
	// non-nil error aborts the write as if the process died there.
	beforeRename func(tmpPath string) error
}

func (w *atomicWriter) write(path string, data []byte) (err error) {
	fail := func(op string, cause error) error {
		return &PersistError{Path: path, Op: op, Err: cause}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fail("create directory", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fail("create temp file", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fail("write", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fail("chmod", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := tmp.Close(); err != nil {
		return fail("close", err)
	}

	if w.beforeRename != nil {
		if err := w.beforeRename(tmpPath); err != nil {
			return fail("rename", err)
		}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fail("rename", err)
	}
	return nil
}
