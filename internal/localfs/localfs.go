// Package localfs wraps the local filesystem operations used while
// materializing remote trees, classifying their failures as LocalIOError.
package localfs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644

	// PartialSuffix marks a file that is still being written.
	PartialSuffix = ".part"
)

// LocalIOError reports a failed local filesystem operation.
type LocalIOError struct {
	Op   string
	Path string
	Err  error
}

func (e *LocalIOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *LocalIOError) Unwrap() error {
	return e.Err
}

// IsLocalIO reports whether err is (or wraps) a LocalIOError.
func IsLocalIO(err error) bool {
	var lerr *LocalIOError
	return errors.As(err, &lerr)
}

// Exists reports whether anything is present at path. Symlinks are not followed.
func Exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, &LocalIOError{Op: "stat", Path: path, Err: err}
}

// EnsureDir creates path and any missing parents. created is false when
// the directory already existed. A non-directory at path is an error.
func EnsureDir(path string) (created bool, err error) {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		if !info.IsDir() {
			return false, &LocalIOError{Op: "mkdir", Path: path, Err: fmt.Errorf("%w: not a directory", fs.ErrExist)}
		}
		return false, nil
	case !errors.Is(err, fs.ErrNotExist):
		return false, &LocalIOError{Op: "stat", Path: path, Err: err}
	}

	if err := os.MkdirAll(path, dirPerm); err != nil {
		return false, &LocalIOError{Op: "mkdir", Path: path, Err: err}
	}
	return true, nil
}

// CreatePartial creates path+PartialSuffix as a new file. A leftover from an
// interrupted run is removed first; a symlink in its place is removed, never
// followed.
func CreatePartial(path string) (*os.File, error) {
	partial := path + PartialSuffix
	if err := os.Remove(partial); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, &LocalIOError{Op: "remove", Path: partial, Err: err}
	}
	f, err := os.OpenFile(partial, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		return nil, &LocalIOError{Op: "create", Path: partial, Err: err}
	}
	return f, nil
}

// CommitPartial moves a completed partial file into place, replacing path.
func CommitPartial(path string) error {
	if err := os.Rename(path+PartialSuffix, path); err != nil {
		return &LocalIOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}

// DiscardPartial removes the partial file of path, ignoring a missing one.
func DiscardPartial(path string) {
	_ = os.Remove(path + PartialSuffix)
}

// SanitizeName turns a remote title into a single safe path element.
// Separators become "_"; empty, "." and ".." titles are replaced.
func SanitizeName(title string) string {
	name := strings.NewReplacer("/", "_", `\`, "_", "\x00", "_").Replace(title)
	switch name {
	case "", ".", "..":
		return strings.Repeat("_", max(len(name), 1))
	}
	return name
}
