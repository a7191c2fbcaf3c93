// Package transfer moves file bytes between the local filesystem and a
// storage adapter.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/jun/drivectl/internal/adapter"
	"github.com/jun/drivectl/internal/localfs"
	"github.com/jun/drivectl/internal/logging"
	"github.com/jun/drivectl/internal/model"
	"github.com/jun/drivectl/internal/progress"
)

// ErrNotRegularFile is returned when an upload source is a directory or device.
var ErrNotRegularFile = errors.New("not a regular file")

// Executor performs single-file downloads and uploads against one adapter.
type Executor struct {
	client   adapter.StorageAdapter
	progress progress.Factory
	logger   *logging.Logger
}

// NewExecutor creates an Executor. A nil factory disables progress reporting.
func NewExecutor(client adapter.StorageAdapter, factory progress.Factory, logger *logging.Logger) *Executor {
	if factory == nil {
		factory = progress.NoOpFactory
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Executor{client: client, progress: factory, logger: logger}
}

// DownloadTo writes the content of item to localPath and returns the byte count.
// Bytes go to localPath.part first and are renamed into place on success, so an
// existing file at localPath is replaced only by complete content.
func (e *Executor) DownloadTo(ctx context.Context, item *model.RemoteItem, localPath string) (int64, error) {
	rc, err := e.client.Download(ctx, item.ID)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	f, err := localfs.CreatePartial(localPath)
	if err != nil {
		return 0, err
	}

	reporter := e.progress()
	reporter.Start(item.Size, item.Title)
	w := &trackingWriter{w: f}
	n, err := io.Copy(w, progress.NewReader(rc, reporter))
	reporter.Finish()
	closeErr := f.Close()

	switch {
	case err != nil && w.err != nil:
		err = &localfs.LocalIOError{Op: "write", Path: localPath, Err: w.err}
	case err != nil:
		err = fmt.Errorf("download %s: %w: %w", item.ID, adapter.ErrTransport, err)
	case closeErr != nil:
		err = &localfs.LocalIOError{Op: "close", Path: localPath, Err: closeErr}
	}
	if err != nil {
		localfs.DiscardPartial(localPath)
		return n, err
	}

	if err := localfs.CommitPartial(localPath); err != nil {
		localfs.DiscardPartial(localPath)
		return n, err
	}
	e.logger.Debug().Str("id", item.ID).Str("path", localPath).Int64("bytes", n).Msg("download complete")
	return n, nil
}

// Upload creates a new remote file from localPath under parentID (the
// storage root when empty). The title is the base name of localPath.
func (e *Executor) Upload(ctx context.Context, localPath, parentID string) (*model.RemoteItem, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return nil, &localfs.LocalIOError{Op: "open", Path: localPath, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &localfs.LocalIOError{Op: "stat", Path: localPath, Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &localfs.LocalIOError{Op: "upload", Path: localPath, Err: ErrNotRegularFile}
	}

	title := filepath.Base(localPath)
	reporter := e.progress()
	reporter.Start(info.Size(), title)
	defer reporter.Finish()

	item, err := e.client.Upload(ctx, adapter.UploadRequest{
		Title:    title,
		ParentID: parentID,
		MIMEType: mime.TypeByExtension(filepath.Ext(localPath)),
		Content:  progress.NewReader(f, reporter),
	})
	if err != nil {
		return nil, err
	}
	e.logger.Debug().Str("id", item.ID).Str("path", localPath).Int64("bytes", info.Size()).Msg("upload complete")
	return item, nil
}

// trackingWriter remembers the first write error so copy failures can be
// attributed to the local side.
type trackingWriter struct {
	w   io.Writer
	err error
}

func (t *trackingWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if err != nil && t.err == nil {
		t.err = err
	}
	return n, err
}
