// Package handler implements the operator-facing commands on top of the
// storage adapters and the traversal engine.
package handler

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jun/drivectl/internal/adapter"
	"github.com/jun/drivectl/internal/conflict"
	"github.com/jun/drivectl/internal/logging"
	"github.com/jun/drivectl/internal/model"
	"github.com/jun/drivectl/internal/progress"
	"github.com/jun/drivectl/internal/transfer"
	"github.com/jun/drivectl/internal/traverse"
)

// ErrUsage marks invalid command input; nothing was done.
var ErrUsage = errors.New("usage error")

// FileHandler handles listing, upload and download for one account.
type FileHandler struct {
	storageProvider adapter.StorageProvider
	account         string
	progress        progress.Factory
	logger          *logging.Logger
	out             io.Writer
}

// NewFileHandler creates a new FileHandler writing operator output to out.
func NewFileHandler(provider adapter.StorageProvider, account string, factory progress.Factory, logger *logging.Logger, out io.Writer) *FileHandler {
	if logger == nil {
		logger = logging.Nop()
	}
	return &FileHandler{
		storageProvider: provider,
		account:         account,
		progress:        factory,
		logger:          logger,
		out:             out,
	}
}

// getStorageAdapter returns the adapter for the configured account.
func (h *FileHandler) getStorageAdapter(ctx context.Context) (adapter.StorageAdapter, error) {
	storage, err := h.storageProvider.GetAdapter(ctx, h.account)
	if err != nil {
		return nil, fmt.Errorf("failed to get storage adapter: %w", err)
	}
	return storage, nil
}

// ListOptions selects what List prints.
type ListOptions struct {
	// FolderID defaults to the storage root.
	FolderID    string
	FoldersOnly bool
}

// List prints one line per child of the folder, in the order the remote
// service returns them, and returns the number of lines printed.
func (h *FileHandler) List(ctx context.Context, opts ListOptions) (int, error) {
	storage, err := h.getStorageAdapter(ctx)
	if err != nil {
		return 0, err
	}

	folderID := opts.FolderID
	if folderID == "" {
		folderID = adapter.RootFolderID
	}

	printed := 0
	token := ""
	for {
		page, err := storage.ListChildren(ctx, folderID, token)
		if err != nil {
			return printed, fmt.Errorf("failed to list %s: %w", folderID, err)
		}
		for _, item := range page.Items {
			if opts.FoldersOnly && !item.IsFolder() {
				continue
			}
			fmt.Fprintf(h.out, "Title: %s\tid: %s\n", item.Title, item.ID)
			printed++
		}
		if page.NextPageToken == "" || page.NextPageToken == token {
			break
		}
		token = page.NextPageToken
	}

	h.logger.Debug().Str("folder_id", folderID).Int("items", printed).Msg("listed folder")
	return printed, nil
}

// UploadOptions describes one upload.
type UploadOptions struct {
	Path string
	// ParentID defaults to the storage root.
	ParentID string
	// Private skips the anyone-with-the-link permission.
	Private bool
}

// Upload sends a local file, shares it unless Private is set, and prints
// its id and download link.
func (h *FileHandler) Upload(ctx context.Context, opts UploadOptions) (*model.RemoteItem, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("%w: upload needs a local file path", ErrUsage)
	}

	storage, err := h.getStorageAdapter(ctx)
	if err != nil {
		return nil, err
	}

	item, err := transfer.NewExecutor(storage, h.progress, h.logger).Upload(ctx, opts.Path, opts.ParentID)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", opts.Path, err)
	}
	fmt.Fprintf(h.out, "Uploaded %s\n", item.Title)

	if !opts.Private {
		if err := storage.ShareWithAnyone(ctx, item.ID); err != nil {
			return item, fmt.Errorf("uploaded %s but failed to share it: %w", item.ID, err)
		}
		// the link is only populated once the permission exists
		shared, err := storage.FetchMetadata(ctx, item.ID)
		if err != nil {
			return item, fmt.Errorf("uploaded %s but failed to fetch its link: %w", item.ID, err)
		}
		item = shared
	}

	fmt.Fprintf(h.out, "Get it with: %s\n", item.ID)
	if item.WebContentLink != "" {
		fmt.Fprintf(h.out, "URL: %s\n", item.WebContentLink)
	} else {
		fmt.Fprintln(h.out, "URL: (not shared)")
	}
	return item, nil
}

// DownloadOptions describes one download.
type DownloadOptions struct {
	ID             string
	Dest           string
	SkipExisting   bool
	ForceOverwrite bool
}

// Download materializes a remote file or folder tree under opts.Dest and
// prints a summary when it completes.
func (h *FileHandler) Download(ctx context.Context, opts DownloadOptions) (*traverse.Result, error) {
	if opts.ID == "" {
		return nil, fmt.Errorf("%w: download needs a file or folder id", ErrUsage)
	}
	if opts.SkipExisting && opts.ForceOverwrite {
		return nil, fmt.Errorf("%w: --skip-existing and --force-overwrite are mutually exclusive", ErrUsage)
	}

	storage, err := h.getStorageAdapter(ctx)
	if err != nil {
		return nil, err
	}

	engine := traverse.NewEngine(storage, transfer.NewExecutor(storage, h.progress, h.logger), h.logger, h.out)
	res, err := engine.Download(ctx, opts.ID, traverse.Options{
		Dest: opts.Dest,
		Policy: conflict.Policy{
			SkipExisting:   opts.SkipExisting,
			ForceOverwrite: opts.ForceOverwrite,
		},
	})
	if err != nil {
		h.logger.Debug().Int("downloaded", res.FilesDownloaded).Int("skipped", res.FilesSkipped).Msg("download stopped")
		return res, err
	}

	fmt.Fprintf(h.out, "%d downloaded, %d skipped, %d folders\n", res.FilesDownloaded, res.FilesSkipped, res.FoldersCreated)
	return res, nil
}
