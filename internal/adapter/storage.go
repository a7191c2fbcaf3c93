package adapter

import (
	"context"
	"io"

	"github.com/jun/drivectl/internal/model"
)

// RootFolderID is the alias of the storage root.
const RootFolderID = "root"

// UploadRequest describes a new remote file.
type UploadRequest struct {
	Title    string
	ParentID string // empty means the storage root
	MIMEType string
	Content  io.Reader
}

// StorageAdapter defines the remote storage operations the CLI consumes.
// This abstraction allows running the traversal against Google Drive or an
// in-memory tree without changing the traversal code.
type StorageAdapter interface {
	// FetchMetadata returns the item with the given id, or ErrNotFound.
	FetchMetadata(ctx context.Context, id string) (*model.RemoteItem, error)

	// ListChildren returns one page of non-trashed children of folderID.
	// An empty pageToken requests the first page.
	ListChildren(ctx context.Context, folderID, pageToken string) (*model.ChildPage, error)

	// Download opens the byte content of a file item.
	Download(ctx context.Context, id string) (io.ReadCloser, error)

	// Upload creates a new remote item from the request content.
	Upload(ctx context.Context, req UploadRequest) (*model.RemoteItem, error)

	// ShareWithAnyone grants read access to anyone with the link.
	ShareWithAnyone(ctx context.Context, id string) error
}
