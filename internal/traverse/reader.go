// Package traverse materializes a remote folder tree on the local filesystem.
package traverse

import (
	"context"
	"fmt"

	"github.com/jun/drivectl/internal/adapter"
	"github.com/jun/drivectl/internal/model"
)

// DirectoryReader lists the complete child set of one remote folder.
type DirectoryReader struct {
	client adapter.StorageAdapter
}

// NewDirectoryReader returns a reader listing folders through client.
func NewDirectoryReader(client adapter.StorageAdapter) *DirectoryReader {
	return &DirectoryReader{client: client}
}

// List returns every non-trashed child of folderID, following page tokens
// until the listing is exhausted. Files and folders keep the order the
// remote service returned them in. Errors are returned unchanged.
func (r *DirectoryReader) List(ctx context.Context, folderID string) (files, folders []model.RemoteItem, err error) {
	token := ""
	for {
		page, err := r.client.ListChildren(ctx, folderID, token)
		if err != nil {
			return nil, nil, err
		}
		for _, item := range page.Items {
			if item.IsFolder() {
				folders = append(folders, item)
			} else {
				files = append(files, item)
			}
		}
		if page.NextPageToken == "" {
			return files, folders, nil
		}
		if page.NextPageToken == token {
			return nil, nil, fmt.Errorf("list children of %s: page token %q repeated: %w", folderID, token, adapter.ErrTransport)
		}
		token = page.NextPageToken
	}
}
