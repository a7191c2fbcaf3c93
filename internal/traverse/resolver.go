package traverse

import (
	"context"
	"path/filepath"

	"github.com/jun/drivectl/internal/adapter"
	"github.com/jun/drivectl/internal/localfs"
	"github.com/jun/drivectl/internal/model"
)

// PathResolver computes the local relative path of a remote item by walking
// its first-parent chain up to the traversal root. Resolved folder paths are
// remembered, so one resolver must not outlive a single traversal.
type PathResolver struct {
	client  adapter.StorageAdapter
	folders map[string]string
}

// NewPathResolver returns a resolver with an empty folder path cache.
func NewPathResolver(client adapter.StorageAdapter) *PathResolver {
	return &PathResolver{
		client:  client,
		folders: make(map[string]string),
	}
}

// Resolve returns root's title followed by the titles of every folder between
// root and item, then item's own title. A chain that ends without reaching
// root, or loops back on itself, is anchored at root's title anyway.
func (r *PathResolver) Resolve(ctx context.Context, item, root *model.RemoteItem) (string, error) {
	rootName := localfs.SanitizeName(root.Title)
	if item.ID == root.ID {
		return rootName, nil
	}
	if p, ok := r.folders[item.ID]; ok {
		return p, nil
	}

	// walk upward collecting titles, nearest first
	ids := []string{item.ID}
	titles := []string{localfs.SanitizeName(item.Title)}
	seen := map[string]bool{item.ID: true}
	prefix := rootName
	current := item
	for {
		parentID, ok := current.FirstParent()
		if !ok || parentID == root.ID || seen[parentID] {
			break
		}
		if cached, ok := r.folders[parentID]; ok {
			prefix = cached
			break
		}
		parent, err := r.client.FetchMetadata(ctx, parentID)
		if err != nil {
			return "", err
		}
		seen[parentID] = true
		ids = append(ids, parent.ID)
		titles = append(titles, localfs.SanitizeName(parent.Title))
		current = parent
	}

	path := prefix
	for i := len(titles) - 1; i >= 0; i-- {
		path = filepath.Join(path, titles[i])
		if i > 0 || item.IsFolder() {
			r.folders[ids[i]] = path
		}
	}
	return path, nil
}
