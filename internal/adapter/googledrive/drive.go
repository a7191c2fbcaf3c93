package googledrive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jun/drivectl/internal/adapter"
	"github.com/jun/drivectl/internal/model"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	itemFields = "id, name, mimeType, modifiedTime, size, parents, webContentLink"
	listFields = "nextPageToken, files(" + itemFields + ")"

	// Native Google Workspace documents share this prefix and have no byte content.
	workspaceMIMEPrefix = "application/vnd.google-apps."

	defaultPageSize = 100
)

// DriveAdapter implements adapter.StorageAdapter for Google Drive.
type DriveAdapter struct {
	service *drive.Service
	// uploads bypass the retrying transport, which would buffer the whole body
	uploadService *drive.Service
	PageSize      int64
}

// NewDriveAdapter creates a new DriveAdapter.
// client should be an authenticated http.Client, usually wrapped in a retrying
// transport; uploadClient may be nil, in which case client is used for uploads too.
func NewDriveAdapter(ctx context.Context, client, uploadClient *http.Client, pageSize int64, opts ...option.ClientOption) (*DriveAdapter, error) {
	srv, err := drive.NewService(ctx, append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Drive client: %w", err)
	}
	upSrv := srv
	if uploadClient != nil {
		upSrv, err = drive.NewService(ctx, append([]option.ClientOption{option.WithHTTPClient(uploadClient)}, opts...)...)
		if err != nil {
			return nil, fmt.Errorf("unable to retrieve Drive upload client: %w", err)
		}
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &DriveAdapter{service: srv, uploadService: upSrv, PageSize: pageSize}, nil
}

// FetchMetadata retrieves a single item's metadata.
func (d *DriveAdapter) FetchMetadata(ctx context.Context, id string) (*model.RemoteItem, error) {
	f, err := d.service.Files.Get(id).
		SupportsAllDrives(true).
		Fields(itemFields).
		Context(ctx).
		Do()
	if err != nil {
		return nil, mapError(fmt.Sprintf("get metadata of %s", id), err)
	}
	return toRemoteItem(f), nil
}

// ListChildren lists one page of non-trashed children of a folder.
func (d *DriveAdapter) ListChildren(ctx context.Context, folderID, pageToken string) (*model.ChildPage, error) {
	if folderID == "" {
		folderID = adapter.RootFolderID
	}
	q := fmt.Sprintf("'%s' in parents and trashed = false", escapeQuery(folderID))

	call := d.service.Files.List().
		Q(q).
		PageSize(d.PageSize).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Fields(googleapi.Field(listFields)).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	r, err := call.Do()
	if err != nil {
		return nil, mapError(fmt.Sprintf("list children of %s", folderID), err)
	}

	page := &model.ChildPage{
		Items:         make([]model.RemoteItem, 0, len(r.Files)),
		NextPageToken: r.NextPageToken,
	}
	for _, f := range r.Files {
		page.Items = append(page.Items, *toRemoteItem(f))
	}
	return page, nil
}

// Download opens the content stream of a file.
func (d *DriveAdapter) Download(ctx context.Context, id string) (io.ReadCloser, error) {
	f, err := d.service.Files.Get(id).
		SupportsAllDrives(true).
		Fields("id, name, mimeType").
		Context(ctx).
		Do()
	if err != nil {
		return nil, mapError(fmt.Sprintf("get metadata of %s", id), err)
	}
	if strings.HasPrefix(f.MimeType, workspaceMIMEPrefix) {
		return nil, fmt.Errorf("%s (%s): %w", f.Name, f.MimeType, adapter.ErrUnsupportedType)
	}

	resp, err := d.service.Files.Get(id).
		SupportsAllDrives(true).
		Context(ctx).
		Download()
	if err != nil {
		return nil, mapError(fmt.Sprintf("download %s", id), err)
	}
	return resp.Body, nil
}

// Upload creates a new file from the request content.
func (d *DriveAdapter) Upload(ctx context.Context, req adapter.UploadRequest) (*model.RemoteItem, error) {
	parent := req.ParentID
	if parent == "" {
		parent = adapter.RootFolderID
	}

	f := &drive.File{
		Name:     req.Title,
		Parents:  []string{parent},
		MimeType: req.MIMEType,
	}
	res, err := d.uploadService.Files.Create(f).
		Media(req.Content).
		SupportsAllDrives(true).
		Fields(itemFields).
		Context(ctx).
		Do()
	if err != nil {
		return nil, mapError(fmt.Sprintf("upload %s", req.Title), err)
	}
	return toRemoteItem(res), nil
}

// ShareWithAnyone inserts an anyone/reader permission on the item.
func (d *DriveAdapter) ShareWithAnyone(ctx context.Context, id string) error {
	perm := &drive.Permission{
		Type: "anyone",
		Role: "reader",
	}
	if _, err := d.service.Permissions.Create(id, perm).
		SupportsAllDrives(true).
		Context(ctx).
		Do(); err != nil {
		return mapError(fmt.Sprintf("share %s", id), err)
	}
	return nil
}

func toRemoteItem(f *drive.File) *model.RemoteItem {
	modTime, _ := time.Parse(time.RFC3339, f.ModifiedTime)
	return &model.RemoteItem{
		ID:             f.Id,
		Title:          f.Name,
		MIMEType:       f.MimeType,
		ParentIDs:      f.Parents,
		Size:           f.Size,
		ModifiedTime:   modTime,
		WebContentLink: f.WebContentLink,
	}
}

// mapError classifies a Drive API error into the adapter error taxonomy.
func mapError(op string, err error) error {
	if isNotFound(err) {
		return fmt.Errorf("%s: %w", op, adapter.ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %w", op, adapter.ErrTransport, err)
}

func isNotFound(err error) bool {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code == http.StatusNotFound
	}
	return false
}

// escapeQuery escapes a value for use inside a single-quoted Drive query string.
func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
