package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jun/drivectl/internal/adapter"
	"github.com/jun/drivectl/internal/model"
)

const (
	maxDemoContentSize = 16 * 1024 * 1024 // 16MB
	maxDemoTitleLength = 255
	maxDemoItemCount   = 500

	defaultPageSize = 100

	// RootTitle is the title the in-memory root folder reports.
	RootTitle = "My Drive"
)

type node struct {
	item    model.RemoteItem
	content []byte
	trashed bool
	shared  bool
}

// MemoryAdapter implements adapter.StorageAdapter over an in-memory tree.
// Listing order is insertion order, paged PageSize items at a time.
type MemoryAdapter struct {
	mu    sync.RWMutex
	nodes map[string]*node
	order []string

	PageSize int

	// counters for tests
	metadataCalls int
	listCalls     int
}

// NewMemoryAdapter returns an adapter holding only the root folder.
func NewMemoryAdapter() *MemoryAdapter {
	m := &MemoryAdapter{
		nodes:    make(map[string]*node),
		PageSize: defaultPageSize,
	}
	m.add(model.RemoteItem{ID: adapter.RootFolderID, Title: RootTitle, MIMEType: model.FolderMIMEType}, nil)
	return m
}

// AddFolder creates a folder under parentIDs and returns its id.
// No parents means the item is parentless (a malformed or shared-with-me item).
func (m *MemoryAdapter) AddFolder(title string, parentIDs ...string) string {
	return m.add(model.RemoteItem{Title: title, MIMEType: model.FolderMIMEType, ParentIDs: parentIDs}, nil)
}

// AddFile creates a file under parentIDs and returns its id.
func (m *MemoryAdapter) AddFile(title string, content []byte, parentIDs ...string) string {
	return m.add(model.RemoteItem{Title: title, MIMEType: "application/octet-stream", ParentIDs: parentIDs}, content)
}

// AddItem stores an arbitrary item, assigning an id if it has none.
func (m *MemoryAdapter) AddItem(item model.RemoteItem, content []byte) string {
	return m.add(item, content)
}

func (m *MemoryAdapter) add(item model.RemoteItem, content []byte) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	item.Size = int64(len(content))
	item.ModifiedTime = time.Now()
	m.nodes[item.ID] = &node{item: item, content: content}
	m.order = append(m.order, item.ID)
	return item.ID
}

// Trash marks an item as trashed; it stays fetchable but is no longer listed.
func (m *MemoryAdapter) Trash(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.nodes[id]; ok {
		n.trashed = true
	}
}

// IsShared reports whether ShareWithAnyone was called for id.
func (m *MemoryAdapter) IsShared(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.nodes[id]
	return ok && n.shared
}

// Content returns the stored bytes of id.
func (m *MemoryAdapter) Content(id string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.nodes[id]
	if !ok {
		return nil, false
	}
	return n.content, true
}

// Calls returns how many metadata fetches and list pages were served.
func (m *MemoryAdapter) Calls() (metadata, list int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.metadataCalls, m.listCalls
}

func (m *MemoryAdapter) FetchMetadata(ctx context.Context, id string) (*model.RemoteItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metadataCalls++

	n, ok := m.nodes[id]
	if !ok {
		return nil, fmt.Errorf("get metadata of %s: %w", id, adapter.ErrNotFound)
	}
	item := n.item
	item.ParentIDs = append([]string(nil), n.item.ParentIDs...)
	return &item, nil
}

func (m *MemoryAdapter) ListChildren(ctx context.Context, folderID, pageToken string) (*model.ChildPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++

	if folderID == "" {
		folderID = adapter.RootFolderID
	}
	if _, ok := m.nodes[folderID]; !ok {
		return nil, fmt.Errorf("list children of %s: %w", folderID, adapter.ErrNotFound)
	}

	offset := 0
	if pageToken != "" {
		var err error
		offset, err = strconv.Atoi(pageToken)
		if err != nil || offset < 0 {
			return nil, fmt.Errorf("list children of %s: invalid page token %q: %w", folderID, pageToken, adapter.ErrTransport)
		}
	}

	var children []model.RemoteItem
	for _, id := range m.order {
		n := m.nodes[id]
		if n.trashed || !hasParent(n.item, folderID) {
			continue
		}
		children = append(children, n.item)
	}

	pageSize := m.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	page := &model.ChildPage{}
	if offset >= len(children) {
		return page, nil
	}
	end := offset + pageSize
	if end < len(children) {
		page.NextPageToken = strconv.Itoa(end)
	} else {
		end = len(children)
	}
	page.Items = append(page.Items, children[offset:end]...)
	return page, nil
}

func hasParent(item model.RemoteItem, folderID string) bool {
	for _, p := range item.ParentIDs {
		if p == folderID {
			return true
		}
	}
	return false
}

func (m *MemoryAdapter) Download(ctx context.Context, id string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n, ok := m.nodes[id]
	if !ok {
		return nil, fmt.Errorf("download %s: %w", id, adapter.ErrNotFound)
	}
	if n.item.IsFolder() {
		return nil, fmt.Errorf("%s is a folder: %w", n.item.Title, adapter.ErrUnsupportedType)
	}
	return io.NopCloser(bytes.NewReader(n.content)), nil
}

func (m *MemoryAdapter) Upload(ctx context.Context, req adapter.UploadRequest) (*model.RemoteItem, error) {
	if len(req.Title) > maxDemoTitleLength {
		return nil, fmt.Errorf("name too long (max %d characters)", maxDemoTitleLength)
	}
	content, err := io.ReadAll(io.LimitReader(req.Content, maxDemoContentSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload content: %w", err)
	}
	if len(content) > maxDemoContentSize {
		return nil, fmt.Errorf("content too large (max %d bytes)", maxDemoContentSize)
	}

	m.mu.RLock()
	count := len(m.nodes)
	m.mu.RUnlock()
	if count >= maxDemoItemCount {
		return nil, fmt.Errorf("item limit reached for in-memory storage (max %d items)", maxDemoItemCount)
	}

	parent := req.ParentID
	if parent == "" {
		parent = adapter.RootFolderID
	}
	mimeType := req.MIMEType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	id := m.add(model.RemoteItem{Title: req.Title, MIMEType: mimeType, ParentIDs: []string{parent}}, content)
	return m.FetchMetadata(ctx, id)
}

func (m *MemoryAdapter) ShareWithAnyone(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.nodes[id]
	if !ok {
		return fmt.Errorf("share %s: %w", id, adapter.ErrNotFound)
	}
	n.shared = true
	n.item.WebContentLink = "memory://" + id + "?export=download"
	return nil
}
