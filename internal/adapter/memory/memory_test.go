package memory

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/jun/drivectl/internal/adapter"
)

func TestMemoryAdapter_ListChildren_Paginates(t *testing.T) {
	m := NewMemoryAdapter()
	m.PageSize = 2
	ctx := context.Background()

	folder := m.AddFolder("Docs", adapter.RootFolderID)
	var want []string
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		want = append(want, m.AddFile(name, []byte(name), folder))
	}

	var got []string
	token := ""
	pages := 0
	for {
		page, err := m.ListChildren(ctx, folder, token)
		if err != nil {
			t.Fatalf("ListChildren failed: %v", err)
		}
		pages++
		for _, item := range page.Items {
			got = append(got, item.ID)
		}
		if page.NextPageToken == "" {
			break
		}
		token = page.NextPageToken
	}

	if pages != 3 {
		t.Errorf("Expected 3 pages, got %d", pages)
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Expected insertion order %v, got %v", want, got)
	}
}

func TestMemoryAdapter_ListChildren_SkipsTrashed(t *testing.T) {
	m := NewMemoryAdapter()
	ctx := context.Background()

	keep := m.AddFile("keep.txt", nil, adapter.RootFolderID)
	gone := m.AddFile("gone.txt", nil, adapter.RootFolderID)
	m.Trash(gone)

	page, err := m.ListChildren(ctx, adapter.RootFolderID, "")
	if err != nil {
		t.Fatalf("ListChildren failed: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != keep {
		t.Errorf("Expected only %s, got %+v", keep, page.Items)
	}
}

func TestMemoryAdapter_ListChildren_MultiParent(t *testing.T) {
	m := NewMemoryAdapter()
	ctx := context.Background()

	a := m.AddFolder("A", adapter.RootFolderID)
	b := m.AddFolder("B", adapter.RootFolderID)
	shared := m.AddFile("shared.txt", nil, a, b)

	for _, folder := range []string{a, b} {
		page, err := m.ListChildren(ctx, folder, "")
		if err != nil {
			t.Fatalf("ListChildren failed: %v", err)
		}
		if len(page.Items) != 1 || page.Items[0].ID != shared {
			t.Errorf("Expected shared file under %s, got %+v", folder, page.Items)
		}
	}
}

func TestMemoryAdapter_FetchMetadata_NotFound(t *testing.T) {
	m := NewMemoryAdapter()

	_, err := m.FetchMetadata(context.Background(), "nonexistent-id")
	if !errors.Is(err, adapter.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestMemoryAdapter_DownloadFolder(t *testing.T) {
	m := NewMemoryAdapter()
	folder := m.AddFolder("Docs", adapter.RootFolderID)

	_, err := m.Download(context.Background(), folder)
	if !errors.Is(err, adapter.ErrUnsupportedType) {
		t.Errorf("Expected ErrUnsupportedType, got %v", err)
	}
}

func TestMemoryAdapter_UploadAndShare(t *testing.T) {
	m := NewMemoryAdapter()
	ctx := context.Background()

	item, err := m.Upload(ctx, adapter.UploadRequest{
		Title:   "report.pdf",
		Content: strings.NewReader("%PDF-1.7"),
	})
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if parent, _ := item.FirstParent(); parent != adapter.RootFolderID {
		t.Errorf("Expected parent root, got %q", parent)
	}
	if item.Size != 8 {
		t.Errorf("Expected size 8, got %d", item.Size)
	}

	if err := m.ShareWithAnyone(ctx, item.ID); err != nil {
		t.Fatalf("ShareWithAnyone failed: %v", err)
	}
	if !m.IsShared(item.ID) {
		t.Error("Expected item to be shared")
	}

	shared, _ := m.FetchMetadata(ctx, item.ID)
	if shared.WebContentLink == "" {
		t.Error("Expected a content link after sharing")
	}

	rc, err := m.Download(ctx, item.ID)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	data, _ := io.ReadAll(rc)
	if string(data) != "%PDF-1.7" {
		t.Errorf("Expected uploaded content, got %q", data)
	}
}

func TestMemoryAdapter_UploadLimits(t *testing.T) {
	m := NewMemoryAdapter()
	ctx := context.Background()

	t.Run("Title length limit", func(t *testing.T) {
		_, err := m.Upload(ctx, adapter.UploadRequest{
			Title:   strings.Repeat("a", maxDemoTitleLength+1),
			Content: strings.NewReader("x"),
		})
		if err == nil || !strings.Contains(err.Error(), "name too long") {
			t.Errorf("Expected error about name length, got: %v", err)
		}
	})

	t.Run("Content size limit", func(t *testing.T) {
		_, err := m.Upload(ctx, adapter.UploadRequest{
			Title:   "big.bin",
			Content: io.LimitReader(zeroReader{}, maxDemoContentSize+1),
		})
		if err == nil || !strings.Contains(err.Error(), "content too large") {
			t.Errorf("Expected error about content size, got: %v", err)
		}
	})
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func TestProvider_SeedDemo(t *testing.T) {
	p := NewProvider(SeedDemo)
	ctx := context.Background()

	a, _ := p.GetAdapter(ctx, "default")
	again, _ := p.GetAdapter(ctx, "default")
	if a != again {
		t.Error("Expected the same tree for the same account")
	}

	page, err := a.ListChildren(ctx, adapter.RootFolderID, "")
	if err != nil {
		t.Fatalf("ListChildren failed: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].Title != "Reports" {
		t.Errorf("Expected seeded Reports folder, got %+v", page.Items)
	}
}

func TestMemoryAdapter_FetchRoot(t *testing.T) {
	m := NewMemoryAdapter()

	root, err := m.FetchMetadata(context.Background(), adapter.RootFolderID)
	if err != nil {
		t.Fatalf("FetchMetadata(root) failed: %v", err)
	}
	if root.Title != RootTitle || !root.IsFolder() {
		t.Errorf("unexpected root: %+v", root)
	}
	if _, ok := root.FirstParent(); ok {
		t.Error("root should have no parent")
	}
}
