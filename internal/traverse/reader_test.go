package traverse

import (
	"context"
	"testing"

	"github.com/jun/drivectl/internal/adapter"
	"github.com/jun/drivectl/internal/adapter/memory"
	"github.com/jun/drivectl/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titles(items []model.RemoteItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Title)
	}
	return out
}

func TestDirectoryReader_List_AllPages(t *testing.T) {
	m := memory.NewMemoryAdapter()
	m.PageSize = 2
	folder := m.AddFolder("Reports", adapter.RootFolderID)
	m.AddFile("a.csv", nil, folder)
	m.AddFolder("Archive", folder)
	m.AddFile("b.csv", nil, folder)
	m.AddFile("c.csv", nil, folder)
	m.AddFolder("Drafts", folder)

	files, folders, err := NewDirectoryReader(m).List(context.Background(), folder)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.csv", "b.csv", "c.csv"}, titles(files))
	assert.Equal(t, []string{"Archive", "Drafts"}, titles(folders))

	_, lists := m.Calls()
	assert.Equal(t, 3, lists)
}

func TestDirectoryReader_List_Empty(t *testing.T) {
	m := memory.NewMemoryAdapter()
	folder := m.AddFolder("Empty", adapter.RootFolderID)

	files, folders, err := NewDirectoryReader(m).List(context.Background(), folder)
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.Empty(t, folders)
}

func TestDirectoryReader_List_PropagatesError(t *testing.T) {
	m := memory.NewMemoryAdapter()

	_, _, err := NewDirectoryReader(m).List(context.Background(), "missing")
	assert.ErrorIs(t, err, adapter.ErrNotFound)
}

type stuckPager struct {
	*memory.MemoryAdapter
}

func (s stuckPager) ListChildren(ctx context.Context, folderID, pageToken string) (*model.ChildPage, error) {
	return &model.ChildPage{NextPageToken: "again"}, nil
}

func TestDirectoryReader_List_RepeatedToken(t *testing.T) {
	_, _, err := NewDirectoryReader(stuckPager{memory.NewMemoryAdapter()}).List(context.Background(), "x")
	assert.ErrorIs(t, err, adapter.ErrTransport)
}
