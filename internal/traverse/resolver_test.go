package traverse

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jun/drivectl/internal/adapter"
	"github.com/jun/drivectl/internal/adapter/memory"
	"github.com/jun/drivectl/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fetch(t *testing.T, m *memory.MemoryAdapter, id string) *model.RemoteItem {
	t.Helper()
	item, err := m.FetchMetadata(context.Background(), id)
	require.NoError(t, err)
	return item
}

func TestPathResolver_Resolve(t *testing.T) {
	m := memory.NewMemoryAdapter()
	reports := m.AddFolder("Reports", adapter.RootFolderID)
	q1 := m.AddFile("q1.csv", nil, reports)
	archive := m.AddFolder("Archive", reports)
	q2 := m.AddFile("q2.csv", nil, archive)
	root := fetch(t, m, reports)

	tests := []struct {
		name string
		id   string
		want string
	}{
		{"root itself", reports, "Reports"},
		{"direct child", q1, filepath.Join("Reports", "q1.csv")},
		{"sub-folder", archive, filepath.Join("Reports", "Archive")},
		{"nested file", q2, filepath.Join("Reports", "Archive", "q2.csv")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewPathResolver(m)
			got, err := r.Resolve(context.Background(), fetch(t, m, tt.id), root)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPathResolver_DeepTree(t *testing.T) {
	m := memory.NewMemoryAdapter()
	top := m.AddFolder("top", adapter.RootFolderID)
	parent := top
	want := []string{"top"}
	for _, name := range []string{"a", "b", "c", "d"} {
		parent = m.AddFolder(name, parent)
		want = append(want, name)
	}
	leaf := m.AddFile("leaf.txt", nil, parent)
	want = append(want, "leaf.txt")

	got, err := NewPathResolver(m).Resolve(context.Background(), fetch(t, m, leaf), fetch(t, m, top))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(want...), got)
}

func TestPathResolver_Idempotent(t *testing.T) {
	m := memory.NewMemoryAdapter()
	reports := m.AddFolder("Reports", adapter.RootFolderID)
	archive := m.AddFolder("Archive", reports)
	q2 := m.AddFile("q2.csv", nil, archive)
	root := fetch(t, m, reports)
	item := fetch(t, m, q2)

	r := NewPathResolver(m)
	first, err := r.Resolve(context.Background(), item, root)
	require.NoError(t, err)
	before, _ := m.Calls()

	second, err := r.Resolve(context.Background(), item, root)
	require.NoError(t, err)
	after, _ := m.Calls()

	assert.Equal(t, first, second)
	assert.Equal(t, before, after, "second resolve should be served from resolved folders")
}

func TestPathResolver_ParentlessChainFallsBackToRoot(t *testing.T) {
	m := memory.NewMemoryAdapter()
	reports := m.AddFolder("Reports", adapter.RootFolderID)
	orphan := m.AddFolder("Orphan")
	file := m.AddFile("x.txt", nil, orphan)

	got, err := NewPathResolver(m).Resolve(context.Background(), fetch(t, m, file), fetch(t, m, reports))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("Reports", "Orphan", "x.txt"), got)
}

func TestPathResolver_CycleFallsBackToRoot(t *testing.T) {
	m := memory.NewMemoryAdapter()
	reports := m.AddFolder("Reports", adapter.RootFolderID)
	m.AddItem(model.RemoteItem{ID: "a", Title: "A", MIMEType: model.FolderMIMEType, ParentIDs: []string{"b"}}, nil)
	m.AddItem(model.RemoteItem{ID: "b", Title: "B", MIMEType: model.FolderMIMEType, ParentIDs: []string{"a"}}, nil)
	file := m.AddFile("x.txt", nil, "a")

	got, err := NewPathResolver(m).Resolve(context.Background(), fetch(t, m, file), fetch(t, m, reports))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("Reports", "B", "A", "x.txt"), got)
}

func TestPathResolver_FirstParentWins(t *testing.T) {
	m := memory.NewMemoryAdapter()
	reports := m.AddFolder("Reports", adapter.RootFolderID)
	a := m.AddFolder("A", reports)
	b := m.AddFolder("B", reports)
	shared := m.AddFile("shared.txt", nil, b, a)

	got, err := NewPathResolver(m).Resolve(context.Background(), fetch(t, m, shared), fetch(t, m, reports))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("Reports", "B", "shared.txt"), got)
}

func TestPathResolver_SanitizesTitles(t *testing.T) {
	m := memory.NewMemoryAdapter()
	reports := m.AddFolder("Reports", adapter.RootFolderID)
	sneaky := m.AddFolder("..", reports)
	file := m.AddFile("a/b.txt", nil, sneaky)

	got, err := NewPathResolver(m).Resolve(context.Background(), fetch(t, m, file), fetch(t, m, reports))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("Reports", "__", "a_b.txt"), got)
	assert.True(t, filepath.IsLocal(got))
}

func TestPathResolver_FetchError(t *testing.T) {
	m := memory.NewMemoryAdapter()
	reports := m.AddFolder("Reports", adapter.RootFolderID)
	file := m.AddFile("x.txt", nil, "deleted-parent")

	_, err := NewPathResolver(m).Resolve(context.Background(), fetch(t, m, file), fetch(t, m, reports))
	assert.ErrorIs(t, err, adapter.ErrNotFound)
}
