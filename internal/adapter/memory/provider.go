package memory

import (
	"context"
	"sync"

	"github.com/jun/drivectl/internal/adapter"
	"github.com/jun/drivectl/internal/model"
)

// Provider implements adapter.StorageProvider with one in-memory tree per account.
type Provider struct {
	mu       sync.Mutex
	adapters map[string]*MemoryAdapter
	seed     func(*MemoryAdapter)
}

// NewProvider creates a provider; seed, if non-nil, populates each new tree.
func NewProvider(seed func(*MemoryAdapter)) *Provider {
	return &Provider{
		adapters: make(map[string]*MemoryAdapter),
		seed:     seed,
	}
}

// GetAdapter returns the tree of the given account, creating it on first use.
func (p *Provider) GetAdapter(ctx context.Context, account string) (adapter.StorageAdapter, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	m, ok := p.adapters[account]
	if !ok {
		m = NewMemoryAdapter()
		if p.seed != nil {
			p.seed(m)
		}
		p.adapters[account] = m
	}
	return m, nil
}

// SeedDemo populates a small sample tree under the storage root with fixed ids:
//
//	Reports/                demo-reports
//	Reports/q1.csv          demo-q1
//	Reports/Archive/        demo-archive
//	Reports/Archive/q2.csv  demo-q2
func SeedDemo(m *MemoryAdapter) {
	m.AddItem(model.RemoteItem{ID: "demo-reports", Title: "Reports", MIMEType: model.FolderMIMEType, ParentIDs: []string{adapter.RootFolderID}}, nil)
	m.AddItem(model.RemoteItem{ID: "demo-q1", Title: "q1.csv", MIMEType: "text/csv", ParentIDs: []string{"demo-reports"}}, []byte("quarter,revenue\nq1,100\n"))
	m.AddItem(model.RemoteItem{ID: "demo-archive", Title: "Archive", MIMEType: model.FolderMIMEType, ParentIDs: []string{"demo-reports"}}, nil)
	m.AddItem(model.RemoteItem{ID: "demo-q2", Title: "q2.csv", MIMEType: "text/csv", ParentIDs: []string{"demo-archive"}}, []byte("quarter,revenue\nq2,120\n"))
}
