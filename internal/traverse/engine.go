package traverse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/jun/drivectl/internal/adapter"
	"github.com/jun/drivectl/internal/conflict"
	"github.com/jun/drivectl/internal/localfs"
	"github.com/jun/drivectl/internal/logging"
	"github.com/jun/drivectl/internal/model"
)

// Downloader writes one remote file to a local path.
type Downloader interface {
	DownloadTo(ctx context.Context, item *model.RemoteItem, localPath string) (int64, error)
}

// Options controls one download call.
type Options struct {
	// Dest is the local directory the tree is created under. Empty means ".".
	Dest   string
	Policy conflict.Policy
}

// Result summarizes a finished traversal.
type Result struct {
	FilesDownloaded int
	FilesSkipped    int
	FoldersCreated  int
	Bytes           int64
}

// Engine downloads a remote file or folder tree, depth first and one
// transfer at a time.
type Engine struct {
	client   adapter.StorageAdapter
	reader   *DirectoryReader
	transfer Downloader
	logger   *logging.Logger
	out      io.Writer
}

// NewEngine creates an Engine. Per-file progress lines are written to out.
func NewEngine(client adapter.StorageAdapter, transfer Downloader, logger *logging.Logger, out io.Writer) *Engine {
	if logger == nil {
		logger = logging.Nop()
	}
	if out == nil {
		out = io.Discard
	}
	return &Engine{
		client:   client,
		reader:   NewDirectoryReader(client),
		transfer: transfer,
		logger:   logger,
		out:      out,
	}
}

// traversal is the state of one Download call tree.
type traversal struct {
	opts     Options
	root     *model.RemoteItem
	resolver *PathResolver
	visited  map[string]bool
	result   Result
}

// Download fetches id and materializes it under opts.Dest. A file is written
// as Dest/<title>; a folder becomes Dest/<title>/ holding its whole subtree.
// The first conflict or local I/O failure stops the traversal; files already
// written stay in place. The returned Result is valid even on error.
func (e *Engine) Download(ctx context.Context, id string, opts Options) (*Result, error) {
	if opts.Dest == "" {
		opts.Dest = "."
	}
	t := &traversal{
		opts:     opts,
		resolver: NewPathResolver(e.client),
		visited:  make(map[string]bool),
	}

	if _, err := localfs.EnsureDir(opts.Dest); err != nil {
		return &t.result, err
	}

	item, err := e.client.FetchMetadata(ctx, id)
	if err != nil {
		return &t.result, err
	}
	err = e.visit(ctx, t, item)
	return &t.result, err
}

func (e *Engine) visit(ctx context.Context, t *traversal, item *model.RemoteItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.visited[item.ID] {
		e.logger.Debug().Str("item_id", item.ID).Str("title", item.Title).Msg("already visited, skipping")
		return nil
	}
	t.visited[item.ID] = true

	if !item.IsFolder() {
		return e.downloadFile(ctx, t, item)
	}

	if t.root == nil {
		t.root = item
		fmt.Fprintf(e.out, "%s is a folder, downloading recursively\n", item.Title)
		if err := e.ensureDir(ctx, t, item); err != nil {
			return err
		}
	}

	files, folders, err := e.reader.List(ctx, item.ID)
	if err != nil {
		return err
	}
	e.logger.Debug().Str("folder_id", item.ID).Str("title", item.Title).Int("files", len(files)).Int("folders", len(folders)).Msg("listed folder")

	for i := range files {
		if err := e.visit(ctx, t, &files[i]); err != nil {
			return err
		}
	}
	for i := range folders {
		if t.visited[folders[i].ID] {
			continue
		}
		if err := e.ensureDir(ctx, t, &folders[i]); err != nil {
			return err
		}
		if err := e.visit(ctx, t, &folders[i]); err != nil {
			return err
		}
	}
	return nil
}

// ensureDir creates the local directory of folder if it is missing.
func (e *Engine) ensureDir(ctx context.Context, t *traversal, folder *model.RemoteItem) error {
	rel, err := t.resolver.Resolve(ctx, folder, t.root)
	if err != nil {
		return err
	}
	return e.makeDir(t, filepath.Join(t.opts.Dest, rel))
}

func (e *Engine) makeDir(t *traversal, path string) error {
	created, err := localfs.EnsureDir(path)
	if err != nil {
		return err
	}
	if created {
		t.result.FoldersCreated++
		e.logger.Debug().Str("path", path).Msg("created directory")
	}
	return nil
}

func (e *Engine) downloadFile(ctx context.Context, t *traversal, item *model.RemoteItem) error {
	rel := localfs.SanitizeName(item.Title)
	if t.root != nil {
		var err error
		if rel, err = t.resolver.Resolve(ctx, item, t.root); err != nil {
			return err
		}
	}
	localPath := filepath.Join(t.opts.Dest, rel)

	exists, err := localfs.Exists(localPath)
	if err != nil {
		return err
	}
	decision, err := t.opts.Policy.Decide(localPath, exists)
	e.logger.Debug().Str("item_id", item.ID).Str("path", localPath).Str("decision", decision.String()).Msg("checked local file")
	if err != nil {
		return err
	}
	if decision == conflict.Skip {
		fmt.Fprintf(e.out, "%s already exists, skipping.\n", localPath)
		t.result.FilesSkipped++
		return nil
	}

	// A first parent listed after this file, or one outside the root,
	// resolves to a directory no listing has created yet.
	if t.root != nil {
		if err := e.makeDir(t, filepath.Dir(localPath)); err != nil {
			return err
		}
	}

	fmt.Fprintf(e.out, "Downloading %s\n", localPath)
	n, err := e.transfer.DownloadTo(ctx, item, localPath)
	if errors.Is(err, adapter.ErrUnsupportedType) {
		e.logger.Warn().Str("path", localPath).Str("mime_type", item.MIMEType).Msg("no downloadable content, skipping")
		t.result.FilesSkipped++
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Downloaded %s\n", localPath)
	t.result.FilesDownloaded++
	t.result.Bytes += n
	return nil
}
