// Package progress reports byte progress of transfers.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// Reporter receives progress of one transfer.
type Reporter interface {
	Start(total int64, description string)
	Update(current int64)
	Finish()
}

// Factory creates a Reporter per transfer.
type Factory func() Reporter

// CLIProgress implements Reporter with a terminal progress bar.
type CLIProgress struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

// NewCLIProgress creates a progress bar reporter writing to out (usually stderr).
func NewCLIProgress(out io.Writer) *CLIProgress {
	return &CLIProgress{out: out}
}

// CLIFactory returns a Factory of progress bars writing to out.
func CLIFactory(out io.Writer) Factory {
	return func() Reporter { return NewCLIProgress(out) }
}

// Start initializes the progress bar with total size and description.
func (p *CLIProgress) Start(total int64, description string) {
	out := p.out
	p.bar = progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(out),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(out, "\r")
		}),
	)
}

// Update moves the bar to current bytes.
func (p *CLIProgress) Update(current int64) {
	if p.bar != nil {
		_ = p.bar.Set64(current)
	}
}

// Finish completes the progress bar.
func (p *CLIProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

// StderrFactory returns progress bars on stderr when enabled and stderr is
// a terminal, and silent reporters otherwise.
func StderrFactory(enabled bool) Factory {
	if enabled && term.IsTerminal(int(os.Stderr.Fd())) {
		return CLIFactory(os.Stderr)
	}
	return NoOpFactory
}

// NoOpProgress is a progress reporter that does nothing.
type NoOpProgress struct{}

func (NoOpProgress) Start(total int64, description string) {}
func (NoOpProgress) Update(current int64)                  {}
func (NoOpProgress) Finish()                               {}

// NoOpFactory returns silent reporters.
func NoOpFactory() Reporter {
	return NoOpProgress{}
}

// Reader wraps an io.Reader to report progress.
type Reader struct {
	reader   io.Reader
	reporter Reporter
	current  int64
}

// NewReader creates a progress-reporting reader.
func NewReader(reader io.Reader, reporter Reporter) *Reader {
	return &Reader{reader: reader, reporter: reporter}
}

// Read implements io.Reader with progress reporting.
func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.current += int64(n)
	r.reporter.Update(r.current)
	return n, err
}
