package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	homedir.DisableCache = true
}

// runCLI runs drivectl against the in-memory demo tree with an empty HOME.
func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	var out, errb bytes.Buffer
	code = run(context.Background(), append([]string{"--backend", "memory"}, args...), &out, &errb)
	return code, out.String(), errb.String()
}

func TestRun_NoAction(t *testing.T) {
	code, stdout, stderr := runCLI(t)

	assert.Equal(t, exitUsage, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "no action given")
	assert.Contains(t, stderr, "Usage:")
}

func TestRun_List(t *testing.T) {
	code, stdout, stderr := runCLI(t, "list")
	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "Title: Reports\tid: demo-reports\n", stdout)

	code, stdout, _ = runCLI(t, "list", "demo-reports")
	require.Equal(t, exitOK, code)
	assert.Equal(t, "Title: q1.csv\tid: demo-q1\nTitle: Archive\tid: demo-archive\n", stdout)

	code, stdout, _ = runCLI(t, "list", "demo-reports", "--folders")
	require.Equal(t, exitOK, code)
	assert.Equal(t, "Title: Archive\tid: demo-archive\n", stdout)
}

func TestRun_LegacyList(t *testing.T) {
	code, stdout, _ := runCLI(t, "-l")
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "id: demo-reports")

	code, stdout, _ = runCLI(t, "-l", "demo-archive")
	require.Equal(t, exitOK, code)
	assert.Equal(t, "Title: q2.csv\tid: demo-q2\n", stdout)
}

func TestRun_Download(t *testing.T) {
	dest := t.TempDir()

	code, stdout, stderr := runCLI(t, "download", "demo-reports", "--dest", dest)
	require.Equal(t, exitOK, code, stderr)

	data, err := os.ReadFile(filepath.Join(dest, "Reports", "Archive", "q2.csv"))
	require.NoError(t, err)
	assert.Equal(t, "quarter,revenue\nq2,120\n", string(data))
	assert.FileExists(t, filepath.Join(dest, "Reports", "q1.csv"))
	assert.True(t, strings.HasSuffix(stdout, "2 downloaded, 0 skipped, 2 folders\n"), stdout)
}

func TestRun_Download_Conflict(t *testing.T) {
	dest := t.TempDir()
	existing := filepath.Join(dest, "Reports", "q1.csv")
	require.NoError(t, os.MkdirAll(filepath.Dir(existing), 0o755))
	require.NoError(t, os.WriteFile(existing, []byte("mine"), 0o644))

	code, _, stderr := runCLI(t, "download", "demo-reports", "--dest", dest)
	assert.Equal(t, exitConflict, code)
	assert.Contains(t, stderr, filepath.Join("Reports", "q1.csv"))
	assert.NoDirExists(t, filepath.Join(dest, "Reports", "Archive"))

	code, stdout, _ := runCLI(t, "-d", "demo-reports", "--dest", dest, "--skip-existing")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, existing+" already exists, skipping.")
	assert.FileExists(t, filepath.Join(dest, "Reports", "Archive", "q2.csv"))

	data, _ := os.ReadFile(existing)
	assert.Equal(t, "mine", string(data))
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"both conflict flags", []string{"download", "demo-reports", "--skip-existing", "--force-overwrite"}},
		{"download without id", []string{"download"}},
		{"upload without path", []string{"upload"}},
		{"two legacy actions", []string{"-l", "-d", "demo-q1"}},
		{"unknown flag", []string{"list", "--bogus"}},
		{"stray argument", []string{"-d", "demo-q1", "extra"}},
		{"bad backend", []string{"--backend", "dropbox", "list"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := runCLI(t, tt.args...)
			assert.Equal(t, exitUsage, code, stderr)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, "Usage:")
		})
	}
}

func TestRun_Upload(t *testing.T) {
	src := filepath.Join(t.TempDir(), "q3.csv")
	require.NoError(t, os.WriteFile(src, []byte("quarter,revenue\nq3,140\n"), 0o644))

	code, stdout, stderr := runCLI(t, "upload", src, "--parent", "demo-reports")
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "Get it with: ")
	assert.Contains(t, stdout, "URL: memory://")

	code, stdout, _ = runCLI(t, "-u", src, "-p", "demo-reports")
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "Get it with: ")
}

func TestRun_NotFound(t *testing.T) {
	code, _, stderr := runCLI(t, "download", "missing-id", "--dest", t.TempDir())

	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "not found")
}

func TestRun_AuthOnMemoryBackend(t *testing.T) {
	code, _, stderr := runCLI(t, "auth", "status")

	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "googledrive backend")
}
