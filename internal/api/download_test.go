package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachmentName(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "empty header", header: "", want: DefaultExportFilename},
		{name: "named attachment", header: `attachment; filename="march.xlsx"`, want: "march.xlsx"},
		{name: "no filename", header: "attachment", want: DefaultExportFilename},
		{name: "path traversal", header: `attachment; filename="../../etc/passwd"`, want: "passwd"},
		{name: "parent dir only", header: `attachment; filename=".."`, want: DefaultExportFilename},
		{name: "malformed", header: `attachment; filename="`, want: DefaultExportFilename},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, attachmentName(tt.header))
		})
	}
}

func TestFormDownloader_Download(t *testing.T) {
	var gotForm url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		w.Header().Set("Content-Disposition", `attachment; filename="report.xlsx"`)
		_, _ = w.Write([]byte("workbook"))
	}))
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "exports")
	downloader := NewFormDownloader(srv.Client(), dir, slog.New(slog.NewTextHandler(io.Discard, nil)))

	form := url.Values{"ranges": {"[]"}}
	require.NoError(t, downloader.Download(context.Background(), srv.URL, form))

	assert.Equal(t, form, gotForm)
	content, err := os.ReadFile(filepath.Join(dir, "report.xlsx"))
	require.NoError(t, err)
	assert.Equal(t, "workbook", string(content))
}

func TestFormDownloader_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad ranges", http.StatusBadRequest)
	}))
	defer srv.Close()

	dir := t.TempDir()
	downloader := NewFormDownloader(nil, dir, nil)

	err := downloader.Download(context.Background(), srv.URL, url.Values{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "bad ranges")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
