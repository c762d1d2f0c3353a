package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// DefaultExportFilename is used when the server does not name the attachment.
const DefaultExportFilename = "export.xlsx"

// FormDownloader posts a form and saves the returned attachment to a directory.
type FormDownloader struct {
	httpClient *http.Client
	logger     *slog.Logger
	dir        string
}

var _ Downloader = (*FormDownloader)(nil)

// NewFormDownloader creates a downloader that writes into dir.
func NewFormDownloader(httpClient *http.Client, dir string, logger *slog.Logger) *FormDownloader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FormDownloader{
		httpClient: httpClient,
		logger:     logger,
		dir:        dir,
	}
}

// Download posts form to endpoint and stores the response body.
func (d *FormDownloader) Download(ctx context.Context, endpoint string, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create download request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to submit download form: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("download failed: %d - %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := os.MkdirAll(d.dir, 0750); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}

	target := filepath.Join(d.dir, attachmentName(resp.Header.Get("Content-Disposition")))
	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}

	written, err := io.Copy(f, resp.Body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}

	d.logger.Info("Download saved", "file", target, "bytes", written)
	return nil
}

// attachmentName returns the base filename from a Content-Disposition header.
func attachmentName(header string) string {
	if header == "" {
		return DefaultExportFilename
	}

	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return DefaultExportFilename
	}

	name := filepath.Base(params["filename"])
	if name == "." || name == ".." || name == "/" || name == "" {
		return DefaultExportFilename
	}
	return name
}
