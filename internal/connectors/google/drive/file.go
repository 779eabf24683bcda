package drive

import (
	"context"
	"fmt"
	"io"
	"time"

	drivev3 "google.golang.org/api/drive/v3"

	"github.com/custodia-labs/inkling/internal/core/domain"
)

// MimeTypeGoogleDoc is the Drive type of native Google Docs.
const MimeTypeGoogleDoc = "application/vnd.google-apps.document"

// ExportMimeText is the export format for Google Docs.
const ExportMimeText = "text/plain"

// MaxExportSize caps exported content at 5MB; longer exports are truncated.
const MaxExportSize = 5 * 1024 * 1024

// listFields are the file fields requested when listing.
const listFields = "nextPageToken, files(id, name, mimeType, webViewLink, createdTime, modifiedTime)"

// FileToItem converts a listed Drive file to an item handle.
func FileToItem(file *drivev3.File) domain.ItemHandle {
	item := domain.ItemHandle{
		ExternalID: file.Id,
		Name:       file.Name,
		MIMEType:   file.MimeType,
		Metadata: map[string]string{
			domain.MetaTitle:   file.Name,
			domain.MetaURL:     file.WebViewLink,
			domain.MetaCreated: file.CreatedTime,
		},
	}
	if t, err := time.Parse(time.RFC3339, file.ModifiedTime); err == nil {
		item.ModifiedAt = t.UTC()
	}
	return item
}

// exportText downloads the plain text export of a Google Doc.
func exportText(ctx context.Context, svc *drivev3.Service, fileID string) ([]byte, error) {
	resp, err := svc.Files.Export(fileID, ExportMimeText).Context(ctx).Download()
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxExportSize))
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	return data, nil
}
