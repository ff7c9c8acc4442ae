package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/boutique/backoffice/internal/domain/report"
	"github.com/boutique/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrArchiveDisabled is returned when no object store is configured
var ErrArchiveDisabled = shared.NewStateError("EXPORT_ARCHIVE_DISABLED", "Export archiving is not configured")

// ObjectStore is where archived exports are written
type ObjectStore interface {
	// Upload stores data under key and returns the full object key
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// GenerateDownloadURL presigns a download of objectKey
	GenerateDownloadURL(ctx context.Context, objectKey string, expiresIn time.Duration) (string, time.Time, error)
}

// ArchivedExport describes an export written to object storage
type ArchivedExport struct {
	ObjectKey   string    `json:"object_key"`
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
	GeneratedAt time.Time `json:"generated_at"`
	Rows        int       `json:"rows"`
}

// SetExportArchive enables ArchiveLedgerExport (optional)
func (s *ReportService) SetExportArchive(store ObjectStore, linkTTL time.Duration) {
	s.archive = store
	s.archiveLinkTTL = linkTTL
}

// WriteExportCSV renders export rows as CSV with a header line
func WriteExportCSV(w io.Writer, rows []report.ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(report.ExportColumns); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row.Record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ArchiveLedgerExport renders the ledger export for filter as CSV, stores it
// and returns a presigned download link.
func (s *ReportService) ArchiveLedgerExport(ctx context.Context, tenantID uuid.UUID, filter ExportFilter) (*ArchivedExport, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}

	export, err := s.ExportLedger(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := WriteExportCSV(&buf, export.Rows); err != nil {
		return nil, fmt.Errorf("encode ledger export: %w", err)
	}

	key := ArchiveKey(tenantID, export)
	objectKey, err := s.archive.Upload(ctx, key, buf.Bytes(), "text/csv")
	if err != nil {
		return nil, shared.NewStorageError("archive ledger export", err)
	}
	url, expiresAt, err := s.archive.GenerateDownloadURL(ctx, objectKey, s.archiveLinkTTL)
	if err != nil {
		return nil, shared.NewStorageError("presign ledger export", err)
	}

	s.logger.Info("Ledger export archived",
		zap.String("tenant_id", tenantID.String()),
		zap.String("object_key", objectKey),
		zap.Int("rows", len(export.Rows)))

	return &ArchivedExport{
		ObjectKey:   objectKey,
		DownloadURL: url,
		ExpiresAt:   expiresAt,
		GeneratedAt: export.GeneratedAt,
		Rows:        len(export.Rows),
	}, nil
}

// ArchiveKey names the archived object: one folder per tenant, the window in
// the file name and the generation time to keep reruns apart.
func ArchiveKey(tenantID uuid.UUID, export *report.LedgerExport) string {
	return fmt.Sprintf("ledger-exports/%s/%s_%s_%s.csv",
		tenantID,
		export.Period.From.Format("20060102"),
		export.Period.To.Format("20060102"),
		export.GeneratedAt.UTC().Format("20060102T150405Z"))
}
