package services

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/peoplekit/hradmin/internal/domain/models"
	"github.com/peoplekit/hradmin/internal/infrastructure/hrapi"
	"github.com/peoplekit/hradmin/pkg/constants"
	"github.com/peoplekit/hradmin/pkg/errors"
)

// transferClient is the backend surface for CSV round-trips.
type transferClient interface {
	DownloadCSV(ctx context.Context, endpoint string, query url.Values, authToken string) (hrapi.Download, error)
	ImportFile(ctx context.Context, endpoint, filename string, file io.Reader, authToken string) (hrapi.ImportResult, error)
}

// TransferService handles CSV export, import template download and bulk
// import for the modules on the transfer allow-list.
type TransferService struct {
	client transferClient
	audit  AuditSink
}

// NewTransferService creates the service.
func NewTransferService(client transferClient, audit AuditSink) *TransferService {
	return &TransferService{client: client, audit: audit}
}

// Export downloads the resource as CSV with the session's current search,
// sort and filters applied. Pagination never narrows an export.
func (s *TransferService) Export(ctx context.Context, sess *PageSession, authToken, actor string) (hrapi.Download, error) {
	if !constants.IsTransferEnabled(sess.Binding.Module) {
		return hrapi.Download{}, errors.NewTransferDisabledError(sess.Binding.Module)
	}

	query := sess.Table().State().ExportQuery()
	dl, err := s.client.DownloadCSV(ctx, sess.Binding.Export(), query, authToken)
	if err != nil {
		writeAudit(ctx, s.audit, auditEntry(actor, models.AuditActionExport, sess.Binding.Key(), "", err))
		return hrapi.Download{}, err
	}
	if dl.Filename == "" {
		dl.Filename = sess.Binding.Module + ".csv"
	}

	writeAudit(ctx, s.audit, auditEntry(actor, models.AuditActionExport, sess.Binding.Key(), "", nil))
	return dl, nil
}

// Template downloads the empty import template for the resource.
func (s *TransferService) Template(ctx context.Context, sess *PageSession, authToken string) (hrapi.Download, error) {
	if !constants.IsTransferEnabled(sess.Binding.Module) {
		return hrapi.Download{}, errors.NewTransferDisabledError(sess.Binding.Module)
	}

	dl, err := s.client.DownloadCSV(ctx, sess.Binding.Template(), nil, authToken)
	if err != nil {
		return hrapi.Download{}, err
	}
	if dl.Filename == "" {
		dl.Filename = sess.Binding.Module + "_template.csv"
	}
	return dl, nil
}

// Import uploads one CSV file and returns the backend's outcome for review.
// The refresh token bumps exactly once when at least one row landed; a
// zero-success import leaves the table untouched so the operator can fix
// the file and retry against the same view.
func (s *TransferService) Import(ctx context.Context, sess *PageSession, filename string, file io.Reader, authToken, actor string) (hrapi.ImportResult, error) {
	if !constants.IsTransferEnabled(sess.Binding.Module) {
		return hrapi.ImportResult{}, errors.NewTransferDisabledError(sess.Binding.Module)
	}

	result, err := s.client.ImportFile(ctx, sess.Binding.Import(), filename, file, authToken)
	if err != nil {
		writeAudit(ctx, s.audit, auditEntry(actor, models.AuditActionImport, sess.Binding.Key(), "", err))
		return hrapi.ImportResult{}, err
	}

	if result.SuccessCount > 0 {
		sess.bumpRefresh()
	}

	entry := auditEntry(actor, models.AuditActionImport, sess.Binding.Key(), "", nil)
	entry.Detail = fmt.Sprintf("%d imported, %d failed", result.SuccessCount, result.ErrorCount)
	writeAudit(ctx, s.audit, entry)
	return result, nil
}
