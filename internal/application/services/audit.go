package services

import (
	"context"
	"log"

	"github.com/peoplekit/hradmin/internal/domain/models"
)

// AuditSink records administrative actions. Writes are best-effort; a
// failing sink never fails the action it describes.
type AuditSink interface {
	Write(ctx context.Context, entry models.AuditEntry) error
}

// auditEntry builds one entry; a non-nil opErr marks it failed and carries
// the error text as detail.
func auditEntry(actor, action, resource, recordID string, opErr error) models.AuditEntry {
	entry := models.AuditEntry{
		Actor:    actor,
		Action:   action,
		Resource: resource,
		RecordID: recordID,
		Outcome:  models.AuditOutcomeSuccess,
	}
	if opErr != nil {
		entry.Outcome = models.AuditOutcomeFailure
		entry.Detail = opErr.Error()
	}
	return entry
}

// writeAudit writes one entry, logging and swallowing sink failures.
func writeAudit(ctx context.Context, sink AuditSink, entry models.AuditEntry) {
	if sink == nil {
		return
	}
	if err := sink.Write(ctx, entry); err != nil {
		log.Printf("⚠️ Audit write failed for %s %s: %v", entry.Action, entry.Resource, err)
	}
}
