package services

import (
	"context"
	"strings"

	"github.com/peoplekit/hradmin/internal/domain/models"
	"github.com/peoplekit/hradmin/internal/domain/schema"
	"github.com/peoplekit/hradmin/pkg/errors"
	"github.com/peoplekit/hradmin/pkg/utils"
)

// recordWriter is the backend surface the orchestrator mutates through.
type recordWriter interface {
	Create(ctx context.Context, endpoint string, payload schema.FormDraft, authToken string) (schema.Record, error)
	Update(ctx context.Context, detailEndpoint string, payload schema.FormDraft, authToken string) (schema.Record, error)
	Delete(ctx context.Context, detailEndpoint string, authToken string) error
}

// synthesizedIDFields are client-supplied unique identifiers the backend
// requires but operators never type. When required and absent a v4 id is
// generated at submit time.
var synthesizedIDFields = map[string]struct{}{
	"external_id": {},
	"employee_id": {},
}

// CrudService drives create, update and delete for a mounted page and owns
// the success bookkeeping: refresh token bump, selection reset and the
// audit entry.
type CrudService struct {
	writer recordWriter
	audit  AuditSink
}

// NewCrudService creates the orchestrator.
func NewCrudService(writer recordWriter, audit AuditSink) *CrudService {
	return &CrudService{writer: writer, audit: audit}
}

// Create sanitizes the draft, fills in required-but-absent client ids,
// checks required fields and submits. On success the session's refresh
// token is bumped once and the selection cleared.
func (s *CrudService) Create(ctx context.Context, sess *PageSession, values map[string]any, authToken, actor string) (schema.Record, error) {
	fields := sess.Fields()
	draft := schema.NewFormDraft(fields, schema.Record(values)).Sanitize()
	synthesizeClientIDs(fields, draft)

	if missing := draft.MissingRequired(fields); len(missing) > 0 {
		return nil, errors.NewValidationError(strings.Join(missing, ", "), "required field is missing or blank")
	}

	record, err := s.writer.Create(ctx, sess.Binding.Endpoint, draft, authToken)
	if err != nil {
		writeAudit(ctx, s.audit, auditEntry(actor, models.AuditActionCreate, sess.Binding.Key(), "", err))
		return nil, err
	}

	sess.bumpRefresh()
	sess.ClearSelection()
	writeAudit(ctx, s.audit, auditEntry(actor, models.AuditActionCreate, sess.Binding.Key(), record.ID(), nil))
	return record, nil
}

// Update sanitizes the draft and patches the selected row. Success handling
// matches Create: one refresh token bump, selection cleared.
func (s *CrudService) Update(ctx context.Context, sess *PageSession, recordID string, values map[string]any, authToken, actor string) (schema.Record, error) {
	fields := sess.Fields()
	draft := schema.NewFormDraft(fields, schema.Record(values)).Sanitize()

	if missing := draft.MissingRequired(fields); len(missing) > 0 {
		return nil, errors.NewValidationError(strings.Join(missing, ", "), "required field is missing or blank")
	}

	record, err := s.writer.Update(ctx, sess.Binding.Detail(recordID), draft, authToken)
	if err != nil {
		writeAudit(ctx, s.audit, auditEntry(actor, models.AuditActionUpdate, sess.Binding.Key(), recordID, err))
		return nil, err
	}

	sess.bumpRefresh()
	sess.ClearSelection()
	writeAudit(ctx, s.audit, auditEntry(actor, models.AuditActionUpdate, sess.Binding.Key(), recordID, nil))
	return record, nil
}

// Delete removes the row and bumps the refresh token once. A selection
// pointing at the deleted row is cleared.
func (s *CrudService) Delete(ctx context.Context, sess *PageSession, recordID, authToken, actor string) error {
	if err := s.writer.Delete(ctx, sess.Binding.Detail(recordID), authToken); err != nil {
		writeAudit(ctx, s.audit, auditEntry(actor, models.AuditActionDelete, sess.Binding.Key(), recordID, err))
		return err
	}

	sess.bumpRefresh()
	if sess.SelectedID() == recordID {
		sess.ClearSelection()
	}
	writeAudit(ctx, s.audit, auditEntry(actor, models.AuditActionDelete, sess.Binding.Key(), recordID, nil))
	return nil
}

// synthesizeClientIDs fills required identifier fields that sanitization
// left empty. Operates on the sanitized draft in place.
func synthesizeClientIDs(fields []schema.FieldDescriptor, draft schema.FormDraft) {
	for _, f := range fields {
		if !f.Required || f.ReadOnly {
			continue
		}
		if _, ok := synthesizedIDFields[f.Name]; !ok {
			continue
		}
		if v, ok := draft[f.Name]; !ok || v == nil {
			draft[f.Name] = utils.GenerateID()
		}
	}
}
