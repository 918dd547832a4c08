package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/peoplekit/hradmin/internal/domain/models"
)

const (
	createAuditTableSQL = `CREATE TABLE IF NOT EXISTS admin_audit_log (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		actor VARCHAR(255) NOT NULL DEFAULT '',
		action VARCHAR(50) NOT NULL,
		resource VARCHAR(100) NOT NULL,
		record_id VARCHAR(64) NOT NULL DEFAULT '',
		outcome VARCHAR(20) NOT NULL,
		detail TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_audit_created (created_at)
	)`

	insertAuditSQL = `INSERT INTO admin_audit_log (actor, action, resource, record_id, outcome, detail) VALUES (?, ?, ?, ?, ?, ?)`

	selectAuditSQL = `SELECT id, actor, action, resource, record_id, outcome, detail, created_at
		FROM admin_audit_log ORDER BY id DESC LIMIT ?`
)

// AuditRepository persists the audit trail to MySQL.
type AuditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a repository over an open connection.
func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// EnsureSchema creates the audit table when it does not exist yet.
func (r *AuditRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createAuditTableSQL); err != nil {
		return fmt.Errorf("failed to ensure audit table: %w", err)
	}
	return nil
}

// Write appends one entry. The database assigns id and timestamp.
func (r *AuditRepository) Write(ctx context.Context, entry models.AuditEntry) error {
	_, err := r.db.ExecContext(ctx, insertAuditSQL,
		entry.Actor, entry.Action, entry.Resource, entry.RecordID, entry.Outcome, entry.Detail)
	if err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}

// Recent returns the newest entries, newest first.
func (r *AuditRepository) Recent(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.QueryContext(ctx, selectAuditSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read audit trail: %w", err)
	}
	defer rows.Close()

	entries := make([]models.AuditEntry, 0, limit)
	for rows.Next() {
		var entry models.AuditEntry
		var detail sql.NullString

		if err := rows.Scan(&entry.ID, &entry.Actor, &entry.Action, &entry.Resource,
			&entry.RecordID, &entry.Outcome, &detail, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}

		entry.Detail = detail.String
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// NoopAuditStore swallows the audit trail when no database is configured.
// The console stays fully usable; actions just go unrecorded.
type NoopAuditStore struct{}

// Write discards the entry.
func (NoopAuditStore) Write(context.Context, models.AuditEntry) error {
	return nil
}

// Recent reports an empty trail.
func (NoopAuditStore) Recent(context.Context, int) ([]models.AuditEntry, error) {
	return []models.AuditEntry{}, nil
}
