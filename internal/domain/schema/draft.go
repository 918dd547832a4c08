package schema

import "strings"

// FormDraft is the mutable key-value payload a form accumulates before
// submission. Seeded empty for create, from the selected row for edit.
type FormDraft map[string]any

// NewFormDraft seeds a draft from a row snapshot, copying only the fields
// the descriptor list knows so server-managed values never leak into a
// submission. A nil row yields an empty create draft.
func NewFormDraft(fields []FieldDescriptor, row Record) FormDraft {
	draft := make(FormDraft, len(fields))
	if row == nil {
		return draft
	}
	for _, f := range fields {
		if v, ok := row[f.Name]; ok {
			draft[f.Name] = v
		}
	}
	return draft
}

// Sanitize prepares a draft for submission: every string value is trimmed,
// and a value that is empty after trimming becomes an explicit null so the
// backend can tell "cleared" from "untouched". Non-string values pass
// through unchanged. The receiver is not modified.
func (d FormDraft) Sanitize() FormDraft {
	out := make(FormDraft, len(d))
	for k, v := range d {
		s, ok := v.(string)
		if !ok {
			out[k] = v
			continue
		}
		trimmed := strings.TrimSpace(s)
		if trimmed == "" {
			out[k] = nil
		} else {
			out[k] = trimmed
		}
	}
	return out
}

// MissingRequired lists required fields that are absent, null, or blank in
// the draft. Read-only fields never count.
func (d FormDraft) MissingRequired(fields []FieldDescriptor) []string {
	var missing []string
	for _, f := range fields {
		if !f.Required || f.ReadOnly {
			continue
		}
		v, ok := d[f.Name]
		if !ok || v == nil {
			missing = append(missing, f.Name)
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			missing = append(missing, f.Name)
		}
	}
	return missing
}
