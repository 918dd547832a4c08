package services

import (
	"github.com/peoplekit/hradmin/internal/domain/schema"
)

// OverrideRegistry holds hand-authored descriptor lists for resources whose
// backends publish no usable schema. Keyed by the exact binding key,
// populated once at startup.
type OverrideRegistry struct {
	entries map[string][]schema.FieldDescriptor
	columns map[string][]schema.ColumnModel
}

// Lookup returns a copy of the override for a binding key, so callers can
// post-process descriptors without leaking changes across sessions.
func (r *OverrideRegistry) Lookup(key string) ([]schema.FieldDescriptor, bool) {
	fields, ok := r.entries[key]
	if !ok {
		return nil, false
	}
	out := make([]schema.FieldDescriptor, len(fields))
	copy(out, fields)
	return out, true
}

// DisplayColumns returns extra computed columns configured for a resource.
func (r *OverrideRegistry) DisplayColumns(key string) []schema.ColumnModel {
	cols, ok := r.columns[key]
	if !ok {
		return nil
	}
	out := make([]schema.ColumnModel, len(cols))
	copy(out, cols)
	return out
}

// MinimalFallback is the descriptor list used when neither introspection
// nor an override yields anything: every admin resource at least has a
// name and a code.
func MinimalFallback() []schema.FieldDescriptor {
	return []schema.FieldDescriptor{
		{Name: "name", Label: "Name", Kind: schema.KindString, Required: true},
		{Name: "code", Label: "Code", Kind: schema.KindString, Required: true},
	}
}

// NewOverrideRegistry builds the startup registry. The lists mirror what
// each backend serializer actually accepts, tuned per resource.
func NewOverrideRegistry() *OverrideRegistry {
	str := func(name, label string, required bool) schema.FieldDescriptor {
		return schema.FieldDescriptor{Name: name, Label: label, Kind: schema.KindString, Required: required}
	}
	rel := func(name, label string, required bool) schema.FieldDescriptor {
		return schema.FieldDescriptor{Name: name, Label: label, Kind: schema.KindChoice, Required: required}
	}
	boolean := func(name, label string) schema.FieldDescriptor {
		return schema.FieldDescriptor{Name: name, Label: label, Kind: schema.KindBoolean}
	}
	integer := func(name, label string, required bool) schema.FieldDescriptor {
		return schema.FieldDescriptor{Name: name, Label: label, Kind: schema.KindInteger, Required: required}
	}
	decimal := func(name, label string, required bool) schema.FieldDescriptor {
		return schema.FieldDescriptor{Name: name, Label: label, Kind: schema.KindDecimal, Required: required}
	}

	entries := map[string][]schema.FieldDescriptor{
		"employees/departments": {
			str("name", "Name", true),
			str("code", "Code", true),
			{Name: "description", Label: "Description", Kind: schema.KindText},
			rel("parent", "Parent Department", false),
			rel("head", "Department Head", false),
		},
		"attendance/shifts": {
			str("name", "Name", true),
			str("code", "Code", true),
			{Name: "start_time", Label: "Start Time", Kind: schema.KindTime, Required: true},
			{Name: "end_time", Label: "End Time", Kind: schema.KindTime, Required: true},
			integer("grace_in_minutes", "Grace In (minutes)", false),
			integer("grace_out_minutes", "Grace Out (minutes)", false),
			integer("break_duration_minutes", "Break Duration (minutes)", false),
			decimal("working_hours", "Working Hours", false),
			boolean("is_night_shift", "Night Shift"),
		},
		"attendance/geo-fences": {
			str("name", "Name", true),
			rel("location", "Location", false),
			decimal("latitude", "Latitude", true),
			decimal("longitude", "Longitude", true),
			integer("radius_meters", "Radius (meters)", true),
			boolean("is_primary", "Primary"),
		},
		"leave/types": {
			str("name", "Name", true),
			str("code", "Code", true),
			decimal("annual_quota", "Annual Quota", true),
			{Name: "accrual_type", Label: "Accrual Type", Kind: schema.KindChoice, Choices: []schema.ChoiceOption{
				{Value: "yearly", Display: "Yearly"},
				{Value: "monthly", Display: "Monthly"},
			}},
			boolean("carry_forward_allowed", "Carry Forward Allowed"),
			decimal("max_carry_forward", "Max Carry Forward", false),
			boolean("is_paid", "Paid Leave"),
			boolean("requires_approval", "Requires Approval"),
			integer("min_days_notice", "Minimum Days Notice", false),
			str("color", "Color", false),
		},
		"payroll/runs": {
			str("name", "Name", true),
			{Name: "period_start", Label: "Period Start", Kind: schema.KindDate, Required: true},
			{Name: "period_end", Label: "Period End", Kind: schema.KindDate, Required: true},
			{Name: "pay_date", Label: "Pay Date", Kind: schema.KindDate},
			{Name: "status", Label: "Status", Kind: schema.KindChoice, Choices: []schema.ChoiceOption{
				{Value: "draft", Display: "Draft"},
				{Value: "processing", Display: "Processing"},
				{Value: "completed", Display: "Completed"},
				{Value: "paid", Display: "Paid"},
			}},
			{Name: "notes", Label: "Notes", Kind: schema.KindText},
		},
		"workflows/definitions": {
			str("name", "Name", true),
			str("code", "Code", true),
			rel("entity_type", "Entity Type", true),
			{Name: "description", Label: "Description", Kind: schema.KindText},
			boolean("is_active", "Active"),
			boolean("auto_approve_on_sla", "Auto-approve on SLA breach"),
		},
		"workflows/steps": {
			rel("workflow", "Workflow", true),
			integer("order", "Order", true),
			str("name", "Name", true),
			rel("approver_type", "Approver Type", true),
			rel("approver_role", "Approver Role", false),
			rel("approver_user", "Approver User", false),
			boolean("is_optional", "Optional"),
			boolean("can_delegate", "Can Delegate"),
		},
		"workflows/instances": {
			rel("workflow", "Workflow", true),
			rel("entity_type", "Entity Type", true),
			str("entity_id", "Entity ID", true),
			integer("current_step", "Current Step", false),
			{Name: "status", Label: "Status", Kind: schema.KindChoice, Choices: []schema.ChoiceOption{
				{Value: "pending", Display: "Pending"},
				{Value: "in_progress", Display: "In Progress"},
				{Value: "approved", Display: "Approved"},
				{Value: "rejected", Display: "Rejected"},
			}},
			rel("current_approver", "Current Approver", false),
		},
		"rbac/permissions": {
			str("name", "Name", true),
			str("code", "Code", true),
			{Name: "description", Label: "Description", Kind: schema.KindText},
		},
		"rbac/roles": {
			str("name", "Name", true),
			str("code", "Code", true),
			{Name: "description", Label: "Description", Kind: schema.KindText},
			boolean("is_active", "Active"),
		},
	}

	columns := map[string][]schema.ColumnModel{
		"attendance/shifts": {
			{Key: "span", Label: "Hours", Computed: `CONCAT(start_time, " - ", end_time)`},
		},
		"employees/departments": {
			{Key: "state", Label: "Status", Computed: `YESNO(is_active, "Active", "Inactive")`},
		},
		"workflows/instances": {
			{Key: "progress", Label: "Progress", Computed: `CONCAT("Step ", COALESCE(current_step, 0))`},
		},
	}

	return &OverrideRegistry{entries: entries, columns: columns}
}
