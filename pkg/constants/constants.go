package constants

// HTTP and API constants
const (
	ContentTypeJSON = "application/json"
	ContentTypeCSV  = "text/csv"

	HeaderContentType        = "Content-Type"
	HeaderAuthorization      = "Authorization"
	HeaderContentDisposition = "Content-Disposition"

	BearerPrefix = "Bearer "
)

// Context keys
const (
	ContextKeyActor = "actor"
	ContextKeyToken = "token"
)

// Query parameters understood by the HR backend list endpoints
const (
	ParamPage         = "page"
	ParamPageSize     = "page_size"
	ParamSearch       = "search"
	ParamOrdering     = "ordering"
	ParamExportFormat = "export_format"

	ExportFormatCSV = "csv"
)

// ParamSort is the rows endpoint's column-toggle action. It is translated
// into ParamOrdering when the backend query is built.
const ParamSort = "sort"

// Pagination defaults
const (
	DefaultPage     = 1
	DefaultPageSize = 25
	MaxPageSize     = 100
)

// Sort directions for table ordering
const (
	SortAscending  = "asc"
	SortDescending = "desc"
)

// Common field names
const (
	FieldID   = "id"
	FieldName = "name"
	FieldCode = "code"
)

// serverManagedFields are stripped from every generated descriptor list:
// the backend writes them, admins never do.
var serverManagedFields = map[string]struct{}{
	"id":             {},
	"created_at":     {},
	"updated_at":     {},
	"created_by":     {},
	"updated_by":     {},
	"is_deleted":     {},
	"deleted_at":     {},
	"deleted_by":     {},
	"organization":   {},
	"employee_count": {},
}

// IsServerManaged reports whether a field name is backend-owned and must be
// excluded from generated forms and schemas.
func IsServerManaged(name string) bool {
	_, ok := serverManagedFields[name]
	return ok
}

// relationalChoiceFields are foreign-key shaped and unusable as free text,
// so their kind is always forced to choice.
var relationalChoiceFields = map[string]struct{}{
	"parent":           {},
	"head":             {},
	"employee":         {},
	"location":         {},
	"workflow":         {},
	"approver_role":    {},
	"approver_user":    {},
	"current_approver": {},
	"approver_type":    {},
	"entity_type":      {},
}

// IsRelationalChoice reports whether a field name belongs to the fixed set
// that is always rendered as a closed selection.
func IsRelationalChoice(name string) bool {
	_, ok := relationalChoiceFields[name]
	return ok
}

// transferEnabledModules is the allow-list of module names whose backends
// implement the import/export/template endpoints. Static configuration, not
// schema-derived.
var transferEnabledModules = map[string]struct{}{
	"departments": {},
	"shifts":      {},
	"geo-fences":  {},
	"types":       {},
	"permissions": {},
	"roles":       {},
}

// IsTransferEnabled reports whether bulk import/export is available for a
// module.
func IsTransferEnabled(module string) bool {
	_, ok := transferEnabledModules[module]
	return ok
}
