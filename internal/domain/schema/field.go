package schema

// Kind classifies the value shape of one editable field.
type Kind string

const (
	KindString   Kind = "string"
	KindText     Kind = "text"
	KindInteger  Kind = "integer"
	KindDecimal  Kind = "decimal"
	KindBoolean  Kind = "boolean"
	KindDate     Kind = "date"
	KindDatetime Kind = "datetime"
	KindTime     Kind = "time"
	KindChoice   Kind = "choice"
)

// ChoiceOption is one (value, display) pair of a closed selection.
// The json shape matches what the HR backend emits for choice fields.
type ChoiceOption struct {
	Value   any    `json:"value"`
	Display string `json:"display_name"`
}

// FieldDescriptor describes one editable attribute of a resource.
type FieldDescriptor struct {
	Name     string         `json:"name"`
	Label    string         `json:"label"`
	Kind     Kind           `json:"kind"`
	Required bool           `json:"required"`
	Choices  []ChoiceOption `json:"choices,omitempty"`
	ReadOnly bool           `json:"read_only,omitempty"`
}

// HasChoices reports whether the descriptor carries its own option list.
func (f FieldDescriptor) HasChoices() bool {
	return len(f.Choices) > 0
}

// ChoiceCache maps field names to their option lists, assembled once per
// page session from auxiliary lookups and static enumerations. Read-only
// after construction.
type ChoiceCache map[string][]ChoiceOption

// Get returns the cached options for a field name.
func (c ChoiceCache) Get(field string) ([]ChoiceOption, bool) {
	opts, ok := c[field]
	return opts, ok
}

// Record is one backend row, shape unknown until runtime.
type Record map[string]any

// ID returns the row identifier, empty when absent.
func (r Record) ID() string {
	return r.StringField("id")
}

// StringField returns a field as string, empty for missing or non-string
// values.
func (r Record) StringField(name string) string {
	v, ok := r[name]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}
