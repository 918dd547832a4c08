package schema

// FormWidget is one rendered input of a generated form.
type FormWidget struct {
	Name      string         `json:"name"`
	Label     string         `json:"label"`
	Widget    string         `json:"widget"`
	InputType string         `json:"input_type,omitempty"`
	Step      string         `json:"step,omitempty"`
	Required  bool           `json:"required"`
	Multiline bool           `json:"multiline,omitempty"`
	Options   []ChoiceOption `json:"options,omitempty"`
	Value     any            `json:"value,omitempty"`
}

// FormModel is the generated create/edit form for one resource.
type FormModel struct {
	Mode    string       `json:"mode"`
	Title   string       `json:"title"`
	Widgets []FormWidget `json:"widgets"`
}

// Form modes
const (
	FormModeCreate = "create"
	FormModeEdit   = "edit"
)

// ColumnModel is one generated table column.
type ColumnModel struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Sortable bool   `json:"sortable"`
	// Computed holds an optional display expression evaluated per row.
	Computed string `json:"computed,omitempty"`
}

// TableModel is the generated list view for one resource.
type TableModel struct {
	Columns           []ColumnModel `json:"columns"`
	SearchPlaceholder string        `json:"search_placeholder"`
	RowKey            string        `json:"row_key"`
	Transfer          bool          `json:"transfer"`
}
