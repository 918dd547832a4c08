package fieldkinds

import (
	"embed"
	"encoding/json"
	"strings"
	"sync"
)

//go:embed kinds.json
var kindsFS embed.FS

// KindDefinition represents one field kind's rendering and behavior facts
type KindDefinition struct {
	Label        string   `json:"label"`
	Description  string   `json:"description"`
	Widget       string   `json:"widget"`
	InputType    string   `json:"inputType,omitempty"`
	Step         string   `json:"step,omitempty"`
	IsMultiline  bool     `json:"isMultiline,omitempty"`
	IsNumeric    bool     `json:"isNumeric,omitempty"`
	IsTemporal   bool     `json:"isTemporal,omitempty"`
	IsSearchable bool     `json:"isSearchable,omitempty"`
	IsSortable   bool     `json:"isSortable,omitempty"`
	Aliases      []string `json:"aliases,omitempty"`
}

// DefaultWidget is used for any kind the registry does not know;
// unknown kinds render as single-line text input.
const DefaultWidget = "text"

// Registry holds field kind definitions
type Registry struct {
	kinds   map[string]KindDefinition
	aliases map[string]string
	mu      sync.RWMutex
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// GetRegistry returns the singleton field kinds registry
func GetRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = &Registry{
			kinds:   make(map[string]KindDefinition),
			aliases: make(map[string]string),
		}
		defaultRegistry.loadFromEmbedded()
	})
	return defaultRegistry
}

// loadFromEmbedded loads kind definitions from the embedded JSON file
func (r *Registry) loadFromEmbedded() error {
	data, err := kindsFS.ReadFile("kinds.json")
	if err != nil {
		return err
	}

	var kinds map[string]KindDefinition
	if err := json.Unmarshal(data, &kinds); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = kinds
	for name, def := range kinds {
		for _, alias := range def.Aliases {
			r.aliases[alias] = name
		}
	}
	return nil
}

// Get returns a kind definition by name
func (r *Registry) Get(kind string) (KindDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.kinds[kind]
	return def, ok
}

// Canonical maps a backend-reported type name onto one of the canonical
// kinds, via exact match first and then the alias table. Unknown names map
// to "string".
func (r *Registry) Canonical(reported string) string {
	name := strings.ToLower(strings.TrimSpace(reported))
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.kinds[name]; ok {
		return name
	}
	if canonical, ok := r.aliases[name]; ok {
		return canonical
	}
	return "string"
}

// WidgetFor returns the widget for a kind. Pure function of the kind name.
func (r *Registry) WidgetFor(kind string) string {
	def, ok := r.Get(kind)
	if !ok || def.Widget == "" {
		return DefaultWidget
	}
	return def.Widget
}

// InputTypeFor returns the HTML input type for a kind, empty when the
// widget is not input-shaped
func (r *Registry) InputTypeFor(kind string) string {
	def, ok := r.Get(kind)
	if !ok {
		return "text"
	}
	return def.InputType
}

// StepFor returns the numeric step for a kind ("1" integer, "0.01" decimal)
func (r *Registry) StepFor(kind string) string {
	def, ok := r.Get(kind)
	if !ok {
		return ""
	}
	return def.Step
}

// IsNumeric returns whether a kind holds numeric values
func (r *Registry) IsNumeric(kind string) bool {
	def, ok := r.Get(kind)
	if !ok {
		return false
	}
	return def.IsNumeric
}

// IsTemporal returns whether a kind holds date/time values
func (r *Registry) IsTemporal(kind string) bool {
	def, ok := r.Get(kind)
	if !ok {
		return false
	}
	return def.IsTemporal
}

// IsSearchable returns whether free-text search covers a kind
func (r *Registry) IsSearchable(kind string) bool {
	def, ok := r.Get(kind)
	if !ok {
		return false
	}
	return def.IsSearchable
}

// IsSortable returns whether list ordering supports a kind
func (r *Registry) IsSortable(kind string) bool {
	def, ok := r.Get(kind)
	if !ok {
		return false
	}
	return def.IsSortable
}

// GetAll returns all registered kinds
func (r *Registry) GetAll() map[string]KindDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make(map[string]KindDefinition, len(r.kinds))
	for k, v := range r.kinds {
		result[k] = v
	}
	return result
}

// Package-level convenience functions using the default registry

// Canonical maps a backend-reported type name onto a canonical kind
func Canonical(reported string) string {
	return GetRegistry().Canonical(reported)
}

// WidgetFor returns the widget for a kind
func WidgetFor(kind string) string {
	return GetRegistry().WidgetFor(kind)
}

// InputTypeFor returns the HTML input type for a kind
func InputTypeFor(kind string) string {
	return GetRegistry().InputTypeFor(kind)
}

// StepFor returns the numeric step for a kind
func StepFor(kind string) string {
	return GetRegistry().StepFor(kind)
}

// IsNumeric returns whether a kind holds numeric values
func IsNumeric(kind string) bool {
	return GetRegistry().IsNumeric(kind)
}

// IsTemporal returns whether a kind holds date/time values
func IsTemporal(kind string) bool {
	return GetRegistry().IsTemporal(kind)
}

// IsSearchable returns whether free-text search covers a kind
func IsSearchable(kind string) bool {
	return GetRegistry().IsSearchable(kind)
}

// IsSortable returns whether list ordering supports a kind
func IsSortable(kind string) bool {
	return GetRegistry().IsSortable(kind)
}
