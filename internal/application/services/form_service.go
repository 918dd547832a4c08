package services

import (
	"github.com/peoplekit/hradmin/internal/domain/schema"
	"github.com/peoplekit/hradmin/pkg/fieldkinds"
	"github.com/peoplekit/hradmin/pkg/utils"
)

// FormService builds form view models from descriptor lists. Presentation
// only: it never validates and never touches the network.
type FormService struct{}

// NewFormService creates a FormService.
func NewFormService() *FormService {
	return &FormService{}
}

// BuildForm renders a create/edit form model. Read-only descriptors are
// excluded; the widget of each remaining field is a pure function of its
// kind. Initial values come from the draft.
func (s *FormService) BuildForm(mode, title string, fields []schema.FieldDescriptor, draft schema.FormDraft) schema.FormModel {
	widgets := make([]schema.FormWidget, 0, len(fields))
	for _, f := range fields {
		if f.ReadOnly {
			continue
		}

		kind := string(f.Kind)
		w := schema.FormWidget{
			Name:      f.Name,
			Label:     f.Label,
			Widget:    fieldkinds.WidgetFor(kind),
			InputType: fieldkinds.InputTypeFor(kind),
			Step:      fieldkinds.StepFor(kind),
			Required:  f.Required,
			Multiline: f.Kind == schema.KindText,
			Options:   f.Choices,
		}
		if v, ok := draft[f.Name]; ok {
			if f.Kind == schema.KindBoolean {
				w.Value = utils.ToBool(v)
			} else {
				w.Value = v
			}
		}
		widgets = append(widgets, w)
	}

	return schema.FormModel{
		Mode:    mode,
		Title:   title,
		Widgets: widgets,
	}
}
