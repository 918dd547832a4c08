package hrapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/peoplekit/hradmin/internal/domain/schema"
	"github.com/peoplekit/hradmin/pkg/fieldkinds"
	"github.com/peoplekit/hradmin/pkg/utils"
)

// introspectionField is one entry of the backend's OPTIONS field map.
type introspectionField struct {
	Type     string                `json:"type"`
	Required bool                  `json:"required"`
	ReadOnly bool                  `json:"read_only"`
	Label    string                `json:"label"`
	Choices  []schema.ChoiceOption `json:"choices"`
}

// introspectionBody is the OPTIONS response shell. Only the POST action
// describes acceptable write fields.
type introspectionBody struct {
	Name    string `json:"name"`
	Actions struct {
		POST json.RawMessage `json:"POST"`
	} `json:"actions"`
}

// Introspect issues an OPTIONS call against the endpoint and maps the
// write-field description into descriptors, preserving the backend's field
// order. An empty result with nil error means the backend answered but
// published no usable field list.
func (c *Client) Introspect(ctx context.Context, endpoint string, authToken string) ([]schema.FieldDescriptor, error) {
	raw, err := c.doRequest(ctx, http.MethodOptions, endpoint, nil, nil, authToken)
	if err != nil {
		return nil, err
	}

	var body introspectionBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("unusable introspection response: %w", err)
	}
	if len(body.Actions.POST) == 0 {
		return nil, nil
	}
	return parseActionFields(body.Actions.POST)
}

// parseActionFields walks the field object token by token so the original
// field order survives; a plain map decode would scramble it.
func parseActionFields(raw json.RawMessage) ([]schema.FieldDescriptor, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("unusable field map: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("field map is not an object")
	}

	var fields []schema.FieldDescriptor
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("unusable field map: %w", err)
		}
		name, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("field map key is not a string")
		}

		var meta introspectionField
		if err := dec.Decode(&meta); err != nil {
			return nil, fmt.Errorf("unusable field entry %q: %w", name, err)
		}

		label := meta.Label
		if label == "" {
			label = utils.Humanize(name)
		}
		fields = append(fields, schema.FieldDescriptor{
			Name:     name,
			Label:    label,
			Kind:     schema.Kind(fieldkinds.Canonical(meta.Type)),
			Required: meta.Required,
			ReadOnly: meta.ReadOnly,
			Choices:  meta.Choices,
		})
	}
	return fields, nil
}
