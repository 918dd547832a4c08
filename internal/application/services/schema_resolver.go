package services

import (
	"context"
	"log"

	"github.com/peoplekit/hradmin/internal/domain/schema"
	"github.com/peoplekit/hradmin/pkg/constants"
)

// schemaIntrospector is the slice of the HR client the resolver needs.
type schemaIntrospector interface {
	Introspect(ctx context.Context, endpoint string, authToken string) ([]schema.FieldDescriptor, error)
}

// SchemaResolver produces the ordered descriptor list for a resource.
// Live introspection is preferred; when it fails or comes back empty the
// override registry takes over, and a minimal name/code pair is the last
// resort. Field discovery is advisory, so failures degrade instead of
// propagating.
type SchemaResolver struct {
	client    schemaIntrospector
	overrides *OverrideRegistry
}

// NewSchemaResolver creates a SchemaResolver.
func NewSchemaResolver(client schemaIntrospector, overrides *OverrideRegistry) *SchemaResolver {
	return &SchemaResolver{client: client, overrides: overrides}
}

// Resolve returns the descriptor list for a binding, post-processed with
// the session's choice cache. Order is preserved relative to whichever
// source produced the list.
func (r *SchemaResolver) Resolve(ctx context.Context, binding schema.ResourceBinding, choices schema.ChoiceCache, authToken string) []schema.FieldDescriptor {
	fields := r.discover(ctx, binding, authToken)
	return postProcess(fields, choices)
}

// discover picks the raw descriptor source.
func (r *SchemaResolver) discover(ctx context.Context, binding schema.ResourceBinding, authToken string) []schema.FieldDescriptor {
	live, err := r.client.Introspect(ctx, binding.Endpoint, authToken)
	if err != nil {
		log.Printf("⚠️ Schema discovery failed for %s: %v (falling back to overrides)", binding.Endpoint, err)
	} else if usable := filterServerManaged(live); len(usable) > 0 {
		return usable
	}

	if override, ok := r.overrides.Lookup(binding.Key()); ok {
		return filterServerManaged(override)
	}
	return MinimalFallback()
}

// filterServerManaged strips backend-owned field names. Applied to every
// source so the exclusion invariant holds no matter where descriptors come
// from.
func filterServerManaged(fields []schema.FieldDescriptor) []schema.FieldDescriptor {
	out := make([]schema.FieldDescriptor, 0, len(fields))
	for _, f := range fields {
		if constants.IsServerManaged(f.Name) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// postProcess injects cached choices into descriptors that have none of
// their own, and forces the fixed relational field set to choice kind no
// matter what the source reported.
func postProcess(fields []schema.FieldDescriptor, choices schema.ChoiceCache) []schema.FieldDescriptor {
	for i := range fields {
		f := &fields[i]
		if opts, ok := choices.Get(f.Name); ok && !f.HasChoices() {
			f.Choices = opts
			f.Kind = schema.KindChoice
		}
		if constants.IsRelationalChoice(f.Name) {
			f.Kind = schema.KindChoice
		}
	}
	return fields
}
