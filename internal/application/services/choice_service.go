package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/peoplekit/hradmin/internal/domain/schema"
	"github.com/peoplekit/hradmin/pkg/constants"
)

// choiceLister is the slice of the HR client the loader needs.
type choiceLister interface {
	List(ctx context.Context, endpoint string, query url.Values, authToken string) (schema.Page, error)
}

// lookup binds one auxiliary list endpoint to the descriptor field names it
// feeds.
type lookup struct {
	endpoint string
	fields   []string
}

// lookups covers every relational field the admin resources reference.
// The employee list feeds four different field names.
var lookups = []lookup{
	{endpoint: "/api/v1/employees/departments/", fields: []string{"parent"}},
	{endpoint: "/api/v1/employees/employees/", fields: []string{"head", "employee", "approver_user", "current_approver"}},
	{endpoint: "/api/v1/core/locations/", fields: []string{"location"}},
	{endpoint: "/api/v1/workflows/definitions/", fields: []string{"workflow"}},
	{endpoint: "/api/v1/abac/roles/", fields: []string{"approver_role"}},
}

// staticChoices are enumerations that exist nowhere as list endpoints.
var staticChoices = schema.ChoiceCache{
	"approver_type": {
		{Value: "role", Display: "Role"},
		{Value: "user", Display: "Specific User"},
		{Value: "manager", Display: "Reporting Manager"},
	},
	"entity_type": {
		{Value: "leave_request", Display: "Leave Request"},
		{Value: "expense_claim", Display: "Expense Claim"},
		{Value: "payroll_run", Display: "Payroll Run"},
		{Value: "onboarding", Display: "Onboarding"},
		{Value: "performance_review", Display: "Performance Review"},
	},
}

// ChoiceLoader populates a page session's ChoiceCache.
type ChoiceLoader struct {
	client choiceLister
}

// NewChoiceLoader creates a ChoiceLoader backed by the HR client.
func NewChoiceLoader(client choiceLister) *ChoiceLoader {
	return &ChoiceLoader{client: client}
}

// Load fans one fetch per auxiliary lookup and joins them all before the
// cache is handed out. A failed lookup leaves its fields without options
// and contributes to the aggregated warning; it never aborts the others.
func (l *ChoiceLoader) Load(ctx context.Context, authToken string) (schema.ChoiceCache, error) {
	cache := make(schema.ChoiceCache, len(staticChoices)+len(lookups)*2)
	for field, opts := range staticChoices {
		cache[field] = opts
	}

	var (
		mu   sync.Mutex
		merr *multierror.Error
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, lk := range lookups {
		lk := lk
		g.Go(func() error {
			opts, err := l.fetchOptions(gctx, lk.endpoint, authToken)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				merr = multierror.Append(merr, fmt.Errorf("%s: %w", lk.endpoint, err))
				return nil
			}
			for _, field := range lk.fields {
				cache[field] = opts
			}
			return nil
		})
	}
	g.Wait()

	return cache, merr.ErrorOrNil()
}

// fetchOptions pulls one lookup list and normalizes rows into
// (id, displayLabel) pairs, using the same envelope normalization the list
// controller uses.
func (l *ChoiceLoader) fetchOptions(ctx context.Context, endpoint string, authToken string) ([]schema.ChoiceOption, error) {
	q := url.Values{}
	q.Set(constants.ParamPageSize, strconv.Itoa(constants.MaxPageSize))

	page, err := l.client.List(ctx, endpoint, q, authToken)
	if err != nil {
		return nil, err
	}

	opts := make([]schema.ChoiceOption, 0, len(page.Results))
	for _, rec := range page.Results {
		id, ok := rec["id"]
		if !ok || id == nil {
			continue
		}
		opts = append(opts, schema.ChoiceOption{Value: id, Display: displayLabel(rec)})
	}
	return opts, nil
}

// displayLabel picks the best human-readable text a lookup row offers.
func displayLabel(rec schema.Record) string {
	if name := rec.StringField("name"); name != "" {
		return name
	}
	if full := rec.StringField("full_name"); full != "" {
		return full
	}
	first, last := rec.StringField("first_name"), rec.StringField("last_name")
	if first != "" || last != "" {
		if first == "" {
			return last
		}
		if last == "" {
			return first
		}
		return first + " " + last
	}
	if code := rec.StringField("code"); code != "" {
		return code
	}
	return rec.ID()
}
