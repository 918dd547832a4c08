package schema

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/peoplekit/hradmin/pkg/constants"
)

// TableState captures everything that determines one page of list results.
// Value semantics: transitions return a new state, so an in-flight fetch
// can be keyed to the exact state that produced it.
type TableState struct {
	Page      int               `json:"page"`
	PageSize  int               `json:"page_size"`
	Search    string            `json:"search"`
	SortBy    string            `json:"sort_by"`
	SortOrder string            `json:"sort_order"`
	Filters   map[string]string `json:"filters,omitempty"`
}

// NewTableState returns the initial state for a freshly mounted page.
func NewTableState() TableState {
	return TableState{
		Page:      constants.DefaultPage,
		PageSize:  constants.DefaultPageSize,
		SortOrder: constants.SortAscending,
	}
}

// WithSearch sets the search term and resets to page 1.
func (s TableState) WithSearch(search string) TableState {
	s.Search = search
	s.Page = constants.DefaultPage
	return s.cloneFilters()
}

// WithFilter sets one filter and resets to page 1. An empty value clears
// the filter.
func (s TableState) WithFilter(key, value string) TableState {
	s = s.cloneFilters()
	if s.Filters == nil {
		s.Filters = make(map[string]string)
	}
	if value == "" {
		delete(s.Filters, key)
	} else {
		s.Filters[key] = value
	}
	s.Page = constants.DefaultPage
	return s
}

// WithPage moves to another page; filters and sort stay put.
func (s TableState) WithPage(page int) TableState {
	if page < 1 {
		page = constants.DefaultPage
	}
	s.Page = page
	return s.cloneFilters()
}

// WithPageSize changes the page size, capped, and returns to page 1.
func (s TableState) WithPageSize(size int) TableState {
	if size < 1 {
		size = constants.DefaultPageSize
	}
	if size > constants.MaxPageSize {
		size = constants.MaxPageSize
	}
	s.PageSize = size
	s.Page = constants.DefaultPage
	return s.cloneFilters()
}

// WithSort applies a sort click: the same column toggles direction,
// a new column starts ascending.
func (s TableState) WithSort(column string) TableState {
	if s.SortBy == column {
		if s.SortOrder == constants.SortAscending {
			s.SortOrder = constants.SortDescending
		} else {
			s.SortOrder = constants.SortAscending
		}
	} else {
		s.SortBy = column
		s.SortOrder = constants.SortAscending
	}
	return s.cloneFilters()
}

// Ordering encodes the sort for the backend: bare field name ascending,
// minus-prefixed descending, empty when unsorted.
func (s TableState) Ordering() string {
	if s.SortBy == "" {
		return ""
	}
	if s.SortOrder == constants.SortDescending {
		return "-" + s.SortBy
	}
	return s.SortBy
}

// Query renders the state as backend list-endpoint query parameters.
func (s TableState) Query() url.Values {
	q := url.Values{}
	q.Set(constants.ParamPage, strconv.Itoa(s.Page))
	q.Set(constants.ParamPageSize, strconv.Itoa(s.PageSize))
	if s.Search != "" {
		q.Set(constants.ParamSearch, s.Search)
	}
	if ordering := s.Ordering(); ordering != "" {
		q.Set(constants.ParamOrdering, ordering)
	}
	for k, v := range s.Filters {
		q.Set(k, v)
	}
	return q
}

// ExportQuery renders the state for a full-dataset export: search, sort and
// filters apply, pagination does not.
func (s TableState) ExportQuery() url.Values {
	q := url.Values{}
	if s.Search != "" {
		q.Set(constants.ParamSearch, s.Search)
	}
	if ordering := s.Ordering(); ordering != "" {
		q.Set(constants.ParamOrdering, ordering)
	}
	for k, v := range s.Filters {
		q.Set(k, v)
	}
	return q
}

// Key returns a deterministic fingerprint of the state. Responses are only
// applied while their fingerprint still matches the current state.
func (s TableState) Key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "p=%d|n=%d|q=%s|o=%s", s.Page, s.PageSize, s.Search, s.Ordering())
	if len(s.Filters) > 0 {
		keys := make([]string, 0, len(s.Filters))
		for k := range s.Filters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "|f:%s=%s", k, s.Filters[k])
		}
	}
	return b.String()
}

// cloneFilters copies the filter map so derived states never alias it.
func (s TableState) cloneFilters() TableState {
	if s.Filters == nil {
		return s
	}
	copied := make(map[string]string, len(s.Filters))
	for k, v := range s.Filters {
		copied[k] = v
	}
	s.Filters = copied
	return s
}
