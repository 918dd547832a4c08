package services

import (
	"context"
	"log"
	"sync"

	"github.com/peoplekit/hradmin/internal/domain/schema"
	"github.com/peoplekit/hradmin/pkg/expression"
)

// FetchFunc retrieves one page of rows for a table state. The caller's
// bearer token passes through to the backend.
type FetchFunc func(ctx context.Context, state schema.TableState, authToken string) (schema.Page, error)

// ListSnapshot is the controller's answer to one list request.
type ListSnapshot struct {
	State        schema.TableState `json:"state"`
	Rows         []schema.Record   `json:"rows"`
	Count        int               `json:"count"`
	RefreshToken int64             `json:"refresh_token"`
	// Stale marks a response that was superseded by a newer state change;
	// the rows shown are the newer rendering, not this request's.
	Stale bool `json:"stale,omitempty"`
	// Error is the non-fatal fetch indicator; rows keep the previous page.
	Error string `json:"error,omitempty"`
}

// ListController owns the table state of one page session: pagination,
// search, sort, filters, the row cache, and the fetch that fills it.
type ListController struct {
	mu          sync.Mutex
	state       schema.TableState
	rows        []schema.Record
	count       int
	loaded      bool
	lastError   string
	seenRefresh int64

	fetch    FetchFunc
	refresh  func() int64
	computed []schema.ColumnModel
	engine   *expression.Engine
}

// NewListController creates a controller. refresh reads the session's
// refresh token; computed columns are evaluated on every fetched row.
func NewListController(fetch FetchFunc, refresh func() int64, computed []schema.ColumnModel, engine *expression.Engine) *ListController {
	return &ListController{
		state:    schema.NewTableState(),
		fetch:    fetch,
		refresh:  refresh,
		computed: append([]schema.ColumnModel(nil), computed...),
		engine:   engine,
	}
}

// State returns the current table state.
func (c *ListController) State() schema.TableState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Apply runs one user-initiated state transition and exactly one re-fetch.
// A response that comes back after a newer transition has taken over is
// discarded: the in-flight request is keyed to the state that produced it.
func (c *ListController) Apply(ctx context.Context, authToken string, mutate func(schema.TableState) schema.TableState) ListSnapshot {
	c.mu.Lock()
	next := mutate(c.state)
	c.state = next
	c.mu.Unlock()

	return c.load(ctx, authToken, next)
}

// Refresh serves the cached page, re-fetching the current page only when
// the cache is empty or the session's refresh token moved since the cache
// was filled. The token busts the cache; it never resets the page.
func (c *ListController) Refresh(ctx context.Context, authToken string) ListSnapshot {
	c.mu.Lock()
	token := c.refresh()
	if c.loaded && token == c.seenRefresh {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap
	}
	state := c.state
	c.mu.Unlock()

	return c.load(ctx, authToken, state)
}

// load fetches rows for the given state and applies them if the state is
// still current.
func (c *ListController) load(ctx context.Context, authToken string, state schema.TableState) ListSnapshot {
	key := state.Key()
	token := c.refresh()

	page, err := c.fetch(ctx, state, authToken)

	c.mu.Lock()
	defer c.mu.Unlock()

	if key != c.state.Key() {
		snap := c.snapshotLocked()
		snap.Stale = true
		return snap
	}

	if err != nil {
		c.lastError = err.Error()
		return c.snapshotLocked()
	}

	c.rows = c.decorate(page.Results)
	c.count = page.Count
	c.loaded = true
	c.lastError = ""
	c.seenRefresh = token
	return c.snapshotLocked()
}

// snapshotLocked copies the cached view. Callers hold the lock.
func (c *ListController) snapshotLocked() ListSnapshot {
	rows := make([]schema.Record, len(c.rows))
	copy(rows, c.rows)
	return ListSnapshot{
		State:        c.state,
		Rows:         rows,
		Count:        c.count,
		RefreshToken: c.seenRefresh,
		Error:        c.lastError,
	}
}

// CachedRow finds a row in the current page cache by id.
func (c *ListController) CachedRow(id string) (schema.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, row := range c.rows {
		if row.ID() == id {
			return row, true
		}
	}
	return nil, false
}

// decorate evaluates computed display columns into each row. A failing
// expression skips its cell and never fails the page.
func (c *ListController) decorate(rows []schema.Record) []schema.Record {
	if len(c.computed) == 0 || c.engine == nil {
		return rows
	}
	for _, row := range rows {
		for _, col := range c.computed {
			if col.Computed == "" {
				continue
			}
			val, err := c.engine.EvaluateRow(col.Computed, row)
			if err != nil {
				log.Printf("⚠️ Computed column %q failed: %v", col.Key, err)
				continue
			}
			row[col.Key] = val
		}
	}
	return rows
}
