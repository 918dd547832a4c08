package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/peoplekit/hradmin/internal/domain/schema"
	"github.com/peoplekit/hradmin/pkg/errors"
	"github.com/peoplekit/hradmin/pkg/expression"
	"github.com/peoplekit/hradmin/pkg/fieldkinds"
	"github.com/peoplekit/hradmin/pkg/utils"
)

// PageSession is the server-held state of one mounted admin page: the
// resource binding, its resolved schema, choice options, table controller,
// refresh token and row selection.
type PageSession struct {
	ID      string
	Binding schema.ResourceBinding

	mu           sync.Mutex
	fields       []schema.FieldDescriptor
	choices      schema.ChoiceCache
	columns      []schema.ColumnModel
	table        *ListController
	refreshToken int64
	selectedID   string
	createdAt    time.Time
	lastUsed     time.Time
}

// Fields returns a copy of the resolved field descriptors.
func (s *PageSession) Fields() []schema.FieldDescriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]schema.FieldDescriptor(nil), s.fields...)
}

// Choices returns the session's choice cache.
func (s *PageSession) Choices() schema.ChoiceCache {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.choices
}

// Columns returns a copy of the table column descriptors.
func (s *PageSession) Columns() []schema.ColumnModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]schema.ColumnModel(nil), s.columns...)
}

// Table returns the session's list controller.
func (s *PageSession) Table() *ListController {
	return s.table
}

// RefreshToken reads the monotonically increasing data version.
func (s *PageSession) RefreshToken() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshToken
}

// bumpRefresh advances the data version by exactly one.
func (s *PageSession) bumpRefresh() {
	s.mu.Lock()
	s.refreshToken++
	s.mu.Unlock()
}

// Select marks a row as the edit target.
func (s *PageSession) Select(id string) {
	s.mu.Lock()
	s.selectedID = id
	s.mu.Unlock()
}

// SelectedID returns the currently selected row id, empty when none.
func (s *PageSession) SelectedID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedID
}

// ClearSelection drops the row selection.
func (s *PageSession) ClearSelection() {
	s.mu.Lock()
	s.selectedID = ""
	s.mu.Unlock()
}

// touch records activity for the idle sweeper.
func (s *PageSession) touch() {
	s.mu.Lock()
	s.lastUsed = time.Now()
	s.mu.Unlock()
}

// idleSince reports how long the session has been unused.
func (s *PageSession) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastUsed)
}

// pageBackend is the list surface the mounted table fetches through.
type pageBackend interface {
	List(ctx context.Context, endpoint string, query url.Values, authToken string) (schema.Page, error)
}

// PageService owns the page session registry: mounting a resource page,
// looking sessions up for follow-up requests and sweeping idle ones.
type PageService struct {
	backend   pageBackend
	resolver  *SchemaResolver
	choices   *ChoiceLoader
	overrides *OverrideRegistry
	engine    *expression.Engine
	ttl       time.Duration

	mu       sync.RWMutex
	sessions map[string]*PageSession

	sweepMu  sync.Mutex
	stopChan chan struct{}
	running  bool
	stopped  bool
}

// NewPageService creates the registry. ttl is how long an untouched session
// survives before the sweeper reaps it.
func NewPageService(backend pageBackend, resolver *SchemaResolver, choices *ChoiceLoader, overrides *OverrideRegistry, engine *expression.Engine, ttl time.Duration) *PageService {
	return &PageService{
		backend:   backend,
		resolver:  resolver,
		choices:   choices,
		overrides: overrides,
		engine:    engine,
		ttl:       ttl,
		sessions:  make(map[string]*PageSession),
		stopChan:  make(chan struct{}),
	}
}

// Mount resolves a resource's schema and creates a page session for it.
// Choice lookups that fail leave their pickers short but never block the
// mount.
func (p *PageService) Mount(ctx context.Context, category, module, authToken string) (*PageSession, error) {
	binding, err := schema.NewResourceBinding(category, module)
	if err != nil {
		return nil, err
	}

	choices, warn := p.choices.Load(ctx, authToken)
	if warn != nil {
		log.Printf("⚠️ Some choice lookups failed for %s: %v (picker options may be incomplete)", binding.Key(), warn)
	}

	fields := p.resolver.Resolve(ctx, binding, choices, authToken)

	columns := append(columnsFromFields(fields), p.overrides.DisplayColumns(binding.Key())...)

	now := time.Now()
	sess := &PageSession{
		ID:        utils.GenerateID(),
		Binding:   binding,
		fields:    fields,
		choices:   choices,
		columns:   columns,
		createdAt: now,
		lastUsed:  now,
	}
	sess.table = NewListController(
		func(ctx context.Context, state schema.TableState, token string) (schema.Page, error) {
			return p.backend.List(ctx, binding.Endpoint, state.Query(), token)
		},
		sess.RefreshToken,
		columns,
		p.engine,
	)

	p.mu.Lock()
	p.sessions[sess.ID] = sess
	p.mu.Unlock()

	log.Printf("🔧 Mounted admin page %s (%d fields, session %s)", binding.Key(), len(fields), sess.ID)
	return sess, nil
}

// Get looks a session up and marks it used.
func (p *PageService) Get(id string) (*PageSession, error) {
	if !utils.IsValidUUID(id) {
		return nil, errors.NewNotFoundError("page session", id)
	}

	p.mu.RLock()
	sess, ok := p.sessions[id]
	p.mu.RUnlock()
	if !ok {
		return nil, errors.NewNotFoundError("page session", id)
	}

	sess.touch()
	return sess, nil
}

// Unmount drops a session.
func (p *PageService) Unmount(id string) {
	p.mu.Lock()
	delete(p.sessions, id)
	p.mu.Unlock()
}

// Count returns the number of live sessions.
func (p *PageService) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.sessions)
}

// Sweep removes sessions idle longer than the TTL and returns how many went.
func (p *PageService) Sweep(now time.Time) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	swept := 0
	for id, sess := range p.sessions {
		if sess.idleSince(now) > p.ttl {
			delete(p.sessions, id)
			swept++
		}
	}
	return swept
}

// StartSweeper runs the idle reaper on a cron schedule in the background.
func (p *PageService) StartSweeper(cronExpr string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(cronExpr)
	if err != nil {
		return fmt.Errorf("invalid sweep schedule: %w", err)
	}

	p.sweepMu.Lock()
	if p.running {
		p.sweepMu.Unlock()
		return nil
	}
	p.running = true
	p.sweepMu.Unlock()

	log.Println("⏰ Session sweeper starting...")

	go func() {
		for {
			timer := time.NewTimer(time.Until(schedule.Next(time.Now())))
			select {
			case <-timer.C:
				if n := p.Sweep(time.Now()); n > 0 {
					log.Printf("🔄 Swept %d idle page sessions", n)
				}
			case <-p.stopChan:
				timer.Stop()
				log.Println("⏰ Session sweeper stopped")
				return
			}
		}
	}()
	return nil
}

// StopSweeper gracefully stops the background reaper.
func (p *PageService) StopSweeper() {
	p.sweepMu.Lock()
	if !p.running || p.stopped {
		p.sweepMu.Unlock()
		return
	}
	p.running = false
	p.stopped = true
	p.sweepMu.Unlock()

	close(p.stopChan)
}

// columnsFromFields derives table columns for resources without a curated
// column list.
func columnsFromFields(fields []schema.FieldDescriptor) []schema.ColumnModel {
	columns := make([]schema.ColumnModel, 0, len(fields))
	for _, f := range fields {
		columns = append(columns, schema.ColumnModel{
			Key:      f.Name,
			Label:    f.Label,
			Sortable: fieldkinds.IsSortable(string(f.Kind)),
		})
	}
	return columns
}
