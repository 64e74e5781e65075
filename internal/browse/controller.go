package browse

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/ppiankov/folio/internal/article"
	"github.com/ppiankov/folio/internal/listing"
)

// Phase is the loading state of a Controller.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
)

func (p Phase) String() string {
	if p == PhaseLoading {
		return "loading"
	}
	return "idle"
}

var (
	ErrNoMorePages = errors.New("browse: no more pages")
	ErrBusy        = errors.New("browse: load already in progress")
)

// Fetcher returns one page of a role listing. *listing.Service satisfies it.
type Fetcher interface {
	ListArticles(ctx context.Context, role, cursor string) (listing.Result, error)
}

// Controller drives the listing of one session: role selection, incremental
// loading and scroll restoration, persisting each step through a Store.
type Controller struct {
	id    string
	store Store
	fetch Fetcher
	log   *slog.Logger

	mu    sync.Mutex
	state State
	phase Phase
}

// NewController binds a session id to its store. A nil store behaves like
// NopStore and a nil logger discards.
func NewController(id string, store Store, fetch Fetcher, log *slog.Logger) *Controller {
	if store == nil {
		store = NopStore{}
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		id:    id,
		store: store,
		fetch: fetch,
		log:   log.With("session", id),
	}
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Restore rehydrates the stored state without fetching. It reports whether
// a state was found; store failures count as a miss.
func (c *Controller) Restore(ctx context.Context) bool {
	st, ok, err := c.store.Load(ctx, c.id)
	if err != nil {
		c.log.Warn("load session state", "error", err)
		return false
	}
	if !ok {
		return false
	}
	c.mu.Lock()
	c.state = st
	c.mu.Unlock()
	return true
}

// Resume seeds the state from a role and cursor carried by the request,
// for sessions whose store kept nothing.
func (c *Controller) Resume(role, cursor string) {
	c.mu.Lock()
	c.state = State{Role: role, Articles: []article.Article{}, NextCursor: cursor}
	c.mu.Unlock()
}

// Mount rehydrates the stored listing for role, or fetches its first page
// when nothing is stored or the stored role differs.
func (c *Controller) Mount(ctx context.Context, role string) (State, error) {
	if c.Restore(ctx) {
		c.mu.Lock()
		st := c.state.clone()
		c.mu.Unlock()
		if st.Role == role {
			c.log.Debug("restored listing", "role", role, "articles", len(st.Articles))
			return st, nil
		}
	}
	return c.SelectRole(ctx, role)
}

// SelectRole drops the accumulated listing and the stored state, then
// fetches and stores the first page for role. On fetch failure the
// in-memory state is left as it was.
func (c *Controller) SelectRole(ctx context.Context, role string) (State, error) {
	if !c.begin() {
		return c.State(), ErrBusy
	}

	if err := c.store.Clear(ctx, c.id); err != nil {
		c.log.Warn("clear session state", "error", err)
	}

	res, err := c.fetch.ListArticles(ctx, role, "")
	if err != nil {
		c.log.Error("fetch first page", "role", role, "error", err)
		return c.end(nil), err
	}

	next := State{Role: role, Articles: res.Articles, NextCursor: res.NextCursor}
	if next.Articles == nil {
		next.Articles = []article.Article{}
	}
	st := c.end(&next)
	c.persist(ctx, st)
	return st, nil
}

// LoadMore appends the next page. It fails with ErrNoMorePages once the
// cursor is exhausted and with ErrBusy while another load is running.
func (c *Controller) LoadMore(ctx context.Context) (State, error) {
	c.mu.Lock()
	if c.phase == PhaseLoading {
		c.mu.Unlock()
		return c.State(), ErrBusy
	}
	if !c.state.HasMore() {
		st := c.state.clone()
		c.mu.Unlock()
		return st, ErrNoMorePages
	}
	c.phase = PhaseLoading
	role, cursor := c.state.Role, c.state.NextCursor
	c.mu.Unlock()

	res, err := c.fetch.ListArticles(ctx, role, cursor)
	if err != nil {
		c.log.Error("fetch next page", "role", role, "error", err)
		return c.end(nil), err
	}

	c.mu.Lock()
	next := c.state.clone()
	c.mu.Unlock()
	next.Articles = append(next.Articles, res.Articles...)
	next.NextCursor = res.NextCursor

	st := c.end(&next)
	c.persist(ctx, st)
	return st, nil
}

// SaveScroll records the scroll offset. Failures are logged and returned
// but leave the listing usable.
func (c *Controller) SaveScroll(ctx context.Context, y int) error {
	if y < 0 {
		y = 0
	}
	c.mu.Lock()
	c.state.ScrollY = y
	st := c.state.clone()
	c.mu.Unlock()

	if err := c.store.Save(ctx, c.id, st); err != nil {
		c.log.Warn("save scroll position", "error", err)
		return err
	}
	return nil
}

func (c *Controller) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == PhaseLoading {
		return false
	}
	c.phase = PhaseLoading
	return true
}

// end returns to PhaseIdle, installing next when non-nil.
func (c *Controller) end(next *State) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if next != nil {
		c.state = *next
	}
	c.phase = PhaseIdle
	return c.state.clone()
}

func (c *Controller) persist(ctx context.Context, st State) {
	if err := c.store.Save(ctx, c.id, st); err != nil {
		c.log.Warn("save session state", "error", err)
	}
}
