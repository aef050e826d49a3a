// Package listing owns a paged, searchable, sortable collection fetched from
// one list endpoint, together with the selection used for batch actions.
package listing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fadilmartias/ats-portal/internal/logger"
	"github.com/fadilmartias/ats-portal/internal/model"
	"github.com/fadilmartias/ats-portal/internal/response"
	"go.uber.org/zap"
)

var (
	ErrNothingSelected = errors.New("no items selected")
	ErrNotConfirmed    = errors.New("batch delete not confirmed")
	ErrNoPage          = errors.New("no such page")
	ErrSuperseded      = errors.New("response superseded by a newer request")
	ErrNoBatchDelete   = errors.New("batch delete is not available for this list")
)

const (
	DefaultPageSize = 10
	DefaultDebounce = 500 * time.Millisecond
)

type Query struct {
	Search   string
	SortBy   string
	Category string
	Page     int
	// PageURL is the server supplied reference for the requested page.
	PageURL string
}

type FetchFunc[T any] func(ctx context.Context, q Query) (*model.Page[T], error)

type DeleteFunc func(ctx context.Context, ids []int64) error

type DeleteMode int

const (
	// RemoveLocally drops deleted items from the held page.
	RemoveLocally DeleteMode = iota
	// Refetch reloads the current page after a delete.
	Refetch
)

type Options[T any] struct {
	Fetch FetchFunc[T]
	ID    func(T) int64
	// Delete is optional; without it DeleteSelected fails.
	Delete DeleteFunc
	// Confirm is asked before every batch delete with the number of
	// selected items. A nil Confirm declines.
	Confirm     func(count int) bool
	AfterDelete DeleteMode
	PageSize    int
	Debounce    time.Duration
	SortBy      string
	Category    string
	Logger      *zap.Logger
}

type State[T any] struct {
	Items       []T
	Count       int
	Page        int
	PageSize    int
	TotalPages  int
	Next        string
	Previous    string
	SearchInput string
	Search      string
	SortBy      string
	Category    string
	Selected    Selection
	AllSelected bool
	Loading     bool
	Loaded      bool
	Error       string
}

func (s State[T]) HasNext() bool     { return s.Next != "" }
func (s State[T]) HasPrevious() bool { return s.Previous != "" }

func (s State[T]) PageLabel() string {
	total := s.TotalPages
	if total < 1 {
		total = 1
	}
	return fmt.Sprintf("page %d of %d", s.Page, total)
}

type Controller[T any] struct {
	opts      Options[T]
	log       *zap.Logger
	ctx       context.Context
	debouncer *Debouncer

	mu        sync.Mutex
	items     []T
	count     int
	next      string
	previous  string
	page      int
	input     string
	search    string
	sortBy    string
	category  string
	selection Selection
	loading   bool
	loaded    bool
	errMsg    string
	seq       uint64
	subs      map[int]func(State[T])
	nextSub   int
}

// New builds a controller. ctx bounds the fetches started by the debounced
// search; synchronous operations use the context they are given.
func New[T any](ctx context.Context, opts Options[T]) *Controller[T] {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	return &Controller[T]{
		opts:      opts,
		log:       logger.OrNop(opts.Logger),
		ctx:       ctx,
		debouncer: NewDebouncer(opts.Debounce),
		page:      1,
		sortBy:    opts.SortBy,
		category:  opts.Category,
		selection: NewSelection(),
		subs:      map[int]func(State[T]){},
	}
}

func (c *Controller[T]) Close() {
	c.debouncer.Stop()
}

// Load fetches the first page for the current query.
func (c *Controller[T]) Load(ctx context.Context) error {
	return c.fetch(ctx, c.query(1, ""), 1)
}

// LoadPage restores a page from a server reference; page is the number to
// display. An empty ref loads the numbered page.
func (c *Controller[T]) LoadPage(ctx context.Context, ref string, page int) error {
	if page < 1 {
		page = 1
	}
	return c.fetch(ctx, c.query(page, ref), page)
}

// Restore replaces the whole query and fetches the page it names, following
// q.PageURL when set. An empty sort or category means the one the controller
// was built with, so an empty category restores every category.
func (c *Controller[T]) Restore(ctx context.Context, q Query) error {
	c.mu.Lock()
	c.input = q.Search
	c.search = q.Search
	c.sortBy = q.SortBy
	if c.sortBy == "" {
		c.sortBy = c.opts.SortBy
	}
	c.category = q.Category
	if c.category == "" {
		c.category = c.opts.Category
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	query := c.queryLocked(page, q.PageURL)
	c.mu.Unlock()
	return c.fetch(ctx, query, page)
}

// SetSearchTerm updates the input value at once and commits it for fetching
// after the debounce delay.
func (c *Controller[T]) SetSearchTerm(text string) {
	c.mu.Lock()
	c.input = text
	c.mu.Unlock()
	c.notify()
	c.debouncer.Trigger(func() {
		if err := c.commitSearch(c.ctx, text, false); err != nil && !errors.Is(err, ErrSuperseded) {
			c.log.Warn("debounced search failed", zap.String("search", text), zap.Error(err))
		}
	})
}

// CommitSearch applies a search term immediately, skipping the debounce.
func (c *Controller[T]) CommitSearch(ctx context.Context, text string) error {
	c.mu.Lock()
	c.input = text
	c.mu.Unlock()
	return c.commitSearch(ctx, text, true)
}

func (c *Controller[T]) commitSearch(ctx context.Context, text string, force bool) error {
	c.mu.Lock()
	if !force && c.loaded && text == c.search {
		c.mu.Unlock()
		return nil
	}
	c.search = text
	c.page = 1
	q := c.queryLocked(1, "")
	c.mu.Unlock()
	return c.fetch(ctx, q, 1)
}

func (c *Controller[T]) SetSort(ctx context.Context, key string) error {
	c.mu.Lock()
	c.sortBy = key
	c.page = 1
	q := c.queryLocked(1, "")
	c.mu.Unlock()
	return c.fetch(ctx, q, 1)
}

func (c *Controller[T]) SetCategory(ctx context.Context, value string) error {
	c.mu.Lock()
	c.category = value
	c.page = 1
	q := c.queryLocked(1, "")
	c.mu.Unlock()
	return c.fetch(ctx, q, 1)
}

func (c *Controller[T]) NextPage(ctx context.Context) error {
	c.mu.Lock()
	ref, page := c.next, c.page+1
	q := c.queryLocked(page, ref)
	c.mu.Unlock()
	if ref == "" {
		return ErrNoPage
	}
	return c.fetch(ctx, q, page)
}

func (c *Controller[T]) PreviousPage(ctx context.Context) error {
	c.mu.Lock()
	ref, page := c.previous, c.page-1
	if page < 1 {
		page = 1
	}
	q := c.queryLocked(page, ref)
	c.mu.Unlock()
	if ref == "" {
		return ErrNoPage
	}
	return c.fetch(ctx, q, page)
}

// ToggleSelect flips id in the selection and reports whether it is now
// selected. Ids that are not on the current page are ignored.
func (c *Controller[T]) ToggleSelect(id int64) bool {
	c.mu.Lock()
	if !c.onPageLocked(id) {
		c.mu.Unlock()
		return false
	}
	selected := c.selection.Toggle(id)
	c.mu.Unlock()
	c.notify()
	return selected
}

// SelectAll selects every item on the current page, or clears the selection.
func (c *Controller[T]) SelectAll(on bool) {
	c.mu.Lock()
	if on {
		c.selection.Set(c.pageIDsLocked())
	} else {
		c.selection.Clear()
	}
	c.mu.Unlock()
	c.notify()
}

func (c *Controller[T]) AllSelected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection.Covers(c.pageIDsLocked())
}

// DeleteSelected removes the selected items with one batch request after
// the confirmation callback agrees. On failure items and selection are left
// as they were.
func (c *Controller[T]) DeleteSelected(ctx context.Context) (int, error) {
	if c.opts.Delete == nil {
		return 0, ErrNoBatchDelete
	}
	c.mu.Lock()
	ids := c.selection.IDs()
	c.mu.Unlock()
	if len(ids) == 0 {
		return 0, ErrNothingSelected
	}
	if c.opts.Confirm == nil || !c.opts.Confirm(len(ids)) {
		return 0, ErrNotConfirmed
	}

	if err := c.opts.Delete(ctx, ids); err != nil {
		c.log.Warn("batch delete failed", zap.Int("count", len(ids)), zap.Error(err))
		c.mu.Lock()
		c.errMsg = err.Error()
		c.mu.Unlock()
		c.notify()
		return 0, err
	}
	c.log.Info("batch delete succeeded", zap.Int64s("ids", ids))

	deleted := NewSelection()
	deleted.Set(ids)

	if c.opts.AfterDelete == RemoveLocally {
		c.Remove(ids...)
		return len(ids), nil
	}

	c.mu.Lock()
	c.errMsg = ""
	page := c.page
	remaining := 0
	for _, item := range c.items {
		if !deleted.Has(c.opts.ID(item)) {
			remaining++
		}
	}
	if remaining == 0 && page > 1 {
		page--
	}
	c.selection.Clear()
	q := c.queryLocked(page, "")
	c.mu.Unlock()
	if err := c.fetch(ctx, q, page); err != nil {
		return len(ids), fmt.Errorf("refresh after delete: %w", err)
	}
	return len(ids), nil
}

// Remove drops items from the held page after they were deleted elsewhere
// and clears the selection. It reports how many were on the page.
func (c *Controller[T]) Remove(ids ...int64) int {
	drop := NewSelection()
	drop.Set(ids)
	c.mu.Lock()
	kept := make([]T, 0, len(c.items))
	for _, item := range c.items {
		if !drop.Has(c.opts.ID(item)) {
			kept = append(kept, item)
		}
	}
	removed := len(c.items) - len(kept)
	c.items = kept
	c.count -= removed
	if c.count < 0 {
		c.count = 0
	}
	c.errMsg = ""
	c.selection.Clear()
	c.mu.Unlock()
	c.notify()
	return removed
}

// Reload fetches the current page again with the current query.
func (c *Controller[T]) Reload(ctx context.Context) error {
	c.mu.Lock()
	page := c.page
	q := c.queryLocked(page, "")
	c.mu.Unlock()
	return c.fetch(ctx, q, page)
}

// Replace swaps the held item that has the same id as item. The rest of the
// page, its order and its count are untouched.
func (c *Controller[T]) Replace(item T) bool {
	id := c.opts.ID(item)
	c.mu.Lock()
	found := false
	for i := range c.items {
		if c.opts.ID(c.items[i]) == id {
			c.items[i] = item
			found = true
			break
		}
	}
	c.mu.Unlock()
	if found {
		c.notify()
	}
	return found
}

// SetError records a page-local error raised outside the controller, such
// as a failed status change.
func (c *Controller[T]) SetError(err error) {
	c.mu.Lock()
	if err == nil {
		c.errMsg = ""
	} else {
		c.errMsg = err.Error()
	}
	c.mu.Unlock()
	c.notify()
}

func (c *Controller[T]) Find(id int64) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range c.items {
		if c.opts.ID(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func (c *Controller[T]) Snapshot() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe calls fn with a snapshot after every state change. The returned
// function removes it.
func (c *Controller[T]) Subscribe(fn func(State[T])) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Controller[T]) fetch(ctx context.Context, q Query, page int) error {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.loading = true
	c.errMsg = ""
	c.mu.Unlock()
	c.notify()

	res, err := c.opts.Fetch(ctx, q)

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		c.log.Debug("discarding superseded list response", zap.Uint64("seq", seq), zap.String("search", q.Search))
		return ErrSuperseded
	}
	c.loading = false
	if err != nil {
		c.errMsg = err.Error()
		c.mu.Unlock()
		c.log.Warn("list fetch failed", zap.Int("page", page), zap.Error(err))
		c.notify()
		return err
	}
	c.items = res.Results
	if c.items == nil {
		c.items = []T{}
	}
	c.count = res.Count
	c.next = res.Next
	c.previous = res.Previous
	c.page = page
	c.loaded = true
	c.selection.Clear()
	c.mu.Unlock()
	c.notify()
	return nil
}

func (c *Controller[T]) query(page int, ref string) Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queryLocked(page, ref)
}

func (c *Controller[T]) queryLocked(page int, ref string) Query {
	return Query{
		Search:   c.search,
		SortBy:   c.sortBy,
		Category: c.category,
		Page:     page,
		PageURL:  ref,
	}
}

func (c *Controller[T]) pageIDsLocked() []int64 {
	ids := make([]int64, len(c.items))
	for i, item := range c.items {
		ids[i] = c.opts.ID(item)
	}
	return ids
}

func (c *Controller[T]) onPageLocked(id int64) bool {
	for _, item := range c.items {
		if c.opts.ID(item) == id {
			return true
		}
	}
	return false
}

func (c *Controller[T]) snapshotLocked() State[T] {
	items := make([]T, len(c.items))
	copy(items, c.items)
	selected := NewSelection()
	selected.Set(c.selection.IDs())
	return State[T]{
		Items:       items,
		Count:       c.count,
		Page:        c.page,
		PageSize:    c.opts.PageSize,
		TotalPages:  response.TotalPages(c.count, c.opts.PageSize),
		Next:        c.next,
		Previous:    c.previous,
		SearchInput: c.input,
		Search:      c.search,
		SortBy:      c.sortBy,
		Category:    c.category,
		Selected:    selected,
		AllSelected: c.selection.Covers(c.pageIDsLocked()),
		Loading:     c.loading,
		Loaded:      c.loaded,
		Error:       c.errMsg,
	}
}

func (c *Controller[T]) notify() {
	c.mu.Lock()
	state := c.snapshotLocked()
	fns := make([]func(State[T]), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn(state)
	}
}
