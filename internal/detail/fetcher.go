// Package detail loads one entity by id into an editable draft and submits
// the draft back as a full replacement, or creates it when there is no id.
package detail

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fadilmartias/ats-portal/internal/logger"
	"go.uber.org/zap"
)

var (
	// ErrTerminal wraps the load failure on every later call.
	ErrTerminal   = errors.New("entity could not be loaded")
	ErrNotLoaded  = errors.New("entity has not been loaded")
	ErrSubmitting = errors.New("a submission is already in progress")
	ErrNoCreate   = errors.New("create is not available")
)

type Messages struct {
	// LoadFailed replaces the load error shown to the user when set.
	LoadFailed string
	// SaveFailed replaces the submit error shown to the user when set.
	SaveFailed string
	Saved      string
}

type Options[T any] struct {
	// ID of the entity to edit. Zero means create mode.
	ID       int64
	Load     func(ctx context.Context, id int64) (*T, error)
	Save     func(ctx context.Context, id int64, draft T) (*T, error)
	Create   func(ctx context.Context, draft T) (*T, error)
	Validate func(draft T) error
	Messages Messages
	// OnRedirect runs RedirectDelay after a successful submit.
	OnRedirect    func(saved T)
	RedirectDelay time.Duration
	Logger        *zap.Logger
}

type State[T any] struct {
	Draft      T
	Loaded     bool
	Loading    bool
	Terminal   bool
	Submitting bool
	Error      string
	Success    string
	Saved      *T
}

// Ready reports whether the form can be shown.
func (s State[T]) Ready() bool {
	return s.Loaded && !s.Terminal
}

type Fetcher[T any] struct {
	opts Options[T]
	log  *zap.Logger

	mu         sync.Mutex
	draft      T
	loaded     bool
	loading    bool
	loadErr    error
	submitting bool
	errMsg     string
	success    string
	saved      *T
	timer      *time.Timer
}

func New[T any](opts Options[T]) *Fetcher[T] {
	f := &Fetcher[T]{opts: opts, log: logger.OrNop(opts.Logger)}
	if opts.ID == 0 {
		// Nothing to fetch; the zero draft is the blank form.
		f.loaded = true
	}
	return f
}

func (f *Fetcher[T]) CreateMode() bool {
	return f.opts.ID == 0
}

// Load fetches the entity once. A failure is terminal: later calls return
// the same ErrTerminal without contacting the backend again.
func (f *Fetcher[T]) Load(ctx context.Context) error {
	f.mu.Lock()
	if f.loadErr != nil {
		err := f.loadErr
		f.mu.Unlock()
		return err
	}
	if f.loaded {
		f.mu.Unlock()
		return nil
	}
	f.loading = true
	f.mu.Unlock()

	item, err := f.opts.Load(ctx, f.opts.ID)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.loading = false
	if err == nil && item == nil {
		err = errors.New("empty response")
	}
	if err != nil {
		f.log.Warn("detail load failed", zap.Int64("id", f.opts.ID), zap.Error(err))
		f.loadErr = fmt.Errorf("%w: %w", ErrTerminal, err)
		f.errMsg = err.Error()
		if f.opts.Messages.LoadFailed != "" {
			f.errMsg = f.opts.Messages.LoadFailed
		}
		return f.loadErr
	}
	f.draft = *item
	f.loaded = true
	return nil
}

func (f *Fetcher[T]) Draft() T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// Edit applies fn to the local draft. Nothing is sent until Submit.
func (f *Fetcher[T]) Edit(fn func(draft *T)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return f.loadErr
	}
	if !f.loaded {
		return ErrNotLoaded
	}
	fn(&f.draft)
	return nil
}

// Submit validates the draft and sends all of it. On success the
// confirmation message is stored and OnRedirect is scheduled.
func (f *Fetcher[T]) Submit(ctx context.Context) (*T, error) {
	f.mu.Lock()
	switch {
	case f.loadErr != nil:
		err := f.loadErr
		f.mu.Unlock()
		return nil, err
	case !f.loaded:
		f.mu.Unlock()
		return nil, ErrNotLoaded
	case f.submitting:
		f.mu.Unlock()
		return nil, ErrSubmitting
	}
	draft := f.draft
	f.errMsg = ""
	f.success = ""
	if f.opts.Validate != nil {
		if err := f.opts.Validate(draft); err != nil {
			f.errMsg = err.Error()
			f.mu.Unlock()
			return nil, err
		}
	}
	f.submitting = true
	f.mu.Unlock()

	var (
		saved *T
		err   error
	)
	if f.CreateMode() {
		if f.opts.Create == nil {
			err = ErrNoCreate
		} else {
			saved, err = f.opts.Create(ctx, draft)
		}
	} else {
		saved, err = f.opts.Save(ctx, f.opts.ID, draft)
	}
	if err == nil && saved == nil {
		saved = &draft
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
	if err != nil {
		f.log.Warn("detail submit failed", zap.Int64("id", f.opts.ID), zap.Error(err))
		f.errMsg = err.Error()
		if f.opts.Messages.SaveFailed != "" {
			f.errMsg = f.opts.Messages.SaveFailed
		}
		return nil, err
	}
	f.saved = saved
	f.draft = *saved
	f.success = f.opts.Messages.Saved
	f.log.Info("detail submitted", zap.Int64("id", f.opts.ID), zap.Bool("create", f.CreateMode()))
	if f.opts.OnRedirect != nil {
		result := *saved
		f.timer = time.AfterFunc(f.opts.RedirectDelay, func() { f.opts.OnRedirect(result) })
	}
	return saved, nil
}

// Close cancels a pending redirect.
func (f *Fetcher[T]) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.timer != nil {
		f.timer.Stop()
	}
}

func (f *Fetcher[T]) Snapshot() State[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	var saved *T
	if f.saved != nil {
		v := *f.saved
		saved = &v
	}
	return State[T]{
		Draft:      f.draft,
		Loaded:     f.loaded,
		Loading:    f.loading,
		Terminal:   f.loadErr != nil,
		Submitting: f.submitting,
		Error:      f.errMsg,
		Success:    f.success,
		Saved:      saved,
	}
}
