// Package modal holds the "currently open item" behind an overlay such as
// the scorecard or the job detail view.
package modal

import (
	"io"
	"sync"
)

type Target int

const (
	Backdrop Target = iota
	Content
	CloseButton
)

type Presenter[T any] struct {
	mu   sync.Mutex
	item *T
}

func (p *Presenter[T]) Open(item T) {
	p.mu.Lock()
	p.item = &item
	p.mu.Unlock()
}

func (p *Presenter[T]) Close() {
	p.mu.Lock()
	p.item = nil
	p.mu.Unlock()
}

// Click closes the overlay for backdrop and close button clicks. Clicks
// inside the content keep it open.
func (p *Presenter[T]) Click(target Target) {
	if target == Content {
		return
	}
	p.Close()
}

func (p *Presenter[T]) Current() (T, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.item == nil {
		var zero T
		return zero, false
	}
	return *p.item, true
}

func (p *Presenter[T]) IsOpen() bool {
	_, ok := p.Current()
	return ok
}

// Render calls fn with the open item and writes nothing when closed.
func (p *Presenter[T]) Render(w io.Writer, fn func(io.Writer, T) error) error {
	item, ok := p.Current()
	if !ok {
		return nil
	}
	return fn(w, item)
}
