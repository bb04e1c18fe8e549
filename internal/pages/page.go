// Package pages holds the state behind each screen of the finance tracker:
// the entity list, its filtered view and the load/save/delete cycle. Pages
// never patch their list locally; every mutation is followed by a full
// reload.
package pages

import (
	"context"
	"fmt"
	"sync"
)

type State int

const (
	Loading State = iota
	Loaded
	Error
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Error:
		return "error"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Proxy is the slice of client.Resource a page needs.
type Proxy[T any, P any] interface {
	GetAll(ctx context.Context) ([]T, error)
	Create(ctx context.Context, payload P) (T, error)
	Update(ctx context.Context, id int64, payload P) error
	Delete(ctx context.Context, id int64) error
}

// Query is the search box plus the optional id filters. Zero ids match
// everything.
type Query struct {
	Text        string
	TipoID      int64
	CategoriaID int64
}

// Confirm asks the user a yes/no question and blocks for the answer.
type Confirm func(prompt string) bool

type Page[T any, P any] struct {
	proxy  Proxy[T, P]
	match  func(T, Query) bool
	prompt string

	// Confirm gates Delete. Nil confirms everything.
	Confirm Confirm

	// reload runs after a successful Save or Delete. Nil means Load.
	reload func(ctx context.Context) error

	mu    sync.RWMutex
	state State
	err   error
	items []T
	query Query
}

func NewPage[T any, P any](proxy Proxy[T, P], match func(T, Query) bool, deletePrompt string) *Page[T, P] {
	return &Page[T, P]{proxy: proxy, match: match, prompt: deletePrompt}
}

// SetConfirm replaces the Delete gate.
func (p *Page[T, P]) SetConfirm(c Confirm) {
	p.Confirm = c
}

// Load replaces the list with a fresh copy from the server. On failure the
// previous list is kept and the page is in the Error state.
func (p *Page[T, P]) Load(ctx context.Context) error {
	p.mu.Lock()
	p.state = Loading
	p.mu.Unlock()

	items, err := p.proxy.GetAll(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.state, p.err = Error, err
		return fmt.Errorf("load: %w", err)
	}
	p.state, p.err, p.items = Loaded, nil, items
	return nil
}

// Save creates the entity when id is 0 and updates it otherwise, then
// reloads.
func (p *Page[T, P]) Save(ctx context.Context, id int64, payload P) error {
	var err error
	if id == 0 {
		_, err = p.proxy.Create(ctx, payload)
	} else {
		err = p.proxy.Update(ctx, id, payload)
	}
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return p.refresh(ctx)
}

// Delete asks Confirm, then deletes and reloads. It reports whether the
// deletion went ahead.
func (p *Page[T, P]) Delete(ctx context.Context, id int64) (bool, error) {
	if p.Confirm != nil && !p.Confirm(p.prompt) {
		return false, nil
	}
	if err := p.proxy.Delete(ctx, id); err != nil {
		return false, fmt.Errorf("delete: %w", err)
	}
	return true, p.refresh(ctx)
}

func (p *Page[T, P]) refresh(ctx context.Context) error {
	if p.reload != nil {
		return p.reload(ctx)
	}
	return p.Load(ctx)
}

// Filter stores q and returns the rows matching it.
func (p *Page[T, P]) Filter(q Query) []T {
	p.mu.Lock()
	p.query = q
	p.mu.Unlock()
	return p.Visible()
}

// Visible is the full list narrowed by the last Filter query.
func (p *Page[T, P]) Visible() []T {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]T, 0, len(p.items))
	for _, item := range p.items {
		if p.match == nil || p.match(item, p.query) {
			out = append(out, item)
		}
	}
	return out
}

func (p *Page[T, P]) Items() []T {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]T(nil), p.items...)
}

// State returns the current state and, in the Error state, the cause.
func (p *Page[T, P]) State() (State, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state, p.err
}
