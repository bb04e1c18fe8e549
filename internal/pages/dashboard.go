package pages

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"gastos/internal/client"
	"gastos/internal/core"
)

// DashboardPage computes the summary locally from the full category and
// movement lists, the same way GET /api/dashboard does on the server.
type DashboardPage struct {
	categories Lister[core.Category]
	movements  Lister[core.Movement]

	mu      sync.RWMutex
	state   State
	err     error
	summary core.Dashboard
}

func NewDashboardPage(c *client.Client) *DashboardPage {
	return newDashboardPage(c.Categories(), c.Movements())
}

func newDashboardPage(categories Lister[core.Category], movements Lister[core.Movement]) *DashboardPage {
	return &DashboardPage{categories: categories, movements: movements}
}

// Load fetches both lists concurrently and summarizes the rows owned by
// usuarioID, or all rows when it is 0.
func (d *DashboardPage) Load(ctx context.Context, usuarioID int64) (core.Dashboard, error) {
	d.mu.Lock()
	d.state = Loading
	d.mu.Unlock()

	var cats []core.Category
	var movs []core.Movement
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { cats, err = d.categories.GetAll(gctx); return })
	g.Go(func() (err error) { movs, err = d.movements.GetAll(gctx); return })
	err := g.Wait()

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.state, d.err = Error, err
		return core.Dashboard{}, err
	}
	d.summary = core.Summarize(core.FilterByUser(cats, movs, usuarioID))
	d.state, d.err = Loaded, nil
	return d.summary, nil
}

func (d *DashboardPage) Summary() core.Dashboard {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.summary
}

func (d *DashboardPage) State() (State, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state, d.err
}
