package pages

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"gastos/internal/client"
	"gastos/internal/core"
)

type (
	UsersPage         = Page[core.User, core.UserInput]
	CategoriesPage    = Page[core.Category, core.CategoryInput]
	MovementTypesPage = Page[core.MovementType, core.MovementTypeInput]
)

func contains(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func matchUser(u core.User, q Query) bool {
	return contains(u.Nome, q.Text) || contains(u.Email, q.Text)
}

func matchCategory(c core.Category, q Query) bool {
	return contains(c.Nome, q.Text)
}

func matchMovementType(t core.MovementType, q Query) bool {
	return contains(t.Nome, q.Text)
}

func matchMovement(m core.Movement, q Query) bool {
	return contains(m.Descricao, q.Text) &&
		(q.TipoID == 0 || m.TipoMovimentacaoID == q.TipoID) &&
		(q.CategoriaID == 0 || m.CategoriaID == q.CategoriaID)
}

func NewUsersPage(c *client.Client) *UsersPage {
	return NewPage(Proxy[core.User, core.UserInput](c.Users()), matchUser,
		"Tem certeza que deseja excluir este usuário?")
}

func NewCategoriesPage(c *client.Client) *CategoriesPage {
	return NewPage(Proxy[core.Category, core.CategoryInput](c.Categories()), matchCategory,
		"Tem certeza que deseja excluir esta categoria?")
}

func NewMovementTypesPage(c *client.Client) *MovementTypesPage {
	return NewPage(Proxy[core.MovementType, core.MovementTypeInput](c.MovementTypes()), matchMovementType,
		"Tem certeza que deseja excluir este tipo de movimentação?")
}

// MovementsPage is the movement list plus the lists its form and table
// resolve ids against.
type MovementsPage struct {
	*Page[core.Movement, core.MovementInput]

	categories Lister[core.Category]
	types      Lister[core.MovementType]
	users      Lister[core.User]

	mu         sync.RWMutex
	categoryOf map[int64]string
	typeOf     map[int64]string
	userOf     map[int64]string
}

// Lister fetches a whole entity list.
type Lister[T any] interface {
	GetAll(ctx context.Context) ([]T, error)
}

func NewMovementsPage(c *client.Client) *MovementsPage {
	return newMovementsPage(c.Movements(), c.Categories(), c.MovementTypes(), c.Users())
}

func newMovementsPage(
	movements Proxy[core.Movement, core.MovementInput],
	categories Lister[core.Category],
	types Lister[core.MovementType],
	users Lister[core.User],
) *MovementsPage {
	p := &MovementsPage{
		Page:       NewPage(movements, matchMovement, "Tem certeza que deseja excluir esta movimentação?"),
		categories: categories,
		types:      types,
		users:      users,
	}
	// saves and deletes refresh the lookups too
	p.Page.reload = p.Load
	return p
}

// Load fetches movements and the three lookup lists concurrently. Any
// failure puts the page in the Error state.
func (p *MovementsPage) Load(ctx context.Context) error {
	var cats []core.Category
	var types []core.MovementType
	var users []core.User

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return p.Page.Load(gctx) })
	g.Go(func() (err error) { cats, err = p.categories.GetAll(gctx); return })
	g.Go(func() (err error) { types, err = p.types.GetAll(gctx); return })
	g.Go(func() (err error) { users, err = p.users.GetAll(gctx); return })
	if err := g.Wait(); err != nil {
		p.Page.mu.Lock()
		p.Page.state, p.Page.err = Error, err
		p.Page.mu.Unlock()
		return err
	}

	categoryOf := make(map[int64]string, len(cats))
	for _, c := range cats {
		categoryOf[c.ID] = c.Nome
	}
	typeOf := make(map[int64]string, len(types))
	for _, t := range types {
		typeOf[t.ID] = t.Nome
	}
	userOf := make(map[int64]string, len(users))
	for _, u := range users {
		userOf[u.ID] = u.Nome
	}

	p.mu.Lock()
	p.categoryOf, p.typeOf, p.userOf = categoryOf, typeOf, userOf
	p.mu.Unlock()
	return nil
}

const unknownName = "N/A"

func (p *MovementsPage) CategoryName(id int64) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return nameOr(p.categoryOf, id)
}

func (p *MovementsPage) TypeName(id int64) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return nameOr(p.typeOf, id)
}

func (p *MovementsPage) UserName(id int64) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return nameOr(p.userOf, id)
}

func nameOr(names map[int64]string, id int64) string {
	if n, ok := names[id]; ok {
		return n
	}
	return unknownName
}
