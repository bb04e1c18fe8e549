package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"gastos/internal/client"
	"gastos/internal/core"
	"gastos/internal/pages"
)

func usersResource(a *app) resource[core.User, core.UserInput] {
	return resource[core.User, core.UserInput]{
		name:   "usuario",
		short:  "Manage users",
		header: usersHeader,
		open: func(c *client.Client) (listPage[core.User, core.UserInput], func(core.User) []string) {
			return pages.NewUsersPage(c), userRow
		},
		get: func(ctx context.Context, c *client.Client, id int64) (core.User, error) {
			return c.Users().GetByID(ctx, id)
		},
		newFlags: func() payloadFlags[core.UserInput] { return &userFlags{a: a} },
	}
}

type userFlags struct {
	a                  *app
	nome, email, senha string
}

func (f *userFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.nome, "nome", "", "display name")
	cmd.Flags().StringVar(&f.email, "email", "", "login e-mail")
	cmd.Flags().StringVar(&f.senha, "senha", "", "password (prompted when omitted)")
}

func (f *userFlags) build(cmd *cobra.Command, id *int64) (core.UserInput, error) {
	senha := f.senha
	if !cmd.Flags().Changed("senha") {
		var err error
		if senha, err = f.a.readPassword(cmd, "Senha: "); err != nil {
			return core.UserInput{}, err
		}
	}
	return core.UserInput{
		ID:    id,
		Nome:  optString(cmd, "nome", f.nome),
		Email: optString(cmd, "email", f.email),
		Senha: &senha,
	}, nil
}

func categoriesResource() resource[core.Category, core.CategoryInput] {
	row := func(c core.Category) []string {
		return []string{itoa(c.ID), c.Nome, itoa(c.UsuarioID)}
	}
	return resource[core.Category, core.CategoryInput]{
		name:   "categoria",
		short:  "Manage categories",
		header: []string{"ID", "NOME", "USUARIO"},
		open: func(c *client.Client) (listPage[core.Category, core.CategoryInput], func(core.Category) []string) {
			return pages.NewCategoriesPage(c), row
		},
		get: func(ctx context.Context, c *client.Client, id int64) (core.Category, error) {
			return c.Categories().GetByID(ctx, id)
		},
		newFlags: func() payloadFlags[core.CategoryInput] { return &categoryFlags{} },
	}
}

type categoryFlags struct {
	nome    string
	usuario int64
}

func (f *categoryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.nome, "nome", "", "category name")
	cmd.Flags().Int64Var(&f.usuario, "usuario", 0, "owner user id")
}

func (f *categoryFlags) build(cmd *cobra.Command, id *int64) (core.CategoryInput, error) {
	return core.CategoryInput{
		ID:        id,
		Nome:      optString(cmd, "nome", f.nome),
		UsuarioID: optID(cmd, "usuario", f.usuario),
	}, nil
}

func movementTypesResource() resource[core.MovementType, core.MovementTypeInput] {
	row := func(t core.MovementType) []string {
		return []string{itoa(t.ID), t.Nome, string(t.Natureza)}
	}
	return resource[core.MovementType, core.MovementTypeInput]{
		name:   "tipomovimentacao",
		short:  "Manage movement types",
		header: []string{"ID", "NOME", "NATUREZA"},
		open: func(c *client.Client) (listPage[core.MovementType, core.MovementTypeInput], func(core.MovementType) []string) {
			return pages.NewMovementTypesPage(c), row
		},
		get: func(ctx context.Context, c *client.Client, id int64) (core.MovementType, error) {
			return c.MovementTypes().GetByID(ctx, id)
		},
		newFlags: func() payloadFlags[core.MovementTypeInput] { return &movementTypeFlags{} },
	}
}

type movementTypeFlags struct {
	nome, natureza string
}

func (f *movementTypeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.nome, "nome", "", "type name, e.g. Receita or Despesa")
	cmd.Flags().StringVar(&f.natureza, "natureza", "", "receita or despesa; must agree with the name, from which it is derived when omitted")
}

func (f *movementTypeFlags) build(cmd *cobra.Command, id *int64) (core.MovementTypeInput, error) {
	return core.MovementTypeInput{
		ID:       id,
		Nome:     optString(cmd, "nome", f.nome),
		Natureza: optString(cmd, "natureza", f.natureza),
	}, nil
}

var movementsHeader = []string{"ID", "DATA", "DESCRICAO", "VALOR", "TIPO", "CATEGORIA", "USUARIO", "FIXO"}

func movementsResource() resource[core.Movement, core.MovementInput] {
	return resource[core.Movement, core.MovementInput]{
		name:   "movimentacao",
		short:  "Manage income and expense movements",
		header: movementsHeader,
		open: func(c *client.Client) (listPage[core.Movement, core.MovementInput], func(core.Movement) []string) {
			page := pages.NewMovementsPage(c)
			return page, func(m core.Movement) []string {
				return []string{
					itoa(m.ID),
					m.Data.Format("02/01/2006"),
					m.Descricao,
					core.FormatBRL(m.Valor),
					page.TypeName(m.TipoMovimentacaoID),
					page.CategoryName(m.CategoriaID),
					page.UserName(m.UsuarioID),
					strconv.FormatBool(m.Fixo),
				}
			}
		},
		get: func(ctx context.Context, c *client.Client, id int64) (core.Movement, error) {
			return c.Movements().GetByID(ctx, id)
		},
		itemRow:   movementRow,
		newFlags:  func() payloadFlags[core.MovementInput] { return &movementFlags{} },
		byTypeCat: true,
	}
}

// movementRow renders a movement from its joined relations, for output that
// has no loaded MovementsPage to resolve ids against.
func movementRow(m core.Movement) []string {
	tipo, categoria, usuario := "N/A", "N/A", "N/A"
	if m.TipoMovimentacao != nil {
		tipo = m.TipoMovimentacao.Nome
	}
	if m.Categoria != nil {
		categoria = m.Categoria.Nome
	}
	if m.Usuario != nil {
		usuario = m.Usuario.Nome
	}
	return []string{
		itoa(m.ID),
		m.Data.Format("02/01/2006"),
		m.Descricao,
		core.FormatBRL(m.Valor),
		tipo,
		categoria,
		usuario,
		strconv.FormatBool(m.Fixo),
	}
}

type movementFlags struct {
	descricao, valor, data string
	fixo                   bool
	tipo, categoria, user  int64
}

func (f *movementFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.descricao, "descricao", "", "description")
	cmd.Flags().StringVar(&f.valor, "valor", "", "amount, e.g. 1500.75")
	cmd.Flags().StringVar(&f.data, "data", "", "date, YYYY-MM-DD or RFC 3339")
	cmd.Flags().BoolVar(&f.fixo, "fixo", false, "recurring movement")
	cmd.Flags().Int64Var(&f.tipo, "tipo", 0, "movement type id")
	cmd.Flags().Int64Var(&f.categoria, "categoria", 0, "category id")
	cmd.Flags().Int64Var(&f.user, "usuario", 0, "user id")
}

func (f *movementFlags) build(cmd *cobra.Command, id *int64) (core.MovementInput, error) {
	in := core.MovementInput{
		ID:                 id,
		Descricao:          optString(cmd, "descricao", f.descricao),
		Fixo:               &f.fixo,
		TipoMovimentacaoID: optID(cmd, "tipo", f.tipo),
		CategoriaID:        optID(cmd, "categoria", f.categoria),
		UsuarioID:          optID(cmd, "usuario", f.user),
	}
	if cmd.Flags().Changed("valor") {
		v, err := core.ParseAmount(f.valor)
		if err != nil {
			return in, fmt.Errorf("--valor: %w", err)
		}
		in.Valor = &v
	}
	if cmd.Flags().Changed("data") {
		d, err := core.ParseDate(f.data)
		if err != nil {
			return in, fmt.Errorf("--data: %w", err)
		}
		in.Data = &d
	}
	return in, nil
}
