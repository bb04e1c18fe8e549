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

// listPage is what the resource commands need from a page. *pages.Page and
// *pages.MovementsPage both satisfy it.
type listPage[T any, P any] interface {
	Load(ctx context.Context) error
	Save(ctx context.Context, id int64, payload P) error
	Delete(ctx context.Context, id int64) (bool, error)
	Filter(q pages.Query) []T
	SetConfirm(c pages.Confirm)
}

// payloadFlags registers the write flags of one entity and turns them into
// a payload. Flags left unset stay nil so the server reports them missing.
type payloadFlags[P any] interface {
	register(cmd *cobra.Command)
	build(cmd *cobra.Command, id *int64) (P, error)
}

type resource[T any, P any] struct {
	name   string
	short  string
	header []string
	open   func(c *client.Client) (listPage[T, P], func(T) []string)
	get    func(ctx context.Context, c *client.Client, id int64) (T, error)
	// itemRow renders get output; nil reuses the list row
	itemRow   func(T) []string
	newFlags  func() payloadFlags[P]
	byTypeCat bool
}

func resourceCmd[T any, P any](a *app, r resource[T, P]) *cobra.Command {
	cmd := &cobra.Command{Use: r.name, Short: r.short}
	cmd.AddCommand(r.listCmd(a), r.getCmd(a), r.createCmd(a), r.updateCmd(a), r.deleteCmd(a))
	return cmd
}

func (r resource[T, P]) listCmd(a *app) *cobra.Command {
	var q pages.Query
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every " + r.name,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if _, err := a.requireLogin(ctx); err != nil {
				return err
			}
			page, row := r.open(a.client())
			if err := page.Load(ctx); err != nil {
				return err
			}
			return render(a, cmd, page.Filter(q), r.header, row)
		},
	}
	cmd.Flags().StringVar(&q.Text, "search", "", "case-insensitive text filter")
	if r.byTypeCat {
		cmd.Flags().Int64Var(&q.TipoID, "tipo", 0, "only this movement type id")
		cmd.Flags().Int64Var(&q.CategoriaID, "categoria", 0, "only this category id")
	}
	return cmd
}

func (r resource[T, P]) getCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one " + r.name,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := a.requireLogin(ctx); err != nil {
				return err
			}
			item, err := r.get(ctx, a.client(), id)
			if err != nil {
				return err
			}
			row := r.itemRow
			if row == nil {
				_, row = r.open(a.client())
			}
			return renderOne(a, cmd, item, r.header, row)
		},
	}
}

func (r resource[T, P]) createCmd(a *app) *cobra.Command {
	flags := r.newFlags()
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a " + r.name,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.save(a, cmd, flags, 0)
		},
	}
	flags.register(cmd)
	return cmd
}

func (r resource[T, P]) updateCmd(a *app) *cobra.Command {
	flags := r.newFlags()
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Replace every field of a " + r.name,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return r.save(a, cmd, flags, id)
		},
	}
	flags.register(cmd)
	return cmd
}

func (r resource[T, P]) save(a *app, cmd *cobra.Command, flags payloadFlags[P], id int64) error {
	ctx := cmd.Context()
	if _, err := a.requireLogin(ctx); err != nil {
		return err
	}
	var bodyID *int64
	if id != 0 {
		bodyID = &id
	}
	payload, err := flags.build(cmd, bodyID)
	if err != nil {
		return err
	}
	page, _ := r.open(a.client())
	if err := page.Save(ctx, id, payload); err != nil {
		return err
	}
	if id == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%s created\n", r.name)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %d updated\n", r.name, id)
	}
	return nil
}

func (r resource[T, P]) deleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a " + r.name,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := a.requireLogin(ctx); err != nil {
				return err
			}
			page, _ := r.open(a.client())
			page.SetConfirm(func(prompt string) bool {
				return yes || a.confirm(cmd, prompt)
			})
			deleted, err := page.Delete(ctx, id)
			if err != nil {
				return err
			}
			if !deleted {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d deleted\n", r.name, id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

// optString returns a pointer to the flag value only when it was given.
func optString(cmd *cobra.Command, name string, v string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &v
}

func optID(cmd *cobra.Command, name string, v int64) *int64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &v
}

var usersHeader = []string{"ID", "NOME", "EMAIL"}

func userRow(u core.User) []string {
	return []string{itoa(u.ID), u.Nome, u.Email}
}
