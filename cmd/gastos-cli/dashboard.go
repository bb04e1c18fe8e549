package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gastos/internal/core"
	"gastos/internal/pages"
)

func (a *app) dashboardCmd() *cobra.Command {
	var usuarioID int64
	var server bool
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show totals, balance and the most recent movements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if _, err := a.requireLogin(ctx); err != nil {
				return err
			}

			var d core.Dashboard
			var err error
			if server {
				d, err = a.client().Dashboard(ctx, usuarioID)
			} else {
				d, err = pages.NewDashboardPage(a.client()).Load(ctx, usuarioID)
			}
			if err != nil {
				return err
			}

			if a.v.GetBool("json") {
				return writeJSON(cmd, d)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "Categorias:\t%d\n", d.TotalCategorias)
			fmt.Fprintf(tw, "Movimentações:\t%d\n", d.TotalMovimentacoes)
			fmt.Fprintf(tw, "Receitas:\t%s\n", core.FormatBRL(d.TotalReceitas))
			fmt.Fprintf(tw, "Despesas:\t%s\n", core.FormatBRL(d.TotalDespesas))
			fmt.Fprintf(tw, "Saldo:\t%s\n", core.FormatBRL(d.Saldo))
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), "Movimentações recentes")
			return render(a, cmd, d.Recentes, movementsHeader, movementRow)
		},
	}
	cmd.Flags().Int64Var(&usuarioID, "usuario", 0, "only this user's categories and movements")
	cmd.Flags().BoolVar(&server, "server", false, "use the server side aggregate instead of computing it locally")
	return cmd
}
