package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func render[T any](a *app, cmd *cobra.Command, items []T, header []string, row func(T) []string) error {
	if a.v.GetBool("json") {
		if items == nil {
			items = []T{}
		}
		return writeJSON(cmd, items)
	}
	if len(items) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nenhum registro encontrado.")
		return nil
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, item := range items {
		fmt.Fprintln(tw, strings.Join(row(item), "\t"))
	}
	return tw.Flush()
}

func renderOne[T any](a *app, cmd *cobra.Command, item T, header []string, row func(T) []string) error {
	if a.v.GetBool("json") {
		return writeJSON(cmd, item)
	}
	return render(a, cmd, []T{item}, header, row)
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
