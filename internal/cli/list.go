// internal/cli/list.go
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"affinet/internal/affiliate"
	"affinet/internal/output"
)

func newListCmd(app *App) *cobra.Command {
	var (
		filters []string
		field   string
		fields  string
		format  string
		orderBy string
		order   string
		number  int
		offset  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List affiliates matching the given filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filterMap, err := parseFilters(filters)
			if err != nil {
				return err
			}

			params := affiliate.ListParams{ListArgs: affiliate.ListArgs{
				Filters: filterMap,
				OrderBy: orderBy,
				Order:   order,
				Number:  number,
				Offset:  offset,
			}}

			if format == output.FormatCount {
				count, err := app.svc.Count(cmd.Context(), params)
				if err != nil {
					return err
				}
				fmt.Fprintln(app.out, count)
				return nil
			}

			records, err := app.svc.List(cmd.Context(), params)
			if err != nil {
				return err
			}

			selected := fieldList(fields)
			if field != "" {
				selected = []string{field}
			}
			return output.Render(app.out, records, selected, format)
		},
	}

	cmd.Flags().StringArrayVar(&filters, "filter", nil, "field=value filter, repeatable")
	cmd.Flags().StringVar(&field, "field", "", "print a single field per row")
	cmd.Flags().StringVar(&fields, "fields", "", "comma-separated fields to include")
	cmd.Flags().StringVar(&format, "format", output.FormatTable, "output format: table, csv, json, yaml, count, ids")
	cmd.Flags().StringVar(&orderBy, "orderby", "", "column to sort by")
	cmd.Flags().StringVar(&order, "order", "asc", "sort direction: asc or desc")
	cmd.Flags().IntVar(&number, "number", 0, "maximum rows to return; 0 for all")
	cmd.Flags().IntVar(&offset, "offset", 0, "rows to skip")

	return cmd
}

// parseFilters turns repeated field=value flags into the filter map forwarded
// verbatim to the store.
func parseFilters(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	filters := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		field, value, ok := strings.Cut(pair, "=")
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid filter %q, expected field=value", pair)
		}
		filters[field] = value
	}
	return filters, nil
}
