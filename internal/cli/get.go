// internal/cli/get.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"affinet/internal/affiliate"
	"affinet/internal/output"
)

func newGetCmd(app *App) *cobra.Command {
	var (
		field  string
		fields string
		format string
	)

	cmd := &cobra.Command{
		Use:   "get <username|id>",
		Short: "Fetch a single affiliate record",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return affiliate.ErrMissingArgument
			}

			rec, err := app.svc.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if field != "" {
				v, err := output.Value(*rec, field)
				if err != nil {
					return err
				}
				fmt.Fprintln(app.out, v)
				return nil
			}

			return output.RenderOne(app.out, *rec, fieldList(fields), format)
		},
	}

	cmd.Flags().StringVar(&field, "field", "", "print a single field value")
	cmd.Flags().StringVar(&fields, "fields", "", "comma-separated fields to include")
	cmd.Flags().StringVar(&format, "format", output.FormatTable, "output format: table, csv, json, yaml")

	return cmd
}
