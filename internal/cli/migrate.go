// internal/cli/migrate.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"affinet/internal/database"
)

func newMigrateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Bring the database schema up to date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.Migrate(app.db); err != nil {
				return err
			}
			fmt.Fprintln(app.out, "Migrations applied")
			return nil
		},
	}
}
