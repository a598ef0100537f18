// internal/cli/delete.go
package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"affinet/internal/affiliate"
)

func newDeleteCmd(app *App) *cobra.Command {
	params := affiliate.DeleteParams{}

	cmd := &cobra.Command{
		Use:   "delete <username|id>",
		Short: "Delete an affiliate, optionally cascading to its data and user account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return affiliate.ErrMissingArgument
			}
			params.Token = args[0]

			// Resolve up front so the confirmation names the real target.
			aff, err := app.svc.Resolve(cmd.Context(), params.Token)
			if err != nil {
				return err
			}

			ok, err := app.confirm(deleteConfirmMessage(aff.AffiliateID, params.DeleteData, params.DeleteUser))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(app.out, "Deletion cancelled")
				return nil
			}

			outcome, err := app.svc.Delete(cmd.Context(), params)
			if err != nil {
				return err
			}

			fmt.Fprintln(app.out, deleteSuccessMessage(outcome))

			// Affiliate deleted but the requested account deletion failed:
			// a partial success the operator must see, never folded into
			// full success.
			if outcome.AccountErr != nil {
				return outcome.AccountErr
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&params.DeleteData, "delete-data", false, "also delete the affiliate's referral and visit data")
	cmd.Flags().BoolVar(&params.DeleteUser, "delete-user", false, "also delete the linked user account")
	cmd.Flags().BoolVar(&params.Network, "network", false, "delete the account network-wide on a multi-tenant host")

	return cmd
}

func deleteConfirmMessage(id int64, deleteData, deleteUser bool) string {
	switch {
	case deleteData && deleteUser:
		return fmt.Sprintf("You are about to delete affiliate %d, all of its data, and the associated user account. Continue?", id)
	case deleteData:
		return fmt.Sprintf("You are about to delete affiliate %d and all of its data. Continue?", id)
	default:
		return fmt.Sprintf("You are about to delete affiliate %d. Continue?", id)
	}
}

func deleteSuccessMessage(outcome *affiliate.DeleteOutcome) string {
	id := outcome.Affiliate.AffiliateID
	switch {
	case outcome.AccountDeleted && outcome.DataDeleted:
		return fmt.Sprintf("Affiliate %d, its data, and user account %d deleted", id, outcome.Affiliate.UserID)
	case outcome.AccountDeleted:
		return fmt.Sprintf("Affiliate %d and user account %d deleted", id, outcome.Affiliate.UserID)
	case outcome.DataDeleted:
		return fmt.Sprintf("Affiliate %d and its data deleted", id)
	default:
		return fmt.Sprintf("Affiliate %d deleted", id)
	}
}

// confirm gates destructive actions on an explicit yes, unless --yes was
// passed for scripted use.
func (a *App) confirm(question string) (bool, error) {
	if a.assumeYes {
		return true, nil
	}

	fmt.Fprintf(a.out, "%s [y/n] ", question)

	line, err := bufio.NewReader(a.in).ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
