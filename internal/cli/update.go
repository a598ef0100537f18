// internal/cli/update.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"affinet/internal/affiliate"
)

func newUpdateCmd(app *App) *cobra.Command {
	params := affiliate.UpdateParams{}

	cmd := &cobra.Command{
		Use:   "update <username|id>",
		Short: "Update fields on an existing affiliate",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return affiliate.ErrMissingArgument
			}
			params.Token = args[0]

			aff, err := app.svc.Update(cmd.Context(), params)
			if err != nil {
				return err
			}

			fmt.Fprintf(app.out, "Affiliate %d updated\n", aff.AffiliateID)
			return nil
		},
	}

	cmd.Flags().StringVar(&params.AccountEmail, "account-email", "", "new email for the linked user account")
	cmd.Flags().StringVar(&params.PaymentEmail, "payment-email", "", "new payout address")
	cmd.Flags().StringVar(&params.Rate, "rate", "", "new commission rate")
	cmd.Flags().StringVar(&params.RateType, "rate-type", "", "new rate type")
	cmd.Flags().StringVar(&params.Status, "status", "", "active, inactive, or pending; anything else keeps the current status")

	return cmd
}
