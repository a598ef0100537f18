// internal/cli/create.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"affinet/internal/affiliate"
)

func newCreateCmd(app *App) *cobra.Command {
	params := affiliate.CreateParams{}

	cmd := &cobra.Command{
		Use:   "create <username|id>",
		Short: "Create an affiliate for an existing user account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return affiliate.ErrMissingArgument
			}
			params.Token = args[0]

			rec, err := app.svc.Create(cmd.Context(), params)
			if err != nil {
				return err
			}

			fmt.Fprintf(app.out, "Affiliate created for %s (ID: %d)\n", rec.UserLogin, rec.AffiliateID)
			return nil
		},
	}

	cmd.Flags().StringVar(&params.PaymentEmail, "payment-email", "", "payout address; defaults to the account email")
	cmd.Flags().StringVar(&params.Rate, "rate", "", "commission rate; empty uses the store default")
	cmd.Flags().StringVar(&params.RateType, "rate-type", "", "percentage, flat, or a custom tag")
	cmd.Flags().StringVar(&params.Status, "status", "", "active, inactive, or pending")
	cmd.Flags().Int64Var(&params.Earnings, "earnings", 0, "starting earnings")
	cmd.Flags().Int64Var(&params.Referrals, "referrals", 0, "starting referral count")
	cmd.Flags().Int64Var(&params.Visits, "visits", 0, "starting visit count")

	return cmd
}
