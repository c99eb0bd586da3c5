package main

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Nicolas4485/allam-demo-payment-integration/internal/vat"
)

func vatCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "vat [subtotal]",
		Short: "Compute 15% VAT and the total for a SAR subtotal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			subtotal, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid subtotal %q: %w", args[0], err)
			}

			b, err := vat.Compute(subtotal)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return json.NewEncoder(out).Encode(map[string]any{
					"currency":       vat.Currency,
					"subtotal":       vat.FormatAmount(b.Subtotal),
					"vat_amount":     vat.FormatAmount(b.VAT),
					"total":          vat.FormatAmount(b.Total),
					"amount_halalas": b.Halalas,
				})
			}

			fmt.Fprintf(out, "Subtotal:  %s %s\n", vat.FormatAmount(b.Subtotal), vat.Currency)
			fmt.Fprintf(out, "VAT (15%%): %s %s\n", vat.FormatAmount(b.VAT), vat.Currency)
			fmt.Fprintf(out, "Total:     %s %s\n", vat.FormatAmount(b.Total), vat.Currency)
			fmt.Fprintf(out, "Halalas:   %d\n", b.Halalas)
			return nil
		},
	}
}
