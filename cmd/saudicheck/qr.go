package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Nicolas4485/allam-demo-payment-integration/internal/zatca"
)

func qrCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qr",
		Short: "ZATCA QR payload tools",
	}
	cmd.AddCommand(qrDecodeCmd(opts))
	cmd.AddCommand(qrPNGCmd(opts))
	return cmd
}

func qrDecodeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "decode [base64]",
		Short: "Decode a base64 TLV payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := zatca.ParseQRCode(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return json.NewEncoder(out).Encode(inv)
			}

			fmt.Fprintf(out, "Seller:     %s\n", inv.SellerName)
			fmt.Fprintf(out, "VAT number: %s\n", inv.VATNumber)
			fmt.Fprintf(out, "Timestamp:  %s\n", inv.Timestamp)
			fmt.Fprintf(out, "Total:      %s\n", inv.Total)
			fmt.Fprintf(out, "VAT:        %s\n", inv.VAT)
			return nil
		},
	}
}

func qrPNGCmd(opts *options) *cobra.Command {
	var output string
	var size int

	cmd := &cobra.Command{
		Use:   "png [base64]",
		Short: "Render a payload as a QR code image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.logger()
			defer logger.Sync()

			if _, err := zatca.ParseQRCode(args[0]); err != nil {
				logger.Warn("Payload is not a valid ZATCA TLV", zap.Error(err))
			}

			png, err := zatca.RenderPNG(args[0], size)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, png, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "qr.png", "Output file")
	cmd.Flags().IntVarP(&size, "size", "s", 256, "Image size in pixels")

	return cmd
}
