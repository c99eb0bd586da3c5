// Command saudicheck checks source code against Saudi regulatory rules and
// offers VAT and ZATCA QR helpers.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Nicolas4485/allam-demo-payment-integration/pkg/utils"
)

var Version = "dev"

// errComplianceFailed makes the process exit 1 without printing an error
var errComplianceFailed = errors.New("compliance check failed")

type options struct {
	rulesPath string
	jsonOut   bool
	verbose   bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errComplianceFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "saudicheck",
		Short:         "Saudi compliance checks, VAT and ZATCA QR tools",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.rulesPath, "rules", "", "YAML rule set merged over the defaults")
	rootCmd.PersistentFlags().BoolVarP(&opts.jsonOut, "json", "j", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Debug logging on stderr")

	rootCmd.AddCommand(checkCmd(opts))
	rootCmd.AddCommand(vatCmd(opts))
	rootCmd.AddCommand(qrCmd(opts))

	return rootCmd
}

func (o *options) logger() *zap.Logger {
	logger, err := utils.NewCLILogger(o.verbose)
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
