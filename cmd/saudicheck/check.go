package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Nicolas4485/allam-demo-payment-integration/internal/compliance"
)

type fileReport struct {
	File string `json:"file"`
	*compliance.Report
	Summary compliance.Summary `json:"summary"`
}

func checkCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check [file...]",
		Short: "Check source files for Saudi compliance violations",
		Long: `Evaluate each file against the data sovereignty, VAT rate, bilingual
documentation, data security and e-invoicing rules. Use "-" to read stdin.
Exits with status 1 when any file fails.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.logger()
			defer logger.Sync()

			evaluator, err := compliance.LoadEvaluator(opts.rulesPath)
			if err != nil {
				return err
			}
			logger.Debug("Rules loaded", zap.Strings("rules", evaluator.RuleIDs()))

			out := cmd.OutOrStdout()
			reports := make([]fileReport, 0, len(args))
			failed := false

			for _, path := range args {
				source, err := readSource(cmd.InOrStdin(), path)
				if err != nil {
					return err
				}

				report := evaluator.Evaluate(source)
				logger.Debug("File checked",
					zap.String("file", path),
					zap.String("verdict", string(report.Verdict)))

				if !report.Passed() {
					failed = true
				}
				reports = append(reports, fileReport{File: path, Report: report, Summary: report.Summary()})

				if !opts.jsonOut {
					if len(args) > 1 {
						fmt.Fprintf(out, "<!-- %s -->\n", path)
					}
					fmt.Fprintln(out, report.Markdown())
				}
			}

			if opts.jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(reports); err != nil {
					return err
				}
			}

			if failed {
				return errComplianceFailed
			}
			return nil
		},
	}
}

func readSource(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
