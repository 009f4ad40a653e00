package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/courseta/courseta/internal/display"
)

var (
	sendTemplate string
	sendData     string
	sendSheet    string
	sendKey      string
	sendDryRun   bool
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Render messages and deliver them as Slack direct messages",
	Long: `Mail merge a template against a gradebook and send each rendered message
to the recipient whose Slack username is the result key.

Configuration and authentication problems fail immediately; per-recipient
delivery problems are collected and reported after the batch completes.

Examples:
  cta send --template grades.tmpl --data gradebook.csv --key Slack_User_Name
  cta send --template grades.tmpl --data gradebook.xlsx --sheet Section1 --key Slack_User_Name --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ext := strings.ToLower(filepath.Ext(sendData))
		if sendKey == "" && ext != ".yaml" && ext != ".yml" {
			return fmt.Errorf("--key is required so results are keyed by Slack username")
		}

		results, err := mergeResults(sendTemplate, sendData, sendSheet, sendKey)
		if err != nil {
			return err
		}

		if sendDryRun {
			fmt.Print(display.Preview(results))
			display.SuccessMsg("dry run: %d messages rendered, nothing sent", results.Len())
			return nil
		}

		acct, err := newAccount()
		if err != nil {
			return err
		}

		report, err := acct.SendDirectMessages(cmd.Context(), results.Map())
		if err != nil {
			return err
		}

		fmt.Print(display.DeliveryReport(report))
		if report.AllFailed() {
			return fmt.Errorf("no messages delivered: %w", report.Err())
		}
		return nil
	},
}

func init() {
	sendCmd.Flags().StringVar(&sendTemplate, "template", "", "Message template file (required)")
	sendCmd.Flags().StringVar(&sendData, "data", "", "Gradebook file: .csv, .xlsx, or .yaml (required)")
	sendCmd.Flags().StringVar(&sendSheet, "sheet", "", "Worksheet name for xlsx data")
	sendCmd.Flags().StringVar(&sendKey, "key", "", "Column holding each recipient's Slack username")
	sendCmd.Flags().BoolVar(&sendDryRun, "dry-run", false, "Preview the rendered messages without sending")
	sendCmd.MarkFlagRequired("template")
	sendCmd.MarkFlagRequired("data")

	rootCmd.AddCommand(sendCmd)
}
