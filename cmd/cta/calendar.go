package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/courseta/courseta/internal/calendar"
	"github.com/courseta/courseta/internal/display"
)

var (
	calData    string
	calSheet   string
	calStart   string
	calDelim   string
	calWeekCol string
	calOut     string
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Convert a weekly schedule spreadsheet into a dated YAML calendar",
	Long: `Convert a spreadsheet with one row per week and one column per weekday into
a YAML document with one entry per calendar day.

Week 1 is the ISO week (Monday through Sunday) containing --start; the start
date is rounded back to that week's Monday. Multi-item cells are split on the
item delimiter.

Examples:
  cta calendar --data schedule.xlsx --sheet Assessments --start 2018-01-01
  cta calendar --data schedule.csv --start 2018-01-01 --delimiter ";" --out calendar.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := time.Parse("2006-01-02", calStart)
		if err != nil {
			return fmt.Errorf("parse --start: %w", err)
		}

		rows, err := readRows(calData, calSheet)
		if err != nil {
			return err
		}

		cal, err := calendar.Convert(rows, start, calDelim, calWeekCol)
		if err != nil {
			return err
		}

		var w io.Writer = os.Stdout
		if calOut != "" {
			f, err := os.Create(calOut)
			if err != nil {
				return fmt.Errorf("create output file: %w", err)
			}
			defer f.Close()
			w = f
		}
		if err := cal.Encode(w); err != nil {
			return err
		}
		if calOut != "" {
			display.SuccessMsg("wrote %d weeks to %s", len(cal), calOut)
		}
		return nil
	},
}

func init() {
	calendarCmd.Flags().StringVar(&calData, "data", "", "Schedule file: .csv or .xlsx (required)")
	calendarCmd.Flags().StringVar(&calSheet, "sheet", "", "Worksheet name for xlsx data")
	calendarCmd.Flags().StringVar(&calStart, "start", "", "Date inside week 1, formatted 2006-01-02 (required)")
	calendarCmd.Flags().StringVar(&calDelim, "delimiter", "|", "Delimiter between items within one cell")
	calendarCmd.Flags().StringVar(&calWeekCol, "week-column", "Week", "Column holding the week number")
	calendarCmd.Flags().StringVar(&calOut, "out", "", "Output file (default: stdout)")
	calendarCmd.MarkFlagRequired("data")
	calendarCmd.MarkFlagRequired("start")

	rootCmd.AddCommand(calendarCmd)
}
