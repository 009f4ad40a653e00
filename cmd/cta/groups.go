package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/courseta/courseta/internal/display"
	"github.com/courseta/courseta/internal/tabular"
)

var (
	groupsData   string
	groupsSheet  string
	groupsKey    string
	groupsValues string
	groupsLast   bool
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Group one gradebook column's values by another",
	Long: `Group the values of one column by the values of another, such as listing
the members of each project team or collecting every score a student
submitted. Groups keep the order rows appear in the data.

With --last, a repeated key keeps only its last value, so each group reduces
to the key's most recent entry.

Examples:
  cta groups --data teams.csv --key Team_Number --values GitHub_User_Name
  cta groups --data gradebook.csv --key User_Name --values Score --last`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := readRows(groupsData, groupsSheet)
		if err != nil {
			return err
		}

		mm, err := tabular.GroupBy(rows, groupsKey, groupsValues, groupsLast)
		if err != nil {
			return err
		}

		for _, key := range mm.Keys() {
			fmt.Printf("%s %s\n", display.Bold.Render(key+":"), strings.Join(mm.Get(key), ", "))
		}
		return nil
	},
}

// readRows opens a data file and parses it by extension. Shared by the
// commands that consume raw rows rather than merge results.
func readRows(dataPath, sheet string) (tabular.Rows, error) {
	df, err := os.Open(dataPath)
	if err != nil {
		return nil, fmt.Errorf("open data: %w", err)
	}
	defer df.Close()

	switch strings.ToLower(filepath.Ext(dataPath)) {
	case ".csv":
		return tabular.ReadCSV(df)
	case ".xlsx":
		if sheet == "" {
			return nil, fmt.Errorf("--sheet is required for xlsx data")
		}
		return tabular.ReadXLSX(df, sheet)
	default:
		return nil, fmt.Errorf("unsupported data format %q (want .csv or .xlsx)", filepath.Ext(dataPath))
	}
}

func init() {
	groupsCmd.Flags().StringVar(&groupsData, "data", "", "Data file: .csv or .xlsx (required)")
	groupsCmd.Flags().StringVar(&groupsSheet, "sheet", "", "Worksheet name for xlsx data")
	groupsCmd.Flags().StringVar(&groupsKey, "key", "", "Column whose values name the groups (required)")
	groupsCmd.Flags().StringVar(&groupsValues, "values", "", "Column whose values are grouped (required)")
	groupsCmd.Flags().BoolVar(&groupsLast, "last", false, "Keep only the last value for a repeated key")
	groupsCmd.MarkFlagRequired("data")
	groupsCmd.MarkFlagRequired("key")
	groupsCmd.MarkFlagRequired("values")

	rootCmd.AddCommand(groupsCmd)
}
