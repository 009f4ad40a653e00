package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/courseta/courseta/internal/display"
	"github.com/courseta/courseta/internal/merge"
)

var (
	mergeTemplate string
	mergeData     string
	mergeSheet    string
	mergeKey      string
	mergeOut      string
	mergeFlat     bool
	mergeKVSep    string
	mergeItemSep  string
	mergeReverse  bool
	mergeNoKeys   bool
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Render per-recipient messages from a template and a gradebook",
	Long: `Render a message template once per gradebook row.

The data format is chosen by file extension: .csv (header line), .xlsx
(requires --sheet, header row), or .yaml/.yml (mapping of key to variables).
With --key, results are keyed by that column's values; otherwise by row
position.

Examples:
  cta merge --template grades.tmpl --data gradebook.csv --key User_Name
  cta merge --template grades.tmpl --data gradebook.xlsx --sheet Section1 --out messages/
  cta merge --template grades.tmpl --data gradebook.csv --flat --item-separator "====\n"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		results, err := mergeResults(mergeTemplate, mergeData, mergeSheet, mergeKey)
		if err != nil {
			return err
		}

		if mergeOut != "" {
			return writeResults(results, mergeOut)
		}

		if mergeFlat {
			var opts []merge.FlattenOption
			if mergeReverse {
				opts = append(opts, merge.WithReverse())
			}
			if mergeNoKeys {
				opts = append(opts, merge.WithoutKeys())
			}
			fmt.Print(merge.Flatten(results, mergeKVSep, mergeItemSep, opts...))
			return nil
		}

		fmt.Print(display.Preview(results))
		return nil
	},
}

// mergeResults opens the template and data files and dispatches on the data
// file's extension. Shared by merge and send.
func mergeResults(templatePath, dataPath, sheet, key string) (merge.Results, error) {
	tf, err := os.Open(templatePath)
	if err != nil {
		return merge.Results{}, fmt.Errorf("open template: %w", err)
	}
	defer tf.Close()

	df, err := os.Open(dataPath)
	if err != nil {
		return merge.Results{}, fmt.Errorf("open data: %w", err)
	}
	defer df.Close()

	switch strings.ToLower(filepath.Ext(dataPath)) {
	case ".csv":
		return merge.FromCSV(tf, df, key)
	case ".xlsx":
		if sheet == "" {
			return merge.Results{}, fmt.Errorf("--sheet is required for xlsx data")
		}
		return merge.FromXLSX(tf, df, sheet, key)
	case ".yaml", ".yml":
		return merge.FromYAML(tf, df)
	default:
		return merge.Results{}, fmt.Errorf("unsupported data format %q (want .csv, .xlsx, .yaml)", filepath.Ext(dataPath))
	}
}

// writeResults writes one file per recipient into dir, named by key.
func writeResults(results merge.Results, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	for _, e := range results.Entries() {
		name, err := resultFileName(e.Key)
		if err != nil {
			return err
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(e.Text), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	display.SuccessMsg("wrote %d messages to %s", results.Len(), dir)
	return nil
}

// resultFileName converts a result key into a file name that stays inside
// the output directory. Keys come straight from gradebook cells, so path
// separators and dot names are rejected rather than silently rewritten.
func resultFileName(key string) (string, error) {
	if key == "" || key == "." || key == ".." ||
		strings.ContainsAny(key, `/\`) || strings.ContainsRune(key, os.PathSeparator) {
		return "", fmt.Errorf("result key %q is not usable as a file name", key)
	}
	return key + ".txt", nil
}

func init() {
	mergeCmd.Flags().StringVar(&mergeTemplate, "template", "", "Message template file (required)")
	mergeCmd.Flags().StringVar(&mergeData, "data", "", "Gradebook file: .csv, .xlsx, or .yaml (required)")
	mergeCmd.Flags().StringVar(&mergeSheet, "sheet", "", "Worksheet name for xlsx data")
	mergeCmd.Flags().StringVar(&mergeKey, "key", "", "Column whose values key the results (default: row position)")
	mergeCmd.Flags().StringVar(&mergeOut, "out", "", "Write one file per recipient into this directory")
	mergeCmd.Flags().BoolVar(&mergeFlat, "flat", false, "Print results as a single delimited block")
	mergeCmd.Flags().StringVar(&mergeKVSep, "kv-separator", ":\n", "Separator between key and message (with --flat)")
	mergeCmd.Flags().StringVar(&mergeItemSep, "item-separator", "\n\n", "Separator between messages (with --flat)")
	mergeCmd.Flags().BoolVar(&mergeReverse, "reverse", false, "Reverse entry order (with --flat)")
	mergeCmd.Flags().BoolVar(&mergeNoKeys, "no-keys", false, "Omit keys (with --flat)")
	mergeCmd.MarkFlagRequired("template")
	mergeCmd.MarkFlagRequired("data")

	rootCmd.AddCommand(mergeCmd)
}
