package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/courseta/courseta/internal/display"
)

var usersChannels bool

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List workspace usernames and their internal IDs",
	Long: `List every user in the Slack workspace with their internal ID, and with
--channels also the direct message channel ID where one is open. Useful for
checking that gradebook usernames resolve before sending a batch.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		acct, err := newAccount()
		if err != nil {
			return err
		}

		ids, err := acct.UserIDs(cmd.Context())
		if err != nil {
			return err
		}

		var channels map[string]string
		if usersChannels {
			channels, err = acct.DMChannels(cmd.Context())
			if err != nil {
				return err
			}
		}

		usernames := make([]string, 0, len(ids))
		for name := range ids {
			usernames = append(usernames, name)
		}
		sort.Strings(usernames)

		for _, name := range usernames {
			line := fmt.Sprintf("%-24s %s", name, ids[name])
			if usersChannels {
				if ch, ok := channels[name]; ok {
					line += " " + display.Muted.Render(ch)
				} else {
					line += " " + display.Dim.Render("(no dm channel)")
				}
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	usersCmd.Flags().BoolVar(&usersChannels, "channels", false, "Include direct message channel IDs")

	rootCmd.AddCommand(usersCmd)
}
