// Journal command prints the change history of a resource.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal <id>",
	Short: "Print the change journal of a resource",
	Long: `Journal prints the recorded lifecycle entries of a resource, oldest
first. Entries survive the resource's deletion.

Example:
  resourcestore journal 42`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, "journal:", err)
			os.Exit(exitUserError)
		}

		store, err := openStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "journal:", err)
			os.Exit(exitSysError)
		}
		defer store.Close()

		entries, err := store.JournalFor(id)
		if err != nil {
			fmt.Fprintln(os.Stderr, "journal:", err)
			os.Exit(exitSysError)
		}

		if flagJSON {
			return printJSON(entries)
		}
		for _, e := range entries {
			detail := e.Detail
			if detail == "" {
				detail = "-"
			}
			fmt.Printf("%s\t%s\t%s\n", e.CreatedAt, e.Op, detail)
		}
		return nil
	},
}
