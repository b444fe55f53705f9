// List command queries resources by type tag.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list <type>",
	Short: "List resources with the given type tag",
	Long: `List prints every resource carrying the given type tag.

Example:
  resourcestore list account
  resourcestore list transaction --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "list:", err)
			os.Exit(exitSysError)
		}
		defer store.Close()

		resources, err := store.ListByType(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, "list:", err)
			os.Exit(exitSysError)
		}

		if flagJSON {
			return printJSON(resources)
		}
		for _, r := range resources {
			doc := "null"
			if r.Document != nil {
				doc = string(r.Document)
			}
			fmt.Printf("%d\t%s\t%s\n", r.ID, r.Type, doc)
		}
		return nil
	},
}
