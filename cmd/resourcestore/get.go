// Get command retrieves a resource by id.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/resourcestore/pkg/types"
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get a resource by id",
	Long: `Get retrieves a resource by its id and prints it as JSON.

Example:
  resourcestore get 42`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, "get:", err)
			os.Exit(exitUserError)
		}

		store, err := openStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "get:", err)
			os.Exit(exitSysError)
		}
		defer store.Close()

		resource, err := store.GetResource(id)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				fmt.Fprintf(os.Stderr, "get: resource %d not found\n", id)
				os.Exit(exitUserError)
			}
			fmt.Fprintln(os.Stderr, "get:", err)
			os.Exit(exitSysError)
		}

		return printJSON(resource)
	},
}
