// Delete command removes a resource and its attributes.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/resourcestore/pkg/types"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a resource and its attributes",
	Long: `Delete removes a resource together with all of its attribute rows.
The deletion is refused while any other resource or relation still
references the target.

Example:
  resourcestore delete 42`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, "delete:", err)
			os.Exit(exitUserError)
		}

		store, err := openStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "delete:", err)
			os.Exit(exitSysError)
		}
		defer store.Close()

		if err := store.DeleteResource(id); err != nil {
			switch {
			case errors.Is(err, types.ErrNotFound):
				fmt.Fprintf(os.Stderr, "delete: resource %d not found\n", id)
				os.Exit(exitUserError)
			case errors.Is(err, types.ErrReferentialIntegrity):
				fmt.Fprintf(os.Stderr, "delete: resource %d is still referenced\n", id)
				os.Exit(exitUserError)
			default:
				fmt.Fprintln(os.Stderr, "delete:", err)
				os.Exit(exitSysError)
			}
		}

		fmt.Printf("Deleted resource %d\n", id)
		return nil
	},
}
