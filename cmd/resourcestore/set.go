// Set command replaces a resource document.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/resourcestore/pkg/types"
)

var setClear bool

var setCmd = &cobra.Command{
	Use:   "set <id> [document]",
	Short: "Replace a resource document",
	Long: `Set replaces the document of an existing resource. The type tag is
never altered. With --clear the document is set to null.

Example:
  resourcestore set 42 '{"name":"Cash","currency":"EUR"}'
  resourcestore set 42 --clear`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, "set:", err)
			os.Exit(exitUserError)
		}

		var doc json.RawMessage
		switch {
		case setClear:
			if len(args) == 2 {
				fmt.Fprintln(os.Stderr, "set: --clear takes no document argument")
				os.Exit(exitUserError)
			}
		case len(args) == 2:
			if !json.Valid([]byte(args[1])) {
				fmt.Fprintln(os.Stderr, "set: document is not valid JSON")
				os.Exit(exitUserError)
			}
			doc = json.RawMessage(args[1])
		default:
			fmt.Fprintln(os.Stderr, "set: a document argument or --clear is required")
			os.Exit(exitUserError)
		}

		store, err := openStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "set:", err)
			os.Exit(exitSysError)
		}
		defer store.Close()

		if err := store.ReplaceDocument(id, doc); err != nil {
			if errors.Is(err, types.ErrNotFound) {
				fmt.Fprintf(os.Stderr, "set: resource %d not found\n", id)
				os.Exit(exitUserError)
			}
			fmt.Fprintln(os.Stderr, "set:", err)
			os.Exit(exitSysError)
		}

		fmt.Printf("Updated resource %d\n", id)
		return nil
	},
}

func init() {
	setCmd.Flags().BoolVar(&setClear, "clear", false, "set the document to null")
}
