// Ref commands manage directed reference edges between resources.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/resourcestore/pkg/types"
)

var refCmd = &cobra.Command{
	Use:   "ref",
	Short: "Manage reference edges between resources",
}

var refAddCmd = &cobra.Command{
	Use:   "add <id> <target>",
	Short: "Record a reference edge from one resource to another",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, target, err := parseIDPair(args, "ref add")
		if err != nil {
			os.Exit(exitUserError)
		}

		store, err := openStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "ref add:", err)
			os.Exit(exitSysError)
		}
		defer store.Close()

		if err := store.PutReference(id, target); err != nil {
			if errors.Is(err, types.ErrDanglingReference) {
				fmt.Fprintln(os.Stderr, "ref add:", err)
				os.Exit(exitUserError)
			}
			fmt.Fprintln(os.Stderr, "ref add:", err)
			os.Exit(exitSysError)
		}

		fmt.Printf("Referenced %d -> %d\n", id, target)
		return nil
	},
}

var refRemoveCmd = &cobra.Command{
	Use:   "remove <id> <target>",
	Short: "Remove a reference edge",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, target, err := parseIDPair(args, "ref remove")
		if err != nil {
			os.Exit(exitUserError)
		}

		store, err := openStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "ref remove:", err)
			os.Exit(exitSysError)
		}
		defer store.Close()

		if err := store.RemoveReference(id, target); err != nil {
			if errors.Is(err, types.ErrNotFound) {
				fmt.Fprintf(os.Stderr, "ref remove: no edge %d -> %d\n", id, target)
				os.Exit(exitUserError)
			}
			fmt.Fprintln(os.Stderr, "ref remove:", err)
			os.Exit(exitSysError)
		}

		fmt.Printf("Removed reference %d -> %d\n", id, target)
		return nil
	},
}

var refListCmd = &cobra.Command{
	Use:   "list <id>",
	Short: "List outgoing reference edges of a resource",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, "ref list:", err)
			os.Exit(exitUserError)
		}

		store, err := openStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "ref list:", err)
			os.Exit(exitSysError)
		}
		defer store.Close()

		refs, err := store.ReferencesFor(id)
		if err != nil {
			fmt.Fprintln(os.Stderr, "ref list:", err)
			os.Exit(exitSysError)
		}

		if flagJSON {
			return printJSON(refs)
		}
		for _, r := range refs {
			fmt.Printf("%d -> %d\n", r.ID, r.ReferenceID)
		}
		return nil
	},
}

// parseIDPair parses two id arguments, printing a prefixed error on failure.
func parseIDPair(args []string, prefix string) (int64, int64, error) {
	a, err := parseID(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, prefix+":", err)
		return 0, 0, err
	}
	b, err := parseID(args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, prefix+":", err)
		return 0, 0, err
	}
	return a, b, nil
}

func init() {
	refCmd.AddCommand(refAddCmd)
	refCmd.AddCommand(refRemoveCmd)
	refCmd.AddCommand(refListCmd)
}
