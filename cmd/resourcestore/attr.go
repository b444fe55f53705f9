// Attr commands manage typed attributes on resources.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/resourcestore/pkg/types"
)

var attrCmd = &cobra.Command{
	Use:   "attr",
	Short: "Manage typed resource attributes",
}

var attrAddCmd = &cobra.Command{
	Use:   "add <id> <kind> <name> <value>",
	Short: "Add an attribute to a resource",
	Long: `Add attaches a named typed value to a resource. Kinds: ` + validKindsStr + `.
Reference values must name an existing resource.

Example:
  resourcestore attr add 42 string label Cash
  resourcestore attr add 100 reference account 42
  resourcestore attr add 100 date date 2024-01-15`,
	Args: cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, "attr add:", err)
			os.Exit(exitUserError)
		}
		value, err := parseValue(args[1], args[3])
		if err != nil {
			fmt.Fprintln(os.Stderr, "attr add:", err)
			os.Exit(exitUserError)
		}

		store, err := openStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "attr add:", err)
			os.Exit(exitSysError)
		}
		defer store.Close()

		if err := store.AddAttribute(id, args[2], value); err != nil {
			switch {
			case errors.Is(err, types.ErrNotFound),
				errors.Is(err, types.ErrDanglingReference),
				errors.Is(err, types.ErrDuplicateAttribute):
				fmt.Fprintln(os.Stderr, "attr add:", err)
				os.Exit(exitUserError)
			default:
				fmt.Fprintln(os.Stderr, "attr add:", err)
				os.Exit(exitSysError)
			}
		}

		fmt.Printf("Added %s attribute %q to resource %d\n", args[1], args[2], id)
		return nil
	},
}

var attrRemoveCmd = &cobra.Command{
	Use:   "remove <id> <kind> <name> <value>",
	Short: "Remove one attribute triple from a resource",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, "attr remove:", err)
			os.Exit(exitUserError)
		}
		value, err := parseValue(args[1], args[3])
		if err != nil {
			fmt.Fprintln(os.Stderr, "attr remove:", err)
			os.Exit(exitUserError)
		}

		store, err := openStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "attr remove:", err)
			os.Exit(exitSysError)
		}
		defer store.Close()

		if err := store.RemoveAttribute(id, args[2], value); err != nil {
			if errors.Is(err, types.ErrNotFound) {
				fmt.Fprintln(os.Stderr, "attr remove: attribute not found")
				os.Exit(exitUserError)
			}
			fmt.Fprintln(os.Stderr, "attr remove:", err)
			os.Exit(exitSysError)
		}

		fmt.Printf("Removed %s attribute %q from resource %d\n", args[1], args[2], id)
		return nil
	},
}

var attrListCmd = &cobra.Command{
	Use:   "list <id> <kind> [name]",
	Short: "List attribute names or values for a resource",
	Long: `List prints the attribute names a resource carries in the given
kind's namespace, or the values stored under one name when given.

Example:
  resourcestore attr list 42 string
  resourcestore attr list 42 string label`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, "attr list:", err)
			os.Exit(exitUserError)
		}
		kind := types.Kind(args[1])
		if !kind.Valid() {
			fmt.Fprintf(os.Stderr, "attr list: unknown kind %q (valid: %s)\n", args[1], validKindsStr)
			os.Exit(exitUserError)
		}

		store, err := openStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "attr list:", err)
			os.Exit(exitSysError)
		}
		defer store.Close()

		if len(args) == 2 {
			names, err := store.AttributeNames(id, kind)
			if err != nil {
				fmt.Fprintln(os.Stderr, "attr list:", err)
				os.Exit(exitSysError)
			}
			if flagJSON {
				return printJSON(names)
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		}

		values, err := store.Attributes(id, kind, args[2])
		if err != nil {
			fmt.Fprintln(os.Stderr, "attr list:", err)
			os.Exit(exitSysError)
		}
		if flagJSON {
			return printJSON(values)
		}
		for _, v := range values {
			switch kind {
			case types.KindString, types.KindDate:
				fmt.Println(v.Text)
			default:
				fmt.Println(v.Int)
			}
		}
		return nil
	},
}

func init() {
	attrCmd.AddCommand(attrAddCmd)
	attrCmd.AddCommand(attrRemoveCmd)
	attrCmd.AddCommand(attrListCmd)
}
