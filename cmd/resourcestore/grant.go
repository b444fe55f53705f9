// Grant commands manage group access grants.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/resourcestore/pkg/types"
)

var grantCmd = &cobra.Command{
	Use:   "grant",
	Short: "Manage group access grants",
}

var grantAddCmd = &cobra.Command{
	Use:   "add <group> <user> <access>",
	Short: "Record the access level a user holds within a group",
	Long: `Add records an access level for a (group, user) pair. A repeated add
replaces the access level.

Example:
  resourcestore grant add 10 20 3`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		group, user, err := parseIDPair(args, "grant add")
		if err != nil {
			os.Exit(exitUserError)
		}
		access, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "grant add: invalid access level %q\n", args[2])
			os.Exit(exitUserError)
		}

		store, err := openStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "grant add:", err)
			os.Exit(exitSysError)
		}
		defer store.Close()

		if err := store.PutGrant(group, user, access); err != nil {
			if errors.Is(err, types.ErrDanglingReference) {
				fmt.Fprintln(os.Stderr, "grant add:", err)
				os.Exit(exitUserError)
			}
			fmt.Fprintln(os.Stderr, "grant add:", err)
			os.Exit(exitSysError)
		}

		fmt.Printf("Granted access %d to user %d in group %d\n", access, user, group)
		return nil
	},
}

var grantRemoveCmd = &cobra.Command{
	Use:   "remove <group> <user>",
	Short: "Remove a grant",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		group, user, err := parseIDPair(args, "grant remove")
		if err != nil {
			os.Exit(exitUserError)
		}

		store, err := openStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "grant remove:", err)
			os.Exit(exitSysError)
		}
		defer store.Close()

		if err := store.RemoveGrant(group, user); err != nil {
			if errors.Is(err, types.ErrNotFound) {
				fmt.Fprintf(os.Stderr, "grant remove: no grant for user %d in group %d\n", user, group)
				os.Exit(exitUserError)
			}
			fmt.Fprintln(os.Stderr, "grant remove:", err)
			os.Exit(exitSysError)
		}

		fmt.Printf("Removed grant for user %d in group %d\n", user, group)
		return nil
	},
}

var grantListCmd = &cobra.Command{
	Use:   "list <group>",
	Short: "List the grants of a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		group, err := parseID(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, "grant list:", err)
			os.Exit(exitUserError)
		}

		store, err := openStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "grant list:", err)
			os.Exit(exitSysError)
		}
		defer store.Close()

		grants, err := store.GrantsFor(group)
		if err != nil {
			fmt.Fprintln(os.Stderr, "grant list:", err)
			os.Exit(exitSysError)
		}

		if flagJSON {
			return printJSON(grants)
		}
		for _, g := range grants {
			fmt.Printf("%d\t%d\t%d\n", g.GroupID, g.UserID, g.Access)
		}
		return nil
	},
}

func init() {
	grantCmd.AddCommand(grantAddCmd)
	grantCmd.AddCommand(grantRemoveCmd)
	grantCmd.AddCommand(grantListCmd)
}
