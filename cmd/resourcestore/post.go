// Post commands manage transaction postings.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/resourcestore/pkg/types"
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Manage transaction postings",
}

var postAddCmd = &cobra.Command{
	Use:   "add <transaction> <account> <amount>",
	Short: "Record a posting of an amount against an account",
	Long: `Add records one ledger leg of a transaction. Amounts are integers in
minor units; positive is a debit, negative a credit. A repeated add for the
same (transaction, account) pair replaces the amount.

Example:
  resourcestore post add 100 1 -500
  resourcestore post add 100 2 500`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		txn, account, err := parseIDPair(args, "post add")
		if err != nil {
			os.Exit(exitUserError)
		}
		amount, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "post add: invalid amount %q: expected integer minor units\n", args[2])
			os.Exit(exitUserError)
		}

		store, err := openStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "post add:", err)
			os.Exit(exitSysError)
		}
		defer store.Close()

		if err := store.PutPosting(txn, account, types.Amount(amount)); err != nil {
			if errors.Is(err, types.ErrDanglingReference) {
				fmt.Fprintln(os.Stderr, "post add:", err)
				os.Exit(exitUserError)
			}
			fmt.Fprintln(os.Stderr, "post add:", err)
			os.Exit(exitSysError)
		}

		fmt.Printf("Posted %d to account %d in transaction %d\n", amount, account, txn)
		return nil
	},
}

var postRemoveCmd = &cobra.Command{
	Use:   "remove <transaction> <account>",
	Short: "Remove a posting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		txn, account, err := parseIDPair(args, "post remove")
		if err != nil {
			os.Exit(exitUserError)
		}

		store, err := openStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "post remove:", err)
			os.Exit(exitSysError)
		}
		defer store.Close()

		if err := store.RemovePosting(txn, account); err != nil {
			if errors.Is(err, types.ErrNotFound) {
				fmt.Fprintf(os.Stderr, "post remove: no posting for account %d in transaction %d\n", account, txn)
				os.Exit(exitUserError)
			}
			fmt.Fprintln(os.Stderr, "post remove:", err)
			os.Exit(exitSysError)
		}

		fmt.Printf("Removed posting for account %d in transaction %d\n", account, txn)
		return nil
	},
}

var postListCmd = &cobra.Command{
	Use:   "list <transaction>",
	Short: "List the postings of a transaction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		txn, err := parseID(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, "post list:", err)
			os.Exit(exitUserError)
		}

		store, err := openStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "post list:", err)
			os.Exit(exitSysError)
		}
		defer store.Close()

		postings, err := store.PostingsFor(txn)
		if err != nil {
			fmt.Fprintln(os.Stderr, "post list:", err)
			os.Exit(exitSysError)
		}

		if flagJSON {
			return printJSON(postings)
		}
		for _, p := range postings {
			fmt.Printf("%d\t%d\t%d\n", p.TransactionID, p.AccountID, p.Amount)
		}
		return nil
	},
}

var sumCmd = &cobra.Command{
	Use:   "sum <transaction>",
	Short: "Sum the posting amounts of a transaction",
	Long: `Sum prints the arithmetic sum of all posting amounts recorded for a
transaction. A balanced transaction sums to zero.

Example:
  resourcestore sum 100`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		txn, err := parseID(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, "sum:", err)
			os.Exit(exitUserError)
		}

		store, err := openStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "sum:", err)
			os.Exit(exitSysError)
		}
		defer store.Close()

		sum, err := store.SumForTransaction(txn)
		if err != nil {
			fmt.Fprintln(os.Stderr, "sum:", err)
			os.Exit(exitSysError)
		}

		fmt.Println(int64(sum))
		return nil
	},
}

func init() {
	postCmd.AddCommand(postAddCmd)
	postCmd.AddCommand(postRemoveCmd)
	postCmd.AddCommand(postListCmd)
}
