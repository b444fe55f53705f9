// Export and import commands move snapshots between a store and a directory
// of JSONL files.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/resourcestore/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export <dir>",
	Short: "Export the store as JSONL snapshot files",
	Long: `Export writes one JSONL file per keyspace into the given directory.
The snapshot can be restored into an empty store with import.

Example:
  resourcestore export ./backup`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "export:", err)
			os.Exit(exitSysError)
		}
		defer store.Close()

		if err := store.Dump(args[0]); err != nil {
			fmt.Fprintln(os.Stderr, "export:", err)
			os.Exit(exitSysError)
		}

		fmt.Println("Exported snapshot to", args[0])
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Import a JSONL snapshot into an empty store",
	Long: `Import restores a snapshot previously written by export. The target
store must be empty.

Example:
  resourcestore import ./backup`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "import:", err)
			os.Exit(exitSysError)
		}
		defer store.Close()

		if err := store.Load(args[0]); err != nil {
			if errors.Is(err, types.ErrStoreNotEmpty) {
				fmt.Fprintln(os.Stderr, "import: target store is not empty")
				os.Exit(exitUserError)
			}
			fmt.Fprintln(os.Stderr, "import:", err)
			os.Exit(exitSysError)
		}

		fmt.Println("Imported snapshot from", args[0])
		return nil
	},
}
