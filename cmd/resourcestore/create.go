// Create command for the resourcestore CLI.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/resourcestore/pkg/types"
)

var (
	createID    int64
	createType  string
	createDoc   string
	createAttrs []string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new resource, optionally with attributes",
	Long: `Create inserts a new resource with the given type tag. With --id 0
the store assigns a random positive id. Attributes are attached atomically
with the resource: if any attribute is invalid, nothing is created.

Example:
  resourcestore create --type account --doc '{"name":"Cash"}'
  resourcestore create --type transaction --attr reference:account=42 --attr date:date=2024-01-15`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if createType == "" {
			fmt.Fprintln(os.Stderr, "create: --type is required")
			os.Exit(exitUserError)
		}

		var doc json.RawMessage
		if createDoc != "" {
			if !json.Valid([]byte(createDoc)) {
				fmt.Fprintf(os.Stderr, "create: --doc is not valid JSON\n")
				os.Exit(exitUserError)
			}
			doc = json.RawMessage(createDoc)
		}

		attrs := make([]types.Attribute, 0, len(createAttrs))
		for _, spec := range createAttrs {
			attr, err := parseAttrSpec(spec)
			if err != nil {
				fmt.Fprintln(os.Stderr, "create:", err)
				os.Exit(exitUserError)
			}
			attrs = append(attrs, attr)
		}

		store, err := openStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "create:", err)
			os.Exit(exitSysError)
		}
		defer store.Close()

		resource, err := store.CreateResourceWithAttributes(createID, createType, doc, attrs)
		if err != nil {
			fmt.Fprintln(os.Stderr, "create:", err)
			os.Exit(exitUserError)
		}

		if flagJSON {
			return printJSON(resource)
		}
		fmt.Printf("Created %s: %d\n", resource.Type, resource.ID)
		return nil
	},
}

func init() {
	createCmd.Flags().Int64Var(&createID, "id", 0, "resource id (0 assigns a random id)")
	createCmd.Flags().StringVar(&createType, "type", "", "resource type tag (required)")
	createCmd.Flags().StringVar(&createDoc, "doc", "", "resource document as JSON")
	createCmd.Flags().StringArrayVar(&createAttrs, "attr", nil, "attribute as kind:name=value (repeatable)")

	createCmd.MarkFlagRequired("type")
}
