// Shared helpers for resourcestore CLI commands.
package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/resourcestore/pkg/sqlite"
	"github.com/mesh-intelligence/resourcestore/pkg/types"
)

// openStore resolves the data directory, creates a SQLite store, and opens
// it. The caller must defer store.Close().
func openStore() (types.Store, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	cfg := types.Config{
		Backend: types.BackendSQLite,
		DataDir: dataDir,
	}

	store := sqlite.NewStore()
	if err := store.Open(cfg); err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	return store, nil
}

// parseID parses a resource id argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: expected integer", arg)
	}
	return id, nil
}

// parseValue builds a typed attribute value from a kind name and its raw
// string form. References, integers, and amounts are decimal integers;
// dates use the YYYY-MM-DD layout.
func parseValue(kind, raw string) (types.Value, error) {
	k := types.Kind(kind)
	switch k {
	case types.KindString:
		return types.StringValue(raw), nil
	case types.KindReference:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return types.Value{}, fmt.Errorf("invalid reference %q: expected resource id", raw)
		}
		return types.ReferenceValue(n), nil
	case types.KindInteger:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return types.Value{}, fmt.Errorf("invalid integer %q", raw)
		}
		return types.IntegerValue(n), nil
	case types.KindAmount:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return types.Value{}, fmt.Errorf("invalid amount %q: expected integer minor units", raw)
		}
		return types.AmountValue(types.Amount(n)), nil
	case types.KindDate:
		d, err := types.ParseDate(raw)
		if err != nil {
			return types.Value{}, err
		}
		return types.DateValue(d), nil
	default:
		return types.Value{}, fmt.Errorf("unknown kind %q (valid: %s)", kind, validKindsStr)
	}
}

// validKindsStr is a comma-separated list of valid attribute kinds for error
// and usage output.
var validKindsStr = func() string {
	names := make([]string, len(types.Kinds))
	for i, k := range types.Kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}()

// parseAttrSpec parses a kind:name=value attribute specification used by the
// create command's repeatable --attr flag.
func parseAttrSpec(spec string) (types.Attribute, error) {
	kindRest := strings.SplitN(spec, ":", 2)
	if len(kindRest) != 2 {
		return types.Attribute{}, fmt.Errorf("invalid attribute %q (expected kind:name=value)", spec)
	}
	nameValue := strings.SplitN(kindRest[1], "=", 2)
	if len(nameValue) != 2 || nameValue[0] == "" {
		return types.Attribute{}, fmt.Errorf("invalid attribute %q (expected kind:name=value)", spec)
	}

	value, err := parseValue(kindRest[0], nameValue[1])
	if err != nil {
		return types.Attribute{}, err
	}
	return types.Attribute{Name: nameValue[0], Value: value}, nil
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
