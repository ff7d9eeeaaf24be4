package contract

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// BuiltinKind describes a built-in contract interface whose ABI is embedded
// in the binary. New built-ins register themselves via init() in their own
// file: create internal/contract/<name>_abi.go and call RegisterBuiltin().
type BuiltinKind struct {
	ID          string // machine key, e.g. "erc20"
	Name        string // human label
	Description string // one-line summary shown in `config show`
	JSON        string // ABI JSON array
}

var builtinRegistry = map[string]BuiltinKind{}

// RegisterBuiltin adds a built-in ABI to the global registry.
// Call this from init() in the file that defines the ABI.
func RegisterBuiltin(b BuiltinKind) {
	builtinRegistry[b.ID] = b
}

// GetBuiltin returns a built-in by ID. ok is false if not found.
func GetBuiltin(id string) (BuiltinKind, bool) {
	b, ok := builtinRegistry[id]
	return b, ok
}

// BuiltinABI parses the ABI of a registered built-in.
func BuiltinABI(id string) (abi.ABI, error) {
	b, ok := builtinRegistry[id]
	if !ok {
		return abi.ABI{}, fmt.Errorf("%w: unknown built-in %q", ErrInvalidABI, id)
	}
	parsed, err := abi.JSON(strings.NewReader(b.JSON))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("%w: built-in %q: %v", ErrInvalidABI, id, err)
	}
	return parsed, nil
}

// AllBuiltins returns all registered built-ins sorted by ID.
func AllBuiltins() []BuiltinKind {
	out := make([]BuiltinKind, 0, len(builtinRegistry))
	for _, b := range builtinRegistry {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
