package contract

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"golang.org/x/crypto/sha3"
)

// Method names the app calls.
const (
	MethodBalanceOf = "balanceOf"
	MethodTransfer  = "transfer"
)

// required maps each method to its canonical signature.
var required = map[string]string{
	MethodBalanceOf: "balanceOf(address)",
	MethodTransfer:  "transfer(address,uint256)",
}

// Selector computes the 4-byte function selector for a canonical signature
// such as "transfer(address,uint256)".
func Selector(sig string) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(sig))
	return h.Sum(nil)[:4]
}

// Validate checks that parsed exposes balanceOf and transfer with their
// canonical ERC-20 signatures, and that balanceOf returns a single uint256.
func Validate(parsed abi.ABI) error {
	for name, sig := range required {
		m, ok := parsed.Methods[name]
		if !ok {
			return fmt.Errorf("%w: missing %s", ErrInvalidABI, sig)
		}
		if want := Selector(sig); !bytes.Equal(m.ID, want) {
			return fmt.Errorf("%w: %s has selector 0x%s, want 0x%s (%s)",
				ErrInvalidABI, name, hex.EncodeToString(m.ID), hex.EncodeToString(want), sig)
		}
	}

	out := parsed.Methods[MethodBalanceOf].Outputs
	if len(out) != 1 || out[0].Type.T != abi.UintTy || out[0].Type.Size != 256 {
		return fmt.Errorf("%w: balanceOf must return a single uint256", ErrInvalidABI)
	}
	return nil
}
