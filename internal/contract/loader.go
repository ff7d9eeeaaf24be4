package contract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ErrInvalidABI is returned when an ABI cannot be loaded or lacks the
// methods the app needs.
var ErrInvalidABI = errors.New("invalid ABI")

// Resolve returns the ABI to bind: the file at path when set, otherwise the
// built-in named by id. The result is always validated.
func Resolve(id, path string) (abi.ABI, error) {
	var (
		parsed abi.ABI
		err    error
	)
	if path != "" {
		parsed, err = LoadFile(path)
	} else {
		parsed, err = BuiltinABI(id)
	}
	if err != nil {
		return abi.ABI{}, err
	}
	if err := Validate(parsed); err != nil {
		return abi.ABI{}, err
	}
	return parsed, nil
}

// LoadFile loads an ABI from a local file that is either:
//   - a raw ABI JSON array: [{"type":"function",...}, ...]
//   - a Hardhat/Foundry artifact: {"abi":[...],"bytecode":"0x...",...}
//
// Both formats are detected automatically.
func LoadFile(path string) (abi.ABI, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return abi.ABI{}, fmt.Errorf("cannot read ABI file: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return abi.ABI{}, fmt.Errorf("%w: file is empty: %s", ErrInvalidABI, path)
	}

	if data[0] == '{' {
		var artifact struct {
			ABI json.RawMessage `json:"abi"`
		}
		if err := json.Unmarshal(data, &artifact); err != nil || len(artifact.ABI) == 0 || artifact.ABI[0] != '[' {
			return abi.ABI{}, fmt.Errorf("%w: %s is a JSON object without an \"abi\" array", ErrInvalidABI, path)
		}
		data = artifact.ABI
	}

	parsed, err := abi.JSON(bytes.NewReader(data))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("%w: %s: %v", ErrInvalidABI, path, err)
	}
	return parsed, nil
}
