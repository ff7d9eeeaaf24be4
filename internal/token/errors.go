package token

import (
	"errors"
	"strings"
)

// Errors. Every failure returned by this package wraps exactly one of them.
var (
	ErrProviderUnavailable = errors.New("no wallet provider available")
	ErrContractCall        = errors.New("contract call failed")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrUserRejected        = errors.New("rejected by user")
	ErrTransaction         = errors.New("transaction failed")
	ErrNoAccount           = errors.New("no account connected")
	ErrInvalidAddress      = errors.New("invalid address")
)

// Reason turns an error into a short sentence for the user.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrProviderUnavailable):
		return "No wallet found. Start your wallet or set a provider in the config."
	case errors.Is(err, ErrNoAccount):
		return "No account is connected. Unlock your wallet and connect again."
	case errors.Is(err, ErrUserRejected):
		return "You rejected the request in your wallet."
	case errors.Is(err, ErrInvalidAmount):
		return "Enter a positive amount the token can represent."
	case errors.Is(err, ErrContractCall):
		return "Could not read from the token contract. Check the contract address and network."
	case errors.Is(err, ErrInvalidAddress):
		return "Enter a valid recipient address (0x followed by 40 hex digits)."
	case errors.Is(err, ErrTransaction):
		if detail := revertDetail(err); detail != "" {
			return "The transfer failed: " + detail
		}
		return "The transfer failed."
	default:
		return "Something went wrong: " + err.Error()
	}
}

// revertDetail pulls the node's message out of a wrapped error chain, if any.
func revertDetail(err error) string {
	msg := err.Error()
	prefix := ErrTransaction.Error() + ": "
	msg = strings.TrimPrefix(msg, prefix)
	if msg == err.Error() || msg == "" {
		return ""
	}
	return msg
}
