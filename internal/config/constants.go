package config

import "time"

// Gas limit used as the EstimateGas fallback when the node cannot simulate
// the transfer. Conservative upper bound; actual gas used will be lower.
const GasLimitERC20Transfer = uint64(60_000)

// Timeouts.
const (
	RPCSelectTimeout    = 10 * time.Second // node benchmark / selection
	TxConfirmTimeout    = 3 * time.Minute  // --wait receipt polling
	ReceiptPollInterval = 2 * time.Second
)

// DefaultContractAddress is the token the app talks to when nothing is configured.
const DefaultContractAddress = "0x5e7e42f3B5eF5908B4b28ec494E51287f69736D2"
