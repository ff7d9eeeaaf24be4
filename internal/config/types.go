package config

import (
	"path/filepath"

	"github.com/zeromicro/go-zero/core/logx"
)

// Provider backends.
const (
	ProviderInjected = "injected" // EIP-1193 wallet over JSON-RPC
	ProviderKeystore = "keystore" // local keychain wallet + node RPC
	ProviderNone     = "none"
)

// Config holds all tokenapp configuration.
type Config struct {
	ContractAddress string `mapstructure:"contract_address"`
	ABI             string `mapstructure:"abi"`      // built-in ABI id, e.g. "erc20"
	ABIPath         string `mapstructure:"abi_path"` // overrides ABI when set
	TokenDecimals   uint8  `mapstructure:"token_decimals"`
	TokenSymbol     string `mapstructure:"token_symbol"`

	Provider       string   `mapstructure:"provider"`        // "injected" | "keystore" | "none"
	WalletEndpoint string   `mapstructure:"wallet_endpoint"` // injected provider URL
	RPCURLs        []string `mapstructure:"rpc_urls"`        // keystore provider node URLs
	RPCAlgorithm   string   `mapstructure:"rpc_algorithm"`   // "fastest" | "round-robin" | "failover"
	DefaultWallet  string   `mapstructure:"default_wallet"`

	WaitForReceipt       bool `mapstructure:"wait_for_receipt"`
	RefreshAfterTransfer bool `mapstructure:"refresh_after_transfer"`
	AccountPollInterval  int  `mapstructure:"account_poll_interval"` // seconds

	Log LogConfig `mapstructure:"log"`

	// internal: config dir path used for Save()
	configDir string
}

// LogConfig selects where and how much tokenapp logs.
type LogConfig struct {
	Level    string `mapstructure:"level"`    // "debug" | "info" | "error" | "severe"
	Mode     string `mapstructure:"mode"`     // "console" | "file"
	Encoding string `mapstructure:"encoding"` // "plain" | "json"
}

// ToLogConf converts the settings into a logx configuration. File mode
// writes under <config dir>/logs.
func (l LogConfig) ToLogConf(dir string) logx.LogConf {
	c := logx.LogConf{
		ServiceName: "tokenapp",
		Mode:        l.Mode,
		Encoding:    l.Encoding,
		Level:       l.Level,
		Stat:        false,
		KeepDays:    7,
	}
	if c.Mode == "file" {
		c.Path = filepath.Join(dir, "logs")
	}
	return c
}
