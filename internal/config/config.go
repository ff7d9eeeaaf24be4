package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultABI       = "erc20"
	defaultDecimals  = 18
	defaultSymbol    = "TOKEN"
	defaultProvider  = ProviderInjected
	defaultEndpoint  = "http://127.0.0.1:1248"
	defaultAlgorithm = "fastest"
	defaultPoll      = 5

	configName  = "config"
	configType  = "yaml"
	envPrefix   = "TOKENAPP"
	walletsFile = "wallets.json"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Load reads config from dir (or creates defaults). dir defaults to ~/.tokenapp.
//
// Precedence, lowest first: built-in defaults, <dir>/config.yaml, .env files
// (./.env then <dir>/.env), TOKENAPP_* environment variables.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".tokenapp")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	// godotenv never overrides variables already present in the environment.
	for _, f := range []string{".env", filepath.Join(dir, ".env")} {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", f, err)
		}
	}

	v := newViper(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.configDir = dir
	cfg.RPCURLs = splitURLs(cfg.RPCURLs)

	return cfg, nil
}

// Save writes the config to <dir>/config.yaml.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	v := viper.New()
	v.SetConfigType(configType)
	for k, val := range c.settings() {
		v.Set(k, val)
	}
	if err := v.WriteConfigAs(c.Path()); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return os.Chmod(c.Path(), 0o600)
}

// Validate checks values that would otherwise fail deep inside a session.
func (c *Config) Validate() error {
	if !common.IsHexAddress(c.ContractAddress) {
		return fmt.Errorf("%w: contract_address %q is not a hex address", ErrInvalidConfig, c.ContractAddress)
	}
	switch c.Provider {
	case ProviderInjected:
		if c.WalletEndpoint == "" {
			return fmt.Errorf("%w: wallet_endpoint is required for the injected provider", ErrInvalidConfig)
		}
	case ProviderKeystore:
		if len(c.RPCURLs) == 0 {
			return fmt.Errorf("%w: rpc_urls is required for the keystore provider", ErrInvalidConfig)
		}
	case ProviderNone:
	default:
		return fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, c.Provider)
	}
	if c.TokenDecimals > 77 {
		// 10^78 no longer fits in a uint256.
		return fmt.Errorf("%w: token_decimals %d out of range", ErrInvalidConfig, c.TokenDecimals)
	}
	return nil
}

// Set updates a single key by its config name. Used by `config set`.
func (c *Config) Set(key, value string) error {
	v := viper.New()
	for k, val := range c.settings() {
		v.Set(k, val)
	}
	if !slices.Contains(Keys(), key) {
		return fmt.Errorf("%w: unknown key %q", ErrInvalidConfig, key)
	}
	v.Set(key, value)

	next := &Config{}
	if err := v.Unmarshal(next); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
	}
	next.configDir = c.configDir
	next.RPCURLs = splitURLs(next.RPCURLs)
	*c = *next
	return nil
}

// Settings returns every key with its current value, for display.
func (c *Config) Settings() map[string]any {
	return c.settings()
}

// Keys lists the settable config keys in display order.
func Keys() []string {
	return []string{
		"contract_address", "abi", "abi_path", "token_decimals", "token_symbol",
		"provider", "wallet_endpoint", "rpc_urls", "rpc_algorithm", "default_wallet",
		"wait_for_receipt", "refresh_after_transfer", "account_poll_interval",
		"log.level", "log.mode", "log.encoding",
	}
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// Path returns the config file path.
func (c *Config) Path() string {
	return filepath.Join(c.configDir, configName+"."+configType)
}

// WalletsPath returns the wallets.json path.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// --- helpers ---

func newViper(dir string) *viper.Viper {
	v := viper.New()

	v.SetDefault("contract_address", DefaultContractAddress)
	v.SetDefault("abi", defaultABI)
	v.SetDefault("abi_path", "")
	v.SetDefault("token_decimals", defaultDecimals)
	v.SetDefault("token_symbol", defaultSymbol)
	v.SetDefault("provider", defaultProvider)
	v.SetDefault("wallet_endpoint", defaultEndpoint)
	v.SetDefault("rpc_urls", []string{})
	v.SetDefault("rpc_algorithm", defaultAlgorithm)
	v.SetDefault("default_wallet", "")
	v.SetDefault("wait_for_receipt", false)
	v.SetDefault("refresh_after_transfer", true)
	v.SetDefault("account_poll_interval", defaultPoll)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.mode", "console")
	v.SetDefault("log.encoding", "plain")

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(dir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func (c *Config) settings() map[string]any {
	return map[string]any{
		"contract_address":       c.ContractAddress,
		"abi":                    c.ABI,
		"abi_path":               c.ABIPath,
		"token_decimals":         c.TokenDecimals,
		"token_symbol":           c.TokenSymbol,
		"provider":               c.Provider,
		"wallet_endpoint":        c.WalletEndpoint,
		"rpc_urls":               c.RPCURLs,
		"rpc_algorithm":          c.RPCAlgorithm,
		"default_wallet":         c.DefaultWallet,
		"wait_for_receipt":       c.WaitForReceipt,
		"refresh_after_transfer": c.RefreshAfterTransfer,
		"account_poll_interval":  c.AccountPollInterval,
		"log.level":              c.Log.Level,
		"log.mode":               c.Log.Mode,
		"log.encoding":           c.Log.Encoding,
	}
}

// splitURLs flattens comma-separated entries (env vars arrive as one string)
// and drops blanks.
func splitURLs(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		for _, u := range strings.Split(s, ",") {
			if u = strings.TrimSpace(u); u != "" {
				out = append(out, u)
			}
		}
	}
	return out
}
