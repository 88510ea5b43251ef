// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
)

type Config struct {
	RPCURL         string `mapstructure:"rpc_url"`
	Executor       string `mapstructure:"executor"`
	ChainID        uint64 `mapstructure:"chain_id"`
	FeeRateBp      uint64 `mapstructure:"fee_rate_bp"`
	NativeDecimals uint8  `mapstructure:"native_decimals"`
	DebugLogging   bool   `mapstructure:"debug_logging"`
	LogFile        string `mapstructure:"log_file"`
	Workers        int    `mapstructure:"workers"`
	Retries        int    `mapstructure:"retries"`
	DialTimeoutMs  int    `mapstructure:"dial_timeout_ms"`
}

const (
	DefaultFeeRateBp      = 10
	DefaultNativeDecimals = 18
	DefaultLogFile        = "logs/swapvault.log"
	DefaultWorkers        = 5
	DefaultRetries        = 3
	DefaultDialTimeoutMs  = 5000

	feeDenominator = 10000
	envPrefix      = "SWAPVAULT"
)

// ExecutorAddress returns the parsed executor address. Call after validation.
func (c *Config) ExecutorAddress() common.Address {
	return common.HexToAddress(c.Executor)
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"fee_rate_bp":     DefaultFeeRateBp,
		"native_decimals": DefaultNativeDecimals,
		"log_file":        DefaultLogFile,
		"workers":         DefaultWorkers,
		"retries":         DefaultRetries,
		"dial_timeout_ms": DefaultDialTimeoutMs,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	loadEnvironmentVariables(v, &cfg)

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if cfg.RPCURL == "" {
		return errors.New("missing rpc_url in configuration")
	}
	if err := validateURLWithCache(cfg.RPCURL, "http", "ws"); err != nil {
		return fmt.Errorf("invalid rpc_url: %w", err)
	}
	if !common.IsHexAddress(cfg.Executor) {
		return errors.New("executor must be a hex address")
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.FeeRateBp >= feeDenominator {
		return fmt.Errorf("fee_rate_bp must be below %d", feeDenominator)
	}
	if cfg.Workers <= 0 {
		return errors.New("invalid workers count")
	}
	if cfg.Retries < 0 {
		return errors.New("invalid retries count")
	}
	if cfg.DialTimeoutMs <= 0 {
		return errors.New("invalid dial_timeout_ms")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocols ...string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	for _, protocol := range protocols {
		if strings.HasPrefix(parsed.Scheme, protocol) {
			urlCache.Store(rawURL, parsed)
			return nil
		}
	}
	return errors.New("invalid URL protocol")
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) {
	v.AutomaticEnv()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if envRPC := strings.TrimSpace(v.GetString("RPC_URL")); envRPC != "" {
		cfg.RPCURL = envRPC
	}
	if envExecutor := strings.TrimSpace(v.GetString("EXECUTOR")); envExecutor != "" {
		cfg.Executor = envExecutor
	}
}
