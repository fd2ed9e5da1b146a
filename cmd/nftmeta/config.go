package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/cashonize/nft-metadata-decoder/decoder"
)

// Config keys
const (
	cfgKeyNetwork    = "network"
	cfgKeyRPCURL     = "rpc.url"
	cfgKeyRPCUser    = "rpc.user"
	cfgKeyRPCPass    = "rpc.pass"
	cfgKeyExtensions = "extensions"

	defaultNetwork = "mainnet"
	defaultRPCURL  = "http://127.0.0.1:8332"
)

var ErrUnknownNetwork = errors.New("unknown network")

// Config is the CLI configuration
type Config struct {
	Network    string
	RPC        RPCConfig
	Extensions map[string]bool // Per extension switch, absent means enabled
}

// RPCConfig is the node connection
type RPCConfig struct {
	URL  string
	User string
	Pass string
}

// networkPrefixes maps network names to CashAddress prefixes
var networkPrefixes = map[string]string{
	"mainnet": decoder.PrefixMainnet,
	"testnet": decoder.PrefixTestnet,
	"regtest": decoder.PrefixRegtest,
}

// loadConfig reads the YAML config at path. An empty path yields the
// defaults.
func loadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		Network: v.GetString(cfgKeyNetwork),
		RPC: RPCConfig{
			URL:  v.GetString(cfgKeyRPCURL),
			User: v.GetString(cfgKeyRPCUser),
			Pass: v.GetString(cfgKeyRPCPass),
		},
		Extensions: make(map[string]bool),
	}
	for name := range v.GetStringMap(cfgKeyExtensions) {
		cfg.Extensions[name] = v.GetBool(cfgKeyExtensions + "." + name)
	}

	// Set default values
	if cfg.Network == "" {
		cfg.Network = defaultNetwork
	}
	if cfg.RPC.URL == "" {
		cfg.RPC.URL = defaultRPCURL
	}

	if _, err := cfg.Prefix(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Prefix returns the CashAddress prefix of the configured network. A known
// prefix is accepted in place of a network name.
func (c *Config) Prefix() (string, error) {
	network := strings.ToLower(c.Network)
	if prefix, ok := networkPrefixes[network]; ok {
		return prefix, nil
	}
	if decoder.IsKnownPrefix(network) {
		return network, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownNetwork, c.Network)
}
