package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	mask "github.com/showa-93/go-mask"
	"gopkg.in/yaml.v3"
)

type ChainConfig struct {
	// RPC endpoint for the chain
	RPC string `yaml:"rpc"`
}

// AssetConfig is one registry row. Address is left empty for NATIVE.
type AssetConfig struct {
	Type    string `yaml:"type"`
	Address string `yaml:"address"`
	ChainID uint64 `yaml:"chain_id"`
}

type PrivyConfig struct {
	AppID             string  `yaml:"app_id"`
	AppSecret         string  `yaml:"app_secret" mask:"fixed"`
	APIURL            string  `yaml:"api_url"`
	AuthURL           string  `yaml:"auth_url"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

type VenlyConfig struct {
	ClientID          string  `yaml:"client_id"`
	ClientSecret      string  `yaml:"client_secret" mask:"fixed"`
	APIURL            string  `yaml:"api_url"`
	AuthURL           string  `yaml:"auth_url"`
	SigningMethod     string  `yaml:"signing_method" mask:"fixed"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

type KeystoreAccount struct {
	Path       string `yaml:"path"`
	Password   string `yaml:"password" mask:"fixed"`
	PrivateKey string `yaml:"private_key" mask:"fixed"`
}

type KeystoreConfig struct {
	// Accounts maps a user identity (usually an email) to its keystore file
	Accounts map[string]KeystoreAccount `yaml:"accounts"`
}

type LegacyConfig struct {
	// Provider selects the legacy wallet source: privy, venly or keystore
	Provider    string         `yaml:"provider"`
	CacheTTL    time.Duration  `yaml:"cache_ttl"`
	CacheSizeMB int            `yaml:"cache_size_mb"`
	Privy       PrivyConfig    `yaml:"privy"`
	Venly       VenlyConfig    `yaml:"venly"`
	Keystore    KeystoreConfig `yaml:"keystore"`
}

type HTTPConfig struct {
	Port           int           `yaml:"port"`
	Host           string        `yaml:"host"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	RateLimit      float64       `yaml:"rate_limit"`
	RateBurst      int           `yaml:"rate_burst"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MetricConfig struct {
	Port int `yaml:"port"`
}

type Config struct {
	// Chains maps chain id to its RPC settings
	Chains map[uint64]*ChainConfig `yaml:"chains"`

	// Assets is the ordered migration registry
	Assets []AssetConfig `yaml:"assets"`

	Legacy  LegacyConfig `yaml:"legacy"`
	HTTP    HTTPConfig   `yaml:"http"`
	Logging LogConfig    `yaml:"logging"`
	Metric  MetricConfig `yaml:"metric"`
}

const (
	ProviderPrivy    = "privy"
	ProviderVenly    = "venly"
	ProviderKeystore = "keystore"
)

// LoadConfig loads the configuration from the given file path.
// ${VAR} references in the file are expanded from the environment.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	content := os.ExpandEnv(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log.Debug().Str("path", path).Interface("config", cfg.Masked()).Msg("Loaded config")
	return cfg, nil
}

// Validate checks cross-field constraints that yaml decoding cannot express.
func (c *Config) Validate() error {
	if len(c.Chains) == 0 {
		return fmt.Errorf("at least one chain must be configured")
	}
	for chainID, chain := range c.Chains {
		if chain == nil || strings.TrimSpace(chain.RPC) == "" {
			return fmt.Errorf("chain %d: rpc is required", chainID)
		}
	}
	for i, a := range c.Assets {
		if _, ok := c.Chains[a.ChainID]; !ok {
			return fmt.Errorf("assets[%d]: chain %d is not configured", i, a.ChainID)
		}
	}

	switch c.Legacy.Provider {
	case ProviderPrivy:
		if c.Legacy.Privy.AppID == "" || c.Legacy.Privy.AppSecret == "" {
			return fmt.Errorf("legacy.privy: app_id and app_secret are required")
		}
	case ProviderVenly:
		if c.Legacy.Venly.ClientID == "" || c.Legacy.Venly.ClientSecret == "" {
			return fmt.Errorf("legacy.venly: client_id and client_secret are required")
		}
	case ProviderKeystore:
	default:
		return fmt.Errorf("unknown legacy provider %q", c.Legacy.Provider)
	}
	return nil
}

// Masked returns a copy with secrets replaced, suitable for logging.
func (c *Config) Masked() *Config {
	masker := mask.NewMasker()
	masker.RegisterMaskStringFunc(mask.MaskTypeFixed, masker.MaskFixedString)

	masked, err := masker.Mask(c)
	if err != nil {
		return &Config{}
	}
	out, ok := masked.(*Config)
	if !ok {
		return &Config{}
	}
	return out
}

func DefaultConfig() *Config {
	return &Config{
		Chains: map[uint64]*ChainConfig{},
		Legacy: LegacyConfig{
			Provider:    ProviderPrivy,
			CacheTTL:    5 * time.Minute,
			CacheSizeMB: 16,
			Privy: PrivyConfig{
				APIURL:            "https://api.privy.io",
				AuthURL:           "https://auth.privy.io",
				RequestsPerSecond: 5,
			},
			Venly: VenlyConfig{
				APIURL:            "https://api-wallet.venly.io",
				AuthURL:           "https://login.venly.io/auth/realms/Arkane/protocol/openid-connect/token",
				RequestsPerSecond: 5,
			},
		},
		HTTP: HTTPConfig{
			Port:           8080,
			Host:           "0.0.0.0",
			RequestTimeout: 2 * time.Minute,
			RateLimit:      2,
			RateBurst:      3,
		},
		Logging: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Metric: MetricConfig{
			Port: 4014,
		},
	}
}
