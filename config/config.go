package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// DevnetPackageID is the deployed ticket contract on devnet.
const DevnetPackageID = "0xdaed73e0337b1e040c4a0c6e10b13f517e0d910b15a75d3202645ceaaf4e6adf"

// Network struct
type Network struct {
	URL       string `yaml:"url"`
	PackageID string `yaml:"package_id"`
}

// Cache struct
type Cache struct {
	Backend   string `yaml:"backend"` // badger, redis or memory
	Path      string `yaml:"path"`
	RedisAddr string `yaml:"redis_addr"`
	RedisDB   int    `yaml:"redis_db"`
}

// Wallet struct
type Wallet struct {
	Keystore string `yaml:"keystore"`
}

// Log struct
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// Config is loaded once at process start and treated as immutable.
type Config struct {
	Network  string             `yaml:"network"`
	Networks map[string]Network `yaml:"networks"`
	Cache    Cache              `yaml:"cache"`
	Wallet   Wallet             `yaml:"wallet"`
	Log      Log                `yaml:"log"`
}

// Default returns the built-in network table.
func Default() Config {
	return Config{
		Network: "devnet",
		Networks: map[string]Network{
			"devnet":  {URL: "https://api.devnet.iota.cafe", PackageID: DevnetPackageID},
			"testnet": {URL: "https://api.testnet.iota.cafe"},
			"mainnet": {URL: "https://api.mainnet.iota.cafe"},
		},
		Cache: Cache{
			Backend: "badger",
			Path:    "./badgerDB",
		},
		Wallet: Wallet{Keystore: "./wallets.data"},
		Log:    Log{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults. An empty path only applies defaults and
// environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := Parse(data, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes YAML into cfg, keeping values the document does not set.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := getenv("TICKETBOX_NETWORK"); v != "" {
		cfg.Network = v
	}
	if v := getenv("TICKETBOX_CACHE_PATH"); v != "" {
		cfg.Cache.Path = v
	}
	if v := getenv("TICKETBOX_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func getenv(key string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return ""
}

// Validate function
func (c Config) Validate() error {
	if _, ok := c.Networks[c.Network]; !ok {
		return fmt.Errorf("unknown network %q (known: %v)", c.Network, c.NetworkNames())
	}
	switch c.Cache.Backend {
	case "badger", "memory":
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache backend redis needs redis_addr")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	return nil
}

// Active returns the selected network.
func (c Config) Active() Network {
	return c.Networks[c.Network]
}

// NetworkNames returns the configured network ids, sorted.
func (c Config) NetworkNames() []string {
	names := make([]string, 0, len(c.Networks))
	for name := range c.Networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
