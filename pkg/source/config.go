package source

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Rosssaab/CryptoAiDataCollector/pkg/confkit"
)

// Config describes the set of content sources available to the collector.
type Config struct {
	Sources map[string]*AdapterConfig `yaml:"sources"`
}

// AdapterConfig configures a single source adapter. Fields not used by a
// given adapter type are ignored by its builder.
type AdapterConfig struct {
	Type string `yaml:"type"`

	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"api_key"`
	UserAgent string `yaml:"user_agent"`

	// MaxResults bounds how many items a single fetch may return.
	MaxResults int `yaml:"max_results"`
	// MinTextLen drops candidates whose combined text is shorter.
	MinTextLen int `yaml:"min_text_len"`
	// Channels is the fixed base set of community channels to search.
	Channels []string `yaml:"channels"`
	// SymbolChannelMinLen gates the asset-specific channel: symbols at or
	// below this length skip it (short tickers near-certainly 404).
	SymbolChannelMinLen int `yaml:"symbol_channel_min_len"`
	// SoftLimit is the per-day request budget registered with the quota
	// tracker for this source.
	SoftLimit int `yaml:"soft_limit"`

	TimeoutRaw string        `yaml:"timeout"`
	Timeout    time.Duration `yaml:"-"`
	DelayRaw   string        `yaml:"request_delay"`
	Delay      time.Duration `yaml:"-"`
}

// AdapterBuilder constructs an Adapter from configuration. The gate must be
// consulted before every network call the adapter makes.
type AdapterBuilder func(name string, cfg *AdapterConfig, gate Gate) (Adapter, error)

var (
	adapterRegistry   = make(map[string]AdapterBuilder)
	adapterRegistryMu sync.RWMutex
)

// RegisterAdapter registers a source adapter constructor under a type name.
func RegisterAdapter(typeName string, builder AdapterBuilder) {
	adapterRegistryMu.Lock()
	defer adapterRegistryMu.Unlock()
	adapterRegistry[strings.ToLower(strings.TrimSpace(typeName))] = builder
}

func lookupAdapterBuilder(typeName string) (AdapterBuilder, bool) {
	adapterRegistryMu.RLock()
	defer adapterRegistryMu.RUnlock()
	builder, ok := adapterRegistry[strings.ToLower(strings.TrimSpace(typeName))]
	return builder, ok
}

// LoadConfig reads a sources configuration file from disk.
func LoadConfig(path string) (*Config, error) {
	confkit.LoadDotenvOnce()
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sources config: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// LoadConfigFromReader constructs a Config from an io.Reader.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	confkit.LoadDotenvOnce()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read sources config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal sources config: %w", err)
	}
	if err := cfg.normalise(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalise() error {
	if c.Sources == nil {
		c.Sources = make(map[string]*AdapterConfig)
	}
	for name, adapter := range c.Sources {
		if adapter == nil {
			adapter = &AdapterConfig{}
			c.Sources[name] = adapter
		}
		adapter.expandEnv()
		if err := adapter.parseDurations(name); err != nil {
			return err
		}
	}
	return nil
}

func (a *AdapterConfig) expandEnv() {
	a.Type = strings.TrimSpace(os.ExpandEnv(a.Type))
	a.BaseURL = strings.TrimSpace(os.ExpandEnv(a.BaseURL))
	a.APIKey = strings.TrimSpace(os.ExpandEnv(a.APIKey))
	a.UserAgent = strings.TrimSpace(os.ExpandEnv(a.UserAgent))
	a.TimeoutRaw = strings.TrimSpace(os.ExpandEnv(a.TimeoutRaw))
	a.DelayRaw = strings.TrimSpace(os.ExpandEnv(a.DelayRaw))
}

func (a *AdapterConfig) parseDurations(name string) error {
	if a.TimeoutRaw != "" {
		d, err := time.ParseDuration(a.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("source %s: invalid timeout %q: %w", name, a.TimeoutRaw, err)
		}
		if d <= 0 {
			return fmt.Errorf("source %s: timeout must be positive, got %s", name, d)
		}
		a.Timeout = d
	}
	if a.DelayRaw != "" {
		d, err := time.ParseDuration(a.DelayRaw)
		if err != nil {
			return fmt.Errorf("source %s: invalid request_delay %q: %w", name, a.DelayRaw, err)
		}
		if d < 0 {
			return fmt.Errorf("source %s: request_delay cannot be negative, got %s", name, d)
		}
		a.Delay = d
	}
	return nil
}

// Validate ensures the configuration is structurally sound.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("sources config: sources cannot be empty")
	}
	for name, adapter := range c.Sources {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("sources config: source name cannot be empty")
		}
		if adapter == nil {
			return fmt.Errorf("sources config: source %s is nil", name)
		}
		if strings.TrimSpace(adapter.Type) == "" {
			return fmt.Errorf("sources config: source %s must specify type", name)
		}
		if _, ok := lookupAdapterBuilder(adapter.Type); !ok {
			return fmt.Errorf("sources config: source %s has unsupported type %q", name, adapter.Type)
		}
	}
	return nil
}

// SoftLimits collects the per-source request budgets for the quota tracker.
func (c *Config) SoftLimits() map[string]int {
	limits := make(map[string]int, len(c.Sources))
	for name, adapter := range c.Sources {
		if adapter != nil && adapter.SoftLimit > 0 {
			limits[name] = adapter.SoftLimit
		}
	}
	return limits
}

// BuildAdapters instantiates the configured adapters in a stable order
// (sorted by source name) so a cycle visits sources deterministically.
func (c *Config) BuildAdapters(gate Gate) ([]Adapter, error) {
	names := make([]string, 0, len(c.Sources))
	for name := range c.Sources {
		names = append(names, name)
	}
	sort.Strings(names)

	adapters := make([]Adapter, 0, len(names))
	for _, name := range names {
		adapterCfg := c.Sources[name]
		builder, ok := lookupAdapterBuilder(adapterCfg.Type)
		if !ok {
			return nil, fmt.Errorf("source %s: unsupported type %q", name, adapterCfg.Type)
		}
		adapter, err := builder(name, adapterCfg, gate)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", name, err)
		}
		adapters = append(adapters, adapter)
	}
	return adapters, nil
}
