package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"mintwatch/internal/domain"
)

const envPrefix = "MINTWATCH_"

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Chain    ChainConfig    `koanf:"chain"`
	Poller   PollerConfig   `koanf:"poller"`
	Launches []LaunchConfig `koanf:"launches"`
	Display  DisplayConfig  `koanf:"display"`
	Queue    QueueConfig    `koanf:"queue"`
	Storage  StorageConfig  `koanf:"storage"`
	Redis    RedisConfig    `koanf:"redis"`
	Notifier NotifierConfig `koanf:"notifier"`
	Log      LogConfig      `koanf:"log"`
}

type ServerConfig struct {
	Port string `koanf:"port"`
}

type ChainConfig struct {
	Endpoint string        `koanf:"endpoint"`
	Timeout  time.Duration `koanf:"timeout"`
}

type PollerConfig struct {
	Interval time.Duration `koanf:"interval"`
	Tick     time.Duration `koanf:"tick"`
}

type LaunchConfig struct {
	Name         string `koanf:"name"`
	FairLaunch   string `koanf:"fair_launch"`
	CandyMachine string `koanf:"candy_machine"`
}

type DisplayConfig struct {
	CollectionName        string `koanf:"collection_name"`
	CollectionDescription string `koanf:"collection_description"`
}

type QueueConfig struct {
	Brokers []string `koanf:"brokers"`
	Topic   string   `koanf:"topic"`
	GroupID string   `koanf:"group_id"`
}

type StorageConfig struct {
	DSN string `koanf:"dsn"`
}

type RedisConfig struct {
	Addr string `koanf:"addr"`
}

type NotifierConfig struct {
	TelegramToken   string   `koanf:"telegram_token"`
	TelegramChatIDs []string `koanf:"telegram_chat_ids"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

// Load reads config.yaml (or the file named by MINTWATCH_CONFIG) and then
// applies MINTWATCH_* environment overrides, e.g. MINTWATCH_CHAIN__ENDPOINT.
func Load() (*Config, error) {
	path := os.Getenv(envPrefix + "CONFIG")
	if path == "" {
		path = "config.yaml"
	}
	return LoadFile(path)
}

func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// MINTWATCH_POLLER__INTERVAL -> poller.interval
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = ":8080"
	}
	if c.Chain.Timeout == 0 {
		c.Chain.Timeout = 15 * time.Second
	}
	if c.Poller.Interval == 0 {
		c.Poller.Interval = 30 * time.Second
	}
	if c.Poller.Tick == 0 {
		c.Poller.Tick = time.Second
	}
	if c.Display.CollectionName == "" {
		c.Display.CollectionName = "Phase 4"
	}
	if c.Display.CollectionDescription == "" {
		c.Display.CollectionDescription = "Minting is live"
	}
	if c.Queue.Topic == "" {
		c.Queue.Topic = "phase-transitions"
	}
	if c.Queue.GroupID == "" {
		c.Queue.GroupID = "mintwatch"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
}

func (c *Config) Validate() error {
	if c.Chain.Endpoint == "" {
		return errors.New("chain.endpoint is required")
	}
	if c.Poller.Interval < 0 || c.Poller.Tick < 0 {
		return errors.New("poller intervals must be positive")
	}
	for i, l := range c.Launches {
		if l.Name == "" {
			return fmt.Errorf("launches[%d]: name is required", i)
		}
		if l.FairLaunch == "" && l.CandyMachine == "" {
			return fmt.Errorf("launch %q: fair_launch or candy_machine is required", l.Name)
		}
	}
	return nil
}

// DomainLaunches converts the configured launches.
func (c *Config) DomainLaunches() []domain.Launch {
	launches := make([]domain.Launch, 0, len(c.Launches))
	for _, l := range c.Launches {
		launches = append(launches, domain.Launch{
			Name:           l.Name,
			FairLaunchID:   l.FairLaunch,
			CandyMachineID: l.CandyMachine,
		})
	}
	return launches
}
