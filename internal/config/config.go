package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-yaml/yaml"
	"github.com/joho/godotenv"

	"github.com/totegamma/solr-feeder/internal/domain"
)

const (
	DefaultPath       = "/etc/solr-feeder/config.yaml"
	defaultListenAddr = ":8000"
	defaultTimeout    = 3 * time.Second
	defaultLockTTL    = 2 * time.Minute
)

// Environment variables that override the file.
const (
	EnvConfigPath  = "SOLR_FEEDER_CONFIG"
	EnvPostgresDsn = "SOLR_FEEDER_POSTGRES_DSN"
	EnvSolrURL     = "SOLR_FEEDER_SOLR_URL"
)

type Config struct {
	Server Server `yaml:"server"`
	Solr   Solr   `yaml:"solr"`
	Sync   Sync   `yaml:"sync"`
}

type Server struct {
	ListenAddr    string `yaml:"listenAddr"`
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
	LogLevel      string `yaml:"logLevel"`  // debug, info, warn, error
	LogFormat     string `yaml:"logFormat"` // text, json
}

type Solr struct {
	URL           string        `yaml:"url"`
	NamesCore     string        `yaml:"namesCore"`
	ConflictsCore string        `yaml:"conflictsCore"`
	Timeout       time.Duration `yaml:"timeout"`
	Commit        bool          `yaml:"commit"`
}

type Sync struct {
	// ExclusiveKeys rejects a sync while another one for the same key runs.
	ExclusiveKeys bool          `yaml:"exclusiveKeys"`
	LockTTL       time.Duration `yaml:"lockTTL"`
	EventChannel  string        `yaml:"eventChannel"`
}

// LoadDotEnv reads a .env file into the environment when one exists.
func LoadDotEnv(filenames ...string) error {
	for _, f := range filenames {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Path returns the config file location, honoring SOLR_FEEDER_CONFIG.
func Path(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return DefaultPath
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	config.applyEnv()
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvPostgresDsn); v != "" {
		c.Server.PostgresDsn = v
	}
	if v := os.Getenv(EnvSolrURL); v != "" {
		c.Solr.URL = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = defaultListenAddr
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Server.LogFormat == "" {
		c.Server.LogFormat = "text"
	}
	if c.Solr.NamesCore == "" {
		c.Solr.NamesCore = domain.DefaultNamesCore
	}
	if c.Solr.ConflictsCore == "" {
		c.Solr.ConflictsCore = domain.DefaultConflictsCore
	}
	if c.Solr.Timeout <= 0 {
		c.Solr.Timeout = defaultTimeout
	}
	if c.Sync.LockTTL <= 0 {
		c.Sync.LockTTL = defaultLockTTL
	}
}

func (c Config) Validate() error {
	if c.Server.PostgresDsn == "" {
		return fmt.Errorf("server.postgresDsn is required")
	}
	if c.Solr.URL == "" {
		return fmt.Errorf("solr.url is required")
	}
	if c.Solr.NamesCore == c.Solr.ConflictsCore {
		return fmt.Errorf("solr.namesCore and solr.conflictsCore must differ, both are %q", c.Solr.NamesCore)
	}
	if c.Server.EnableTrace && c.Server.TraceEndpoint == "" {
		return fmt.Errorf("server.traceEndpoint is required when tracing is enabled")
	}
	return nil
}
