package config

import (
	"encoding/json"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// EnvPrefix is a prefix of environment variables overriding the file.
const EnvPrefix = "ADMON"

// Config is a service configuration.
type Config struct {
	API    *API
	Eth    *Eth
	DB     *DB
	Oracle *Oracle
	Proc   *Proc
	Log    *Log
}

// API is a JSON-RPC server configuration.
type API struct {
	Addr string
}

// Eth is an Ethereum node configuration.
type Eth struct {
	NodeURL        string `split_words:"true"`
	FactoryAddress string `split_words:"true"`
	// Stable token (USDC) used for stakes.
	TokenAddress string `split_words:"true"`
	StartBlock   uint64 `split_words:"true"`
	// Maximum number of blocks scanned in a single log query.
	ScanBatch uint64 `split_words:"true"`
}

// DB is a database configuration.
type DB struct {
	DBName   string `envconfig:"NAME"`
	Host     string
	Port     uint16
	User     string
	Password string
	SSLMode  string `split_words:"true"`
}

// Oracle is a signing identity configuration.
type Oracle struct {
	// Hex encoded secp256k1 key, never read from the config file.
	PrivateKey     string `json:"-" split_words:"true"`
	ConfirmTimeout uint64 `split_words:"true"` // In milliseconds.
	ReceiptPoll    uint64 `split_words:"true"` // In milliseconds.
	GasLimit       uint64 `split_words:"true"`
}

// Proc is a background processing configuration.
type Proc struct {
	UpdateLastBlockPause   uint64 `split_words:"true"` // In milliseconds.
	CollectPause           uint64 `split_words:"true"` // In milliseconds.
	UpdateSubmissionsPause uint64 `split_words:"true"` // In milliseconds.
}

// Log is a logger configuration.
type Log struct {
	LogFile   string `split_words:"true"`
	ErrorFile string `split_words:"true"`
	Level     string
	Console   bool
}

// NewConfig creates a default configuration.
func NewConfig() *Config {
	return &Config{
		API: &API{
			Addr: "localhost:8080",
		},
		Eth: &Eth{
			NodeURL:   "http://localhost:8545",
			ScanBatch: 1000,
		},
		DB: &DB{
			DBName:  "admon",
			Host:    "localhost",
			Port:    5432,
			User:    "postgres",
			SSLMode: "disable",
		},
		Oracle: &Oracle{
			ConfirmTimeout: 120000, // 2 minutes
			ReceiptPoll:    1000,
			GasLimit:       300000,
		},
		Proc: &Proc{
			UpdateLastBlockPause:   5000,
			CollectPause:           2000,
			UpdateSubmissionsPause: 30000,
		},
		Log: &Log{
			Level:   "info",
			Console: true,
		},
	}
}

// Load reads a JSON configuration file over the defaults, then applies
// ".env" and ADMON_* environment overrides. An empty name skips the file.
func Load(name string) (*Config, error) {
	cfg := NewConfig()

	if name != "" {
		if err := readFile(name, cfg); err != nil {
			return nil, errors.Wrapf(err, "failed to read config %s", name)
		}
	}

	// A missing .env file is not an error.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to load .env")
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process environment")
	}

	return cfg, nil
}

func readFile(name string, data interface{}) error {
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewDecoder(file).Decode(data)
}

// Validate checks settings required to serve requests.
func (c *Config) Validate() error {
	if c.Eth.NodeURL == "" {
		return errors.New("ethereum node url is not set")
	}

	if c.Oracle.PrivateKey == "" {
		return errors.New("oracle private key is not set")
	}

	if c.Oracle.ConfirmTimeout == 0 || c.Oracle.ReceiptPoll == 0 {
		return errors.New("oracle confirmation timeouts must be positive")
	}

	if c.Proc.UpdateLastBlockPause == 0 || c.Proc.CollectPause == 0 ||
		c.Proc.UpdateSubmissionsPause == 0 {
		return errors.New("processing pauses must be positive")
	}

	return nil
}
